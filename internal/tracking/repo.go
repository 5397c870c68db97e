package tracking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// DB 暴露底层连接给 service 侧开事务用。
func (r *Repo) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.db
}

// History 按时间倒序返回一辆车的轨迹；since 非零时只取之后的采样。
func (r *Repo) History(ctx context.Context, carID string, since time.Time, limit int) ([]Sample, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Where("car_id = ?", carID)
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since)
	}

	var samples []Sample
	if err := q.Order("timestamp DESC").Limit(limit).Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// Latest 返回一辆车时间戳最大的采样。
func (r *Repo) Latest(ctx context.Context, carID string) (*Sample, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s Sample
	if err := r.db.WithContext(ctx).Where("car_id = ?", carID).Order("timestamp DESC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
