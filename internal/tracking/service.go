package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/common/db"
	"github.com/RentaDrive/RentaDrive/internal/common/middleware"
	"github.com/RentaDrive/RentaDrive/internal/fleet"
)

// ErrInvalidCoordinate 经纬度超出合法范围。
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// Service 封装位置上报与轨迹查询。
// 写入可能因为库抖动集中失败，外面包一层熔断，打开后快速拒绝而不是拖垮连接池。
type Service struct {
	repo    *Repo
	breaker *middleware.CircuitBreaker
}

func NewService(repo *Repo) *Service {
	return &Service{
		repo:    repo,
		breaker: middleware.NewCircuitBreaker("tracking-write", 5, 10*time.Second),
	}
}

// RecordInput 一次位置采样。
type RecordInput struct {
	CarID     string
	Lat       float64
	Lng       float64
	Speed     float64
	Timestamp time.Time
}

// Record 记录位置采样：
// - 经纬度越界返回 ErrInvalidCoordinate
// - 历史表只追加；乱序样本照常入库
// - 车辆上的位置缓存只被“更新的时间戳”推进（按时间戳定序，不按到达顺序）
// 追加与缓存更新在一个事务里完成；同一 (car, timestamp) 重放对缓存是幂等的。
func (s *Service) Record(ctx context.Context, in RecordInput) (*Sample, error) {
	if s == nil || s.repo == nil || s.repo.DB() == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	carID := strings.TrimSpace(in.CarID)
	if carID == "" {
		return nil, fmt.Errorf("car_id required")
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, ErrInvalidCoordinate
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	sample := &Sample{
		ID:        uuid.NewString(),
		CarID:     carID,
		Lat:       in.Lat,
		Lng:       in.Lng,
		Speed:     in.Speed,
		Timestamp: ts,
	}

	write := func() error {
		return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var car fleet.Car
			if err := db.LockForUpdate(tx).Where("id = ?", carID).First(&car).Error; err != nil {
				return err
			}

			if err := tx.Create(sample).Error; err != nil {
				return err
			}

			// 只有比缓存新的样本才推进缓存
			if car.LastLocationUpdate != nil && !ts.After(*car.LastLocationUpdate) {
				return nil
			}
			return tx.Model(&fleet.Car{}).Where("id = ?", carID).Updates(map[string]any{
				"current_lat":          sample.Lat,
				"current_lng":          sample.Lng,
				"last_location_update": sample.Timestamp,
			}).Error
		})
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Call(ctx, write)
	} else {
		err = write()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, db.WrapStorage("tracking.record", err)
	}
	return sample, nil
}

// History 查询轨迹。
func (s *Service) History(ctx context.Context, carID string, since time.Time, limit int) ([]Sample, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	carID = strings.TrimSpace(carID)
	if carID == "" {
		return nil, fmt.Errorf("car_id required")
	}
	return s.repo.History(ctx, carID, since, limit)
}
