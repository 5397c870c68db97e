package booking

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

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// blockingStatuses 占用车辆档期的订单状态。
var blockingStatuses = []Status{StatusApproved, StatusActive}

// HasOverlapTx 在事务内检查车辆在 [start, end) 上是否与 {approved, active} 订单重叠。
// 与 createBooking 的插入配合车辆行锁作为一个原子单元执行，防止并发双订。
func (r *Repo) HasOverlapTx(tx *gorm.DB, carID string, start, end time.Time, excludeID string) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("tx is nil")
	}
	q := tx.Model(&Booking{}).
		Where("car_id = ?", carID).
		Where("status IN ?", blockingStatuses).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasBlockingBooking 车辆是否存在 {approved, active} 订单（fleet 维保守卫用）。
func (r *Repo) HasBlockingBooking(ctx context.Context, carID string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&Booking{}).
		Where("car_id = ?", carID).
		Where("status IN ?", blockingStatuses).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Booking
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListFilter 查询条件。
type ListFilter struct {
	UserID string
	CarID  string
	Status Status
	Offset int
	Limit  int
}

// List 支持按 user_id / car_id / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Booking{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.CarID != "" {
		q = q.Where("car_id = ?", f.CarID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}
