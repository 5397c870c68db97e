package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/common/db"
	"github.com/RentaDrive/RentaDrive/internal/fleet"
)

// Service 封装订单领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput 创建订单的入参。
type CreateInput struct {
	UserID    string
	CarID     string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

// rentalDays 按“不足一天按一天算”折算租期天数；区间合法时结果 >= 1。
func rentalDays(start, end time.Time) int {
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Create 创建订单：
// - 区间非法返回 ErrInvalidRange
// - 车辆在 [start, end) 上已有 {approved, active} 订单返回 ErrCarUnavailable
// - 总价 = 天数 × 创建时的日租价，之后不再变化
// 重叠检查 + 插入在一个事务里完成，并对车辆行加锁，
// 防止两个并发请求对同一辆车的重叠区间同时下单。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	if s == nil || s.repo == nil || s.repo.DB() == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, fmt.Errorf("user_id required")
	}
	if strings.TrimSpace(in.CarID) == "" {
		return nil, fmt.Errorf("car_id required")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidRange
	}

	b := &Booking{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(in.UserID),
		CarID:     strings.TrimSpace(in.CarID),
		Status:    StatusPending,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Notes:     strings.TrimSpace(in.Notes),
	}

	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car fleet.Car
		if err := db.LockForUpdate(tx).Where("id = ?", b.CarID).First(&car).Error; err != nil {
			return err
		}

		overlap, err := s.repo.HasOverlapTx(tx, car.ID, b.StartDate, b.EndDate, "")
		if err != nil {
			return err
		}
		if overlap {
			return ErrCarUnavailable
		}

		b.Days = rentalDays(b.StartDate, b.EndDate)
		b.TotalPrice = int64(b.Days) * car.PricePerDay

		return tx.Create(b).Error
	})
	if err != nil {
		return nil, storageWrap("booking.create", err)
	}
	return b, nil
}

// Transition 根据状态机规则进行状态流转，并维护车辆状态：
// - 进入 active：车辆置为 rented
// - 进入 completed：车辆回到 available
// - 从 pending/approved 取消：不碰车辆
// 订单与车辆的读改写在同一个事务里完成。
func (s *Service) Transition(ctx context.Context, bookingID string, to Status, actor Actor, now time.Time) (*Booking, error) {
	if s == nil || s.repo == nil || s.repo.DB() == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("booking_id required")
	}
	if to == "" {
		return nil, fmt.Errorf("target status required")
	}

	var b *Booking
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur Booking
		if err := db.LockForUpdate(tx).Where("id = ?", bookingID).First(&cur).Error; err != nil {
			return err
		}

		if err := CheckActor(&cur, to, actor); err != nil {
			return err
		}
		if err := ApplyTransition(&cur, to, now); err != nil {
			return err
		}

		switch to {
		case StatusActive:
			if err := tx.Model(&fleet.Car{}).Where("id = ?", cur.CarID).
				Update("status", fleet.StatusRented).Error; err != nil {
				return err
			}
		case StatusCompleted:
			if err := tx.Model(&fleet.Car{}).Where("id = ?", cur.CarID).
				Update("status", fleet.StatusAvailable).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		b = &cur
		return nil
	})
	if err != nil {
		return nil, storageWrap("booking.transition", err)
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}

// storageWrap 把非领域错误包装成可重试的 StorageError；领域错误原样返回。
func storageWrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrCarUnavailable),
		errors.Is(err, ErrNotAllowed),
		errors.Is(err, gorm.ErrRecordNotFound),
		IsIllegalTransition(err):
		return err
	}
	return db.WrapStorage(op, err)
}
