package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/RentaDrive/RentaDrive/internal/booking"
	"github.com/RentaDrive/RentaDrive/internal/fleet"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

// Overview 管理后台首页的汇总指标。
type Overview struct {
	TotalCars       int64             `json:"total_cars"`
	AvailableCars   int64             `json:"available_cars"`
	PendingBookings int64             `json:"pending_bookings"`
	ActiveBookings  int64             `json:"active_bookings"`
	ActiveCustomers int64             `json:"active_customers"`
	MonthlyRevenue  int64             `json:"monthly_revenue"` // 当月已完成订单的总价之和，单位：分
	RecentBookings  []booking.Booking `json:"recent_bookings"`
}

// Service 管理端统计，直接在库上做聚合查询。
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Overview 生成汇总指标。月度口径为服务器本地时区的自然月。
func (s *Service) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	var ov Overview
	gdb := s.db.WithContext(ctx)

	if err := gdb.Model(&fleet.Car{}).Count(&ov.TotalCars).Error; err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}
	if err := gdb.Model(&fleet.Car{}).Where("status = ?", fleet.StatusAvailable).
		Count(&ov.AvailableCars).Error; err != nil {
		return nil, fmt.Errorf("count available cars: %w", err)
	}
	if err := gdb.Model(&booking.Booking{}).Where("status = ?", booking.StatusPending).
		Count(&ov.PendingBookings).Error; err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}
	if err := gdb.Model(&booking.Booking{}).Where("status = ?", booking.StatusActive).
		Count(&ov.ActiveBookings).Error; err != nil {
		return nil, fmt.Errorf("count active bookings: %w", err)
	}
	if err := gdb.Model(&user.User{}).Where("role = ?", user.RoleCustomer).
		Count(&ov.ActiveCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var revenue struct{ Total int64 }
	if err := gdb.Model(&booking.Booking{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Where("status = ? AND completed_at >= ?", booking.StatusCompleted, monthStart).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("sum monthly revenue: %w", err)
	}
	ov.MonthlyRevenue = revenue.Total

	if err := gdb.Model(&booking.Booking{}).
		Order("created_at DESC").Limit(5).Find(&ov.RecentBookings).Error; err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}

	return &ov, nil
}
