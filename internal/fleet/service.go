package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrCarBusy 车辆存在已批准/生效中的订单，不能进入维保。
	// 策略：禁止，不提供强制取消路径。
	ErrCarBusy = errors.New("car has an approved or active booking")
	// ErrNotInMaintenance 车辆不在维保状态。
	ErrNotInMaintenance = errors.New("car is not in maintenance")
)

// BookingChecker 查询车辆的订单占用情况（由 booking 侧实现，避免包循环依赖）。
type BookingChecker interface {
	// HasBlockingBooking 车辆是否存在 {approved, active} 状态的订单。
	HasBlockingBooking(ctx context.Context, carID string) (bool, error)
}

// Service 封装车队领域的核心用例。
type Service struct {
	repo    *Repo
	checker BookingChecker
}

func NewService(repo *Repo, checker BookingChecker) *Service {
	return &Service{repo: repo, checker: checker}
}

// CreateCarInput 新增车辆入参。
type CreateCarInput struct {
	Name         string
	LicensePlate string
	Type         string
	Transmission string
	Seats        int
	PricePerDay  int64
	ImageURL     string
	FeatureIDs   []string
}

func (s *Service) CreateCar(ctx context.Context, in CreateCarInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	plate := strings.TrimSpace(in.LicensePlate)
	if plate == "" {
		return nil, fmt.Errorf("license_plate required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name required")
	}
	if in.PricePerDay <= 0 {
		return nil, fmt.Errorf("price_per_day must be positive")
	}
	seats := in.Seats
	if seats <= 0 {
		seats = 4
	}

	c := &Car{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		LicensePlate: plate,
		Type:         strings.TrimSpace(in.Type),
		Transmission: strings.TrimSpace(in.Transmission),
		Seats:        seats,
		PricePerDay:  in.PricePerDay,
		Status:       StatusAvailable,
		ImageURL:     strings.TrimSpace(in.ImageURL),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if len(in.FeatureIDs) > 0 {
		fs, err := s.repo.FindFeaturesByIDs(ctx, in.FeatureIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceFeatures(ctx, c, fs); err != nil {
			return nil, err
		}
		c.Features = fs
	}
	return c, nil
}

// UpdateCarInput 更新车辆入参；零值字段不变。
// 注意：Status 不在这里，车辆状态只跟随订单/维保流转。
type UpdateCarInput struct {
	Name         string
	Type         string
	Transmission string
	Seats        int
	PricePerDay  int64
	ImageURL     string
	FeatureIDs   []string // nil 表示不动标签
}

func (s *Service) UpdateCar(ctx context.Context, id string, in UpdateCarInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(in.Type); v != "" {
		c.Type = v
	}
	if v := strings.TrimSpace(in.Transmission); v != "" {
		c.Transmission = v
	}
	if in.Seats > 0 {
		c.Seats = in.Seats
	}
	if in.PricePerDay > 0 {
		// 改价只影响之后创建的订单；已有订单的价格是创建时的快照
		c.PricePerDay = in.PricePerDay
	}
	if v := strings.TrimSpace(in.ImageURL); v != "" {
		c.ImageURL = v
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if in.FeatureIDs != nil {
		fs, err := s.repo.FindFeaturesByIDs(ctx, in.FeatureIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceFeatures(ctx, c, fs); err != nil {
			return nil, err
		}
		c.Features = fs
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, offset, limit int) ([]Car, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, status, offset, limit)
}

// SetMaintenance 将车辆置为维保状态。
// 存在 {approved, active} 订单时拒绝（ErrCarBusy）。
func (s *Service) SetMaintenance(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.checker != nil {
		busy, err := s.checker.HasBlockingBooking(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, ErrCarBusy
		}
	}
	c.Status = StatusMaintenance
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClearMaintenance 维保完成，车辆回到可用状态。
func (s *Service) ClearMaintenance(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusMaintenance {
		return nil, ErrNotInMaintenance
	}
	c.Status = StatusAvailable
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateFeature 新增配置标签。
func (s *Service) CreateFeature(ctx context.Context, name, icon string) (*CarFeature, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	f := &CarFeature{
		ID:   uuid.NewString(),
		Name: name,
		Icon: strings.TrimSpace(icon),
	}
	if err := s.repo.CreateFeature(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListFeatures(ctx context.Context) ([]CarFeature, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.repo.ListFeatures(ctx)
}
