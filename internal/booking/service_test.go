package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RentaDrive/RentaDrive/internal/fleet"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&fleet.Car{}, &Booking{}))
	return gdb
}

func seedCar(t *testing.T, gdb *gorm.DB, pricePerDay int64) *fleet.Car {
	t.Helper()
	c := &fleet.Car{
		ID:           uuid.NewString(),
		Name:         "Toyota Avanza",
		LicensePlate: "B " + uuid.NewString()[:8],
		Type:         "MPV",
		Transmission: "manual",
		Seats:        7,
		PricePerDay:  pricePerDay,
		Status:       fleet.StatusAvailable,
	}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

var (
	admin    = Actor{ID: "admin-1", Role: user.RoleAdmin}
	customer = Actor{ID: "cust-1", Role: user.RoleCustomer}
)

func TestCreateComputesFrozenPriceSnapshot(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 350000)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-02-14"),
		EndDate:   date("2026-02-16"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, b.Status)
	require.Equal(t, 2, b.Days)
	require.Equal(t, int64(700000), b.TotalPrice)

	// 改价不影响已有订单的价格快照
	require.NoError(t, gdb.Model(&fleet.Car{}).Where("id = ?", car.ID).Update("price_per_day", 999999).Error)
	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(700000), got.TotalPrice)
}

func TestCreateRejectsInvalidRange(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-02-16"),
		EndDate:   date("2026-02-16"),
	})
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-02-16"),
		EndDate:   date("2026-02-14"),
	})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestPartialDayRoundsUp(t *testing.T) {
	start := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	if got := rentalDays(start, end); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := rentalDays(date("2026-02-14"), date("2026-02-15")); got != 1 {
		t.Fatalf("expected 1 day, got %d", got)
	}
}

func TestOverlapBlocksOnlyApprovedAndActive(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-03-01"),
		EndDate:   date("2026-03-05"),
	})
	require.NoError(t, err)

	// pending 不占档期，重叠下单仍然允许
	_, err = svc.Create(ctx, CreateInput{
		UserID:    "cust-2",
		CarID:     car.ID,
		StartDate: date("2026-03-02"),
		EndDate:   date("2026-03-04"),
	})
	require.NoError(t, err)

	// 批准后占档期，重叠下单被拒绝
	_, err = svc.Transition(ctx, first.ID, StatusApproved, admin, time.Now())
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		UserID:    "cust-3",
		CarID:     car.ID,
		StartDate: date("2026-03-04"),
		EndDate:   date("2026-03-06"),
	})
	require.ErrorIs(t, err, ErrCarUnavailable)

	// [start, end) 是半开区间：与 end 相接的订单不冲突
	_, err = svc.Create(ctx, CreateInput{
		UserID:    "cust-4",
		CarID:     car.ID,
		StartDate: date("2026-03-05"),
		EndDate:   date("2026-03-07"),
	})
	require.NoError(t, err)
}

func TestTransitionLifecycleUpdatesCarStatus(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()
	now := time.Now()

	b, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-04-01"),
		EndDate:   date("2026-04-03"),
	})
	require.NoError(t, err)

	b, err = svc.Transition(ctx, b.ID, StatusApproved, admin, now)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, b.Status)
	requireCarStatus(t, gdb, car.ID, fleet.StatusAvailable)

	b, err = svc.Transition(ctx, b.ID, StatusActive, admin, now)
	require.NoError(t, err)
	require.NotNil(t, b.StartedAt)
	requireCarStatus(t, gdb, car.ID, fleet.StatusRented)

	b, err = svc.Transition(ctx, b.ID, StatusCompleted, admin, now)
	require.NoError(t, err)
	require.NotNil(t, b.CompletedAt)
	requireCarStatus(t, gdb, car.ID, fleet.StatusAvailable)
}

func TestCancelBeforeActiveLeavesCarUntouched(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-05-01"),
		EndDate:   date("2026-05-03"),
	})
	require.NoError(t, err)

	// 订单归属人可以自己取消
	b, err = svc.Transition(ctx, b.ID, StatusCancelled, customer, time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, b.Status)
	requireCarStatus(t, gdb, car.ID, fleet.StatusAvailable)
}

func TestTransitionRejectsIllegalAndUnauthorized(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()
	now := time.Now()

	b, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-06-01"),
		EndDate:   date("2026-06-03"),
	})
	require.NoError(t, err)

	// pending 直接到 active 不在流转表里
	_, err = svc.Transition(ctx, b.ID, StatusActive, admin, now)
	require.True(t, IsIllegalTransition(err), "expected IllegalTransitionError, got %v", err)

	// 普通客户不能批准
	_, err = svc.Transition(ctx, b.ID, StatusApproved, customer, now)
	require.ErrorIs(t, err, ErrNotAllowed)

	// 其他客户不能取消不属于自己的订单
	_, err = svc.Transition(ctx, b.ID, StatusCancelled, Actor{ID: "cust-9", Role: user.RoleCustomer}, now)
	require.ErrorIs(t, err, ErrNotAllowed)

	// 失败的流转不应改动订单
	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
}

func TestListFiltersByUserAndStatus(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))
	car := seedCar(t, gdb, 100000)
	car2 := seedCar(t, gdb, 200000)
	ctx := context.Background()

	mk := func(userID, carID, start, end string) *Booking {
		b, err := svc.Create(ctx, CreateInput{
			UserID: userID, CarID: carID,
			StartDate: date(start), EndDate: date(end),
		})
		require.NoError(t, err)
		return b
	}
	b1 := mk("u-1", car.ID, "2026-07-01", "2026-07-03")
	mk("u-2", car.ID, "2026-07-10", "2026-07-12")
	mk("u-1", car2.ID, "2026-07-05", "2026-07-07")

	_, err := svc.Transition(ctx, b1.ID, StatusApproved, admin, time.Now())
	require.NoError(t, err)

	got, total, err := svc.List(ctx, ListFilter{UserID: "u-1"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, got, 2)

	got, total, err = svc.List(ctx, ListFilter{Status: StatusApproved})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, b1.ID, got[0].ID)

	got, total, err = svc.List(ctx, ListFilter{CarID: car2.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestHasBlockingBookingForMaintenanceGuard(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewRepo(gdb)
	svc := NewService(repo)
	car := seedCar(t, gdb, 100000)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID:    customer.ID,
		CarID:     car.ID,
		StartDate: date("2026-08-01"),
		EndDate:   date("2026-08-03"),
	})
	require.NoError(t, err)

	busy, err := repo.HasBlockingBooking(ctx, car.ID)
	require.NoError(t, err)
	require.False(t, busy, "pending booking must not block maintenance")

	_, err = svc.Transition(ctx, b.ID, StatusApproved, admin, time.Now())
	require.NoError(t, err)

	busy, err = repo.HasBlockingBooking(ctx, car.ID)
	require.NoError(t, err)
	require.True(t, busy)
}

func requireCarStatus(t *testing.T, gdb *gorm.DB, carID string, want fleet.Status) {
	t.Helper()
	var car fleet.Car
	require.NoError(t, gdb.Where("id = ?", carID).First(&car).Error)
	require.Equal(t, want, car.Status)
}

func TestGetUnknownBookingReturnsNotFound(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(NewRepo(gdb))

	_, err := svc.Get(context.Background(), uuid.NewString())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
