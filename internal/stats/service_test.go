package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RentaDrive/RentaDrive/internal/booking"
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
	require.NoError(t, gdb.AutoMigrate(&user.User{}, &fleet.Car{}, &booking.Booking{}))
	return gdb
}

func seedBooking(t *testing.T, gdb *gorm.DB, status booking.Status, price int64, completedAt *time.Time) {
	t.Helper()
	b := &booking.Booking{
		ID:          uuid.NewString(),
		UserID:      "cust-1",
		CarID:       "car-1",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(48 * time.Hour),
		Days:        2,
		TotalPrice:  price,
		Status:      status,
		CompletedAt: completedAt,
	}
	require.NoError(t, gdb.Create(b).Error)
}

func TestOverview(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewService(gdb)

	require.NoError(t, gdb.Create(&user.User{
		ID: uuid.NewString(), Email: "a@example.com", Name: "A", Role: user.RoleCustomer,
	}).Error)
	require.NoError(t, gdb.Create(&user.User{
		ID: uuid.NewString(), Email: "admin@example.com", Name: "Admin", Role: user.RoleAdmin,
	}).Error)
	require.NoError(t, gdb.Create(&fleet.Car{
		ID: "car-1", Name: "Avanza", LicensePlate: "B 1 A", Type: "MPV",
		Transmission: "manual", Seats: 7, PricePerDay: 300000, Status: fleet.StatusAvailable,
	}).Error)
	require.NoError(t, gdb.Create(&fleet.Car{
		ID: "car-2", Name: "Xenia", LicensePlate: "B 2 B", Type: "MPV",
		Transmission: "manual", Seats: 7, PricePerDay: 300000, Status: fleet.StatusRented,
	}).Error)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	inMonth := now.Add(-24 * time.Hour)
	lastMonth := now.AddDate(0, -1, 0)

	seedBooking(t, gdb, booking.StatusPending, 600000, nil)
	seedBooking(t, gdb, booking.StatusActive, 600000, nil)
	seedBooking(t, gdb, booking.StatusCompleted, 700000, &inMonth)
	// 上月完成的不计入当月营收
	seedBooking(t, gdb, booking.StatusCompleted, 900000, &lastMonth)

	ov, err := svc.Overview(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 2, ov.TotalCars)
	require.EqualValues(t, 1, ov.AvailableCars)
	require.EqualValues(t, 1, ov.PendingBookings)
	require.EqualValues(t, 1, ov.ActiveBookings)
	require.EqualValues(t, 1, ov.ActiveCustomers)
	require.EqualValues(t, 700000, ov.MonthlyRevenue)
	require.Len(t, ov.RecentBookings, 4)
}
