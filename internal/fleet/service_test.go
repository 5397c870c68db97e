package fleet

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&Car{}, &CarFeature{}))
	return gdb
}

// fakeChecker 固定返回值的订单占用探针。
type fakeChecker struct {
	busy bool
	err  error
}

func (f fakeChecker) HasBlockingBooking(ctx context.Context, carID string) (bool, error) {
	return f.busy, f.err
}

func newCar(t *testing.T, svc *Service) *Car {
	t.Helper()
	c, err := svc.CreateCar(context.Background(), CreateCarInput{
		Name:         "Honda Brio",
		LicensePlate: "B " + uuid.NewString()[:8],
		Type:         "hatchback",
		Transmission: "automatic",
		Seats:        5,
		PricePerDay:  250000,
	})
	require.NoError(t, err)
	return c
}

func TestSetMaintenanceFreeCar(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{busy: false})
	c := newCar(t, svc)

	got, err := svc.SetMaintenance(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusMaintenance, got.Status)
}

func TestSetMaintenanceBusyCar(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{busy: true})
	c := newCar(t, svc)

	_, err := svc.SetMaintenance(context.Background(), c.ID)
	require.ErrorIs(t, err, ErrCarBusy)

	// 状态不变
	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, got.Status)
}

func TestClearMaintenance(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{})
	c := newCar(t, svc)

	// 不在维保状态时清除是错误
	_, err := svc.ClearMaintenance(context.Background(), c.ID)
	require.ErrorIs(t, err, ErrNotInMaintenance)

	_, err = svc.SetMaintenance(context.Background(), c.ID)
	require.NoError(t, err)

	got, err := svc.ClearMaintenance(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, got.Status)
}

func TestCreateCarValidation(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{})

	_, err := svc.CreateCar(context.Background(), CreateCarInput{Name: "X", PricePerDay: 100})
	require.Error(t, err) // 缺车牌

	_, err = svc.CreateCar(context.Background(), CreateCarInput{Name: "X", LicensePlate: "B 1 A"})
	require.Error(t, err) // 缺价格
}

func TestUpdateCarDoesNotTouchStatus(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{})
	c := newCar(t, svc)

	_, err := svc.SetMaintenance(context.Background(), c.ID)
	require.NoError(t, err)

	got, err := svc.UpdateCar(context.Background(), c.ID, UpdateCarInput{PricePerDay: 999000})
	require.NoError(t, err)
	require.EqualValues(t, 999000, got.PricePerDay)
	require.Equal(t, StatusMaintenance, got.Status)
}

func TestFeaturesAttachAndReplace(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{})

	ac, err := svc.CreateFeature(context.Background(), "AC", "snowflake")
	require.NoError(t, err)
	gps, err := svc.CreateFeature(context.Background(), "GPS", "map-pin")
	require.NoError(t, err)

	c, err := svc.CreateCar(context.Background(), CreateCarInput{
		Name:         "Toyota Rush",
		LicensePlate: "B " + uuid.NewString()[:8],
		Type:         "SUV",
		Transmission: "automatic",
		Seats:        7,
		PricePerDay:  400000,
		FeatureIDs:   []string{ac.ID, gps.ID},
	})
	require.NoError(t, err)
	require.Len(t, c.Features, 2)

	c, err = svc.UpdateCar(context.Background(), c.ID, UpdateCarInput{FeatureIDs: []string{gps.ID}})
	require.NoError(t, err)
	require.Len(t, c.Features, 1)
	require.Equal(t, "GPS", c.Features[0].Name)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, got.Features, 1)
}

func TestListFilterByStatus(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)), fakeChecker{})
	newCar(t, svc)
	c2 := newCar(t, svc)

	_, err := svc.SetMaintenance(context.Background(), c2.ID)
	require.NoError(t, err)

	cars, total, err := svc.List(context.Background(), StatusAvailable, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, cars, 1)

	cars, total, err = svc.List(context.Background(), "", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, cars, 2)
}
