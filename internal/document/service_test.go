package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RentaDrive/RentaDrive/internal/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&Document{}))
	return gdb
}

func TestUploadAndVerify(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	doc, err := svc.Upload(ctx, UploadInput{UserID: "cust-1", Type: TypeKTP, FileURL: "https://cdn.example.com/ktp.jpg"})
	require.NoError(t, err)
	require.False(t, doc.IsVerified)

	verified, err := svc.Verify(ctx, doc.ID, "admin-1", user.RoleAdmin)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedBy)
	require.Equal(t, "admin-1", *verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)

	// 重复审核被拒
	_, err = svc.Verify(ctx, doc.ID, "admin-1", user.RoleAdmin)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	doc, err := svc.Upload(ctx, UploadInput{UserID: "cust-1", Type: TypeSIM, FileURL: "https://cdn.example.com/sim.jpg"})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, doc.ID, "cust-2", user.RoleCustomer)
	require.ErrorIs(t, err, ErrNotAllowed)
}

func TestUploadRejectsUnknownType(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))

	_, err := svc.Upload(context.Background(), UploadInput{UserID: "cust-1", Type: "passport", FileURL: "https://cdn.example.com/x.jpg"})
	require.Error(t, err)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	doc, err := svc.Upload(ctx, UploadInput{UserID: "cust-1", Type: TypeKTP, FileURL: "https://cdn.example.com/ktp.jpg"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, doc.ID, "cust-2", user.RoleCustomer)
	require.ErrorIs(t, err, ErrNotAllowed)

	got, err := svc.Get(ctx, doc.ID, "cust-1", user.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)

	got, err = svc.Get(ctx, doc.ID, "admin-1", user.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)
}

func TestListByBooking(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	bookingID := uuid.NewString()
	_, err := svc.Upload(ctx, UploadInput{UserID: "cust-1", BookingID: &bookingID, Type: TypeKTP, FileURL: "https://cdn.example.com/a.jpg"})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, UploadInput{UserID: "cust-1", Type: TypeSIM, FileURL: "https://cdn.example.com/b.jpg"})
	require.NoError(t, err)

	docs, err := svc.ListByBooking(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, err = svc.ListByUser(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
}
