package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RentaDrive/RentaDrive/internal/common/auth"
	"github.com/RentaDrive/RentaDrive/internal/common/config"
)

var testAuthCfg = config.AuthConfig{
	Enabled:     true,
	JWTSecret:   "test-secret",
	Issuer:      "rental-service-test",
	TokenTTLMin: 30,
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&User{}))
	return NewService(NewRepo(gdb), testAuthCfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name:     "Budi Santoso",
		Email:    "Budi@Example.com",
		Password: "rahasia123",
	})
	require.NoError(t, err)
	require.Equal(t, "budi@example.com", u.Email) // 邮箱归一化为小写
	require.Equal(t, RoleCustomer, u.Role)
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "rahasia123", u.PasswordHash)

	res, err := svc.Login(ctx, "budi@example.com", "rahasia123")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)
	require.NotEmpty(t, res.Token)

	claims, err := auth.ParseAccessToken(testAuthCfg, res.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Contains(t, claims.Roles, string(RoleCustomer))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "A@Example.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	require.Error(t, err) // 缺姓名

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "short"})
	require.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, u.ID, "Andi", "0812000111")
	require.NoError(t, err)
	require.Equal(t, "Andi", got.Name)
	require.Equal(t, "0812000111", got.Phone)
}
