package user

import (
	"time"

	"gorm.io/gorm"
)

// Role 用户角色。admin 可以管理车队/订单，customer 只能操作自己的订单。
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User 是 users 表的 GORM 模型。
// 用户不做物理删除（审计需要），使用 gorm 软删除。
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Role         Role           `gorm:"type:varchar(16);not null;default:'customer'" json:"role"`
	PasswordHash string         `gorm:"size:128;not null" json:"-"`
	PasswordSalt string         `gorm:"size:64;not null" json:"-"`
	ImageURL     string         `gorm:"size:255" json:"image_url,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin 是否管理员。
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
