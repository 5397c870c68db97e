package document

import (
	"time"

	"gorm.io/gorm"
)

// Type 证件类型。
type Type string

const (
	TypeKTP   Type = "ktp" // 身份证
	TypeSIM   Type = "sim" // 驾照
	TypeOther Type = "other"
)

// ValidType 判断证件类型是否合法。
func ValidType(t Type) bool {
	switch t {
	case TypeKTP, TypeSIM, TypeOther:
		return true
	}
	return false
}

// Document 用户上传的证件记录。
// 审核状态单向：未审核 -> 已审核，审核人与时间一并留痕。
type Document struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     string         `gorm:"index;size:36;not null" json:"user_id"`
	BookingID  *string        `gorm:"index;size:36" json:"booking_id,omitempty"`
	Type       Type           `gorm:"size:16;not null" json:"type"`
	FileURL    string         `gorm:"size:512;not null" json:"file_url"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	VerifiedBy *string        `gorm:"size:36" json:"verified_by,omitempty"`
	VerifiedAt *time.Time     `json:"verified_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
