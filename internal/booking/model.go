package booking

import "time"

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "pending"   // 客户已提交，待审批
	StatusApproved  Status = "approved"  // 管理员已批准，待取车
	StatusActive    Status = "active"    // 租期生效中（车辆已交付）
	StatusCompleted Status = "completed" // 已还车
	StatusCancelled Status = "cancelled" // 已取消（客户或管理员）
)

// Booking 订单 GORM 模型。
// TotalPrice 是创建时按当时日租价算好的快照，之后车辆改价不影响已有订单。
type Booking struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 业务关联
	UserID string `gorm:"index;size:36;not null" json:"user_id"`
	CarID  string `gorm:"index;size:36;not null" json:"car_id"`
	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	// 租期（日历日；区间为 [StartDate, EndDate)）
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	// 金额信息（单位：最小货币单位）
	Days       int   `gorm:"not null" json:"days"`
	TotalPrice int64 `gorm:"not null" json:"total_price"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// 时间信息
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`  // 批准时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 取车时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 还车时间
	CancelledAt *time.Time `json:"cancelled_at,omitempty"` // 取消时间
}
