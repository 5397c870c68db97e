package tracking

import "time"

// Sample 是 tracking_history 表的 GORM 模型。
// 只插入不更新：每条是一次位置采样；车辆上缓存的“当前位置”
// 始终等于该车时间戳最大的一条。
type Sample struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CarID     string    `gorm:"index:idx_tracking_car_ts;size:36;not null" json:"car_id"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lng       float64   `gorm:"not null" json:"lng"`
	Speed     float64   `json:"speed"` // km/h
	Timestamp time.Time `gorm:"index:idx_tracking_car_ts;not null" json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 保持与原有库表命名一致。
func (Sample) TableName() string {
	return "tracking_history"
}
