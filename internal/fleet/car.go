package fleet

import (
	"time"
)

// Status 车辆状态。rented 由订单生效时写入，available 由订单完结时写回，
// maintenance 只能在车辆没有生效中/已批准订单时设置。
type Status string

const (
	StatusAvailable   Status = "available"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
)

// Car 是 cars 表的 GORM 模型。
// CurrentLat/CurrentLng/LastLocationUpdate 是 tracking_history 最新一条的反范式缓存，
// 只允许 tracking 侧按时间戳单调推进，不能独立设置。
type Car struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	LicensePlate string `gorm:"uniqueIndex;size:20;not null" json:"license_plate"`
	Type         string `gorm:"size:50" json:"type"`
	Transmission string `gorm:"size:20" json:"transmission"`
	Seats        int    `gorm:"not null;default:4" json:"seats"`

	// 日租价（单位：最小货币单位）
	PricePerDay int64  `gorm:"not null;default:0" json:"price_per_day"`
	Status      Status `gorm:"type:varchar(16);index;not null;default:'available'" json:"status"`
	ImageURL    string `gorm:"size:255" json:"image_url,omitempty"`

	// 最近位置缓存
	CurrentLat         *float64   `json:"current_lat,omitempty"`
	CurrentLng         *float64   `json:"current_lng,omitempty"`
	LastLocationUpdate *time.Time `json:"last_location_update,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Features []CarFeature `gorm:"many2many:car_feature_values" json:"features,omitempty"`
}

// CarFeature 车辆配置标签（空调、蓝牙等），纯描述性。
type CarFeature struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Icon string `gorm:"size:50" json:"icon,omitempty"`
}
