package model

import "time"

// 注文。Ordered=false がオープンカート、true が確定済み。
// 1ユーザーにつきオープンカートは1つ。確定は一方向（戻らない）。
type Order struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	Ordered     bool      `gorm:"not null;default:false;index" json:"ordered"`
	OrderedDate time.Time `gorm:"not null" json:"ordered_date"`

	// 決済成功時に1回だけ張られる
	PaymentID *int64 `gorm:"index" json:"payment_id,omitempty"`

	// チェックアウトで保存する配送先
	AddressID *int64 `gorm:"index" json:"address_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
