package model

import "time"

// カートの明細（1商品×数量）。
// Ordered=false の間だけ数量を変更できる。注文確定で true に固定。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	ItemID    int64     `gorm:"not null;index" json:"item_id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Ordered   bool      `gorm:"not null;default:false;index" json:"ordered"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
