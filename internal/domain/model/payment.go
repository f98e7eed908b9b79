package model

import "time"

// 決済記録。成功したチェックアウトごとに1件だけ作られる。
type Payment struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// ゲートウェイ側のcharge ID（不透明な文字列）
	ChargeID string `gorm:"type:varchar(255);not null" json:"charge_id"`

	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
