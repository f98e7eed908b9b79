package model

import "time"

// チェックアウト時に入力される配送先住所
type CheckoutAddress struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//番地など
	StreetAddress string `gorm:"type:varchar(255);not null" json:"street_address"`

	//建物名など
	ApartmentAddress string `gorm:"type:varchar(255)" json:"apartment_address"`

	//国コード（ISO 3166-1 alpha-2）
	Country string `gorm:"type:varchar(2);not null" json:"country"`

	//郵便番号
	Zip string `gorm:"type:varchar(20);not null" json:"zip"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
