package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 配送先住所(CheckoutAddress)を保存・取得する窓口
type AddressRepository interface {
	//作成後はIDなどが埋まったものを返す
	Create(ctx context.Context, address model.CheckoutAddress) (model.CheckoutAddress, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.CheckoutAddress, error)
	FindByID(ctx context.Context, addressID int64) (model.CheckoutAddress, error)
}
