package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	//注文内の該当商品の明細を取得。無ければ ErrNotFound
	FindLine(ctx context.Context, orderID int64, itemID int64) (model.OrderItem, error)

	Create(ctx context.Context, line model.OrderItem) (int64, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error

	//注文確定時に明細を固定する
	MarkOrderedByOrderID(ctx context.Context, orderID int64) error
}
