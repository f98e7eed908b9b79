package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	//オープンカート（ordered=false）を取得。無ければ ErrNotFound
	FindOpenByUserID(ctx context.Context, userID int64) (model.Order, error)

	//オープンカートを取得し、無ければ作成（行ロック付き）
	GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Order, error)

	//確定済み注文のうち最新の1件（ordered_date desc, id desc）
	FindLatestPlacedByUserID(ctx context.Context, userID int64) (model.Order, error)

	//チェックアウトで配送先を張る
	AttachAddress(ctx context.Context, orderID int64, addressID int64) error

	//決済成功時に ordered=true へ進めて Payment を張る。一方向。
	MarkPlaced(ctx context.Context, orderID int64, paymentID int64) error
}
