package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment model.Payment) (int64, error)
	FindByID(ctx context.Context, paymentID int64) (model.Payment, error)
}
