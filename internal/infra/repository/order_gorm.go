package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// ユーザーのオープンカートを取得
func (r *OrderGormRepository) FindOpenByUserID(ctx context.Context, userID int64) (model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ordered = ?", userID, false).
		Order("id desc").
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// ユーザーのオープンカートを取得し、無ければ作成。
// 同一ユーザーの同時リクエストで2つ作らないよう行ロックで探す。
func (r *OrderGormRepository) GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Order, error) {
	var order model.Order

	//トランザクションで探す→無ければ作る
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND ordered = ?", userID, false).
			Order("id desc").
			First(&order).Error

		if findErr == nil {
			return nil
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// 無ければ作る
		now := time.Now()
		newOrder := model.Order{
			UserID:      userID,
			Ordered:     false,
			OrderedDate: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := tx.Create(&newOrder).Error; err != nil {
			retryErr := tx.
				Where("user_id = ? AND ordered = ?", userID, false).
				Order("id desc").
				First(&order).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		order = newOrder
		return nil
	})

	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// 確定済み注文のうち最新の1件
func (r *OrderGormRepository) FindLatestPlacedByUserID(ctx context.Context, userID int64) (model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ordered = ?", userID, true).
		Order("ordered_date desc, id desc").
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) AttachAddress(ctx context.Context, orderID int64, addressID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("address_id", addressID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ordered=false の行だけを進める。確定済みをもう一度確定はできない。
func (r *OrderGormRepository) MarkPlaced(ctx context.Context, orderID int64, paymentID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND ordered = ?", orderID, false).
		Updates(map[string]interface{}{
			"ordered":    true,
			"payment_id": paymentID,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
