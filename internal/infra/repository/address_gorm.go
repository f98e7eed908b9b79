package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) Create(ctx context.Context, address model.CheckoutAddress) (model.CheckoutAddress, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.CheckoutAddress{}, err
	}
	return address, nil
}

func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CheckoutAddress, error) {
	var addrs []model.CheckoutAddress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&addrs).Error; err != nil {
		return []model.CheckoutAddress{}, err
	}
	return addrs, nil
}

func (r *AddressGormRepository) FindByID(ctx context.Context, addressID int64) (model.CheckoutAddress, error) {
	var addr model.CheckoutAddress
	err := r.db.WithContext(ctx).Where("id = ?", addressID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutAddress{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutAddress{}, err
	}
	return addr, nil
}
