package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// CatalogUsecase は /items の業務ロジックです。
// 商品は読み取り専用のカタログで、カート側からは変更しない。
type CatalogUsecase struct {
	itemRepo repo.ItemRepository
}

// DI
func NewCatalogUsecase(itemRepo repo.ItemRepository) *CatalogUsecase {
	return &CatalogUsecase{itemRepo: itemRepo}
}

type ItemResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageName string  `json:"image_name"`
}

func (u *CatalogUsecase) ListItems(ctx context.Context) ([]ItemResponse, error) {
	items, err := u.itemRepo.List(ctx)
	if err != nil {
		return []ItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out, nil
}

func (u *CatalogUsecase) GetItem(ctx context.Context, itemID int64) (ItemResponse, error) {
	if itemID <= 0 {
		return ItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := u.itemRepo.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return ItemResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
	}
	if err != nil {
		return ItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toItemResponse(item), nil
}

func toItemResponse(it model.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Price:     it.Price,
		ImageName: it.ImageName,
	}
}
