package usecase

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 「オープンカートは1ユーザー1つ」を守りながら明細の数量を動かす。
// find-or-create と加算が同一ユーザーの同時リクエストで競合しないよう、
// 変更系は必ず1トランザクションで回す。
type CartUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartLineResponse struct {
	ID       int64   `json:"id"`
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// Message はユーザー向けの通知。操作の結果と一緒に返す。
type CartResponse struct {
	Message string             `json:"message,omitempty"`
	Items   []CartLineResponse `json:"items"`
	Total   float64            `json:"total"`
}

// AddToCart は商品をカートに入れる。
// オープンカートが無ければ作り、既に同じ商品があれば数量を+1する。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品チェック
		item, err := r.Items().FindByID(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//オープンカート取得（無ければ作成）
		order, err := r.Orders().GetOrCreateOpenByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		var message string

		line, err := r.OrderItems().FindLine(ctx, order.ID, item.ID)
		switch {
		case err == nil:
			// 既にカートにある商品は数量を+1
			if err := r.OrderItems().UpdateQuantity(ctx, line.ID, line.Quantity+1); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			message = "Item quantity updated"

		case err == repo.ErrNotFound:
			_, err := r.OrderItems().Create(ctx, model.OrderItem{
				OrderID:  order.ID,
				ItemID:   item.ID,
				UserID:   userID,
				Quantity: 1,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			message = "Item added to your cart"

		default:
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, order.ID, message)
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// RemoveFromCart は明細を丸ごと削除する（数量は見ない）。
// カートや明細が無い場合はエラーにせず通知だけ返す。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.Items().FindByID(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order, err := r.Orders().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			//オープンカート無しはno-op
			out = CartResponse{Message: "You do not have an order", Items: []CartLineResponse{}}
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		line, err := r.OrderItems().FindLine(ctx, order.ID, item.ID)
		if err == repo.ErrNotFound {
			out, err = buildCartResponse(ctx, r, order.ID, "This item is not in your cart")
			return err
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().DeleteByID(ctx, line.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		message := fmt.Sprintf("Item %q removed from your cart", item.Name)
		out, err = buildCartResponse(ctx, r, order.ID, message)
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// ReduceQuantity は数量を-1する。1だった明細は行ごと消える。
// 数量0の明細は残さない。
func (u *CartUsecase) ReduceQuantity(ctx context.Context, userID int64, itemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.Items().FindByID(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order, err := r.Orders().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			out = CartResponse{Message: "You do not have an order", Items: []CartLineResponse{}}
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		line, err := r.OrderItems().FindLine(ctx, order.ID, item.ID)
		if err == repo.ErrNotFound {
			out, err = buildCartResponse(ctx, r, order.ID, "This item is not in your cart")
			return err
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if line.Quantity > 1 {
			if err := r.OrderItems().UpdateQuantity(ctx, line.ID, line.Quantity-1); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if err := r.OrderItems().DeleteByID(ctx, line.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out, err = buildCartResponse(ctx, r, order.ID, "Item quantity has been updated")
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// GetCart はオープンカートの中身を返す。無ければ404。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "You do not have an order")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildCartResponse(ctx, r, order.ID, "")
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 明細と商品をまとめてCartResponseを作る。
// 合計は常に sum(price × quantity) をその場で計算する。
func buildCartResponse(ctx context.Context, r repo.TxRepos, orderID int64, message string) (CartResponse, error) {
	lines, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartLineResponse, 0, len(lines))
	var total float64 = 0

	for _, line := range lines {
		item, err := r.Items().FindByID(ctx, line.ItemID)
		if err != nil {
			continue
		}

		subtotal := item.Price * float64(line.Quantity)

		respItems = append(respItems, CartLineResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: line.Quantity,
			Subtotal: subtotal,
		})

		total += subtotal
	}

	return CartResponse{Message: message, Items: respItems, Total: total}, nil
}
