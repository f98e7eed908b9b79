package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/gateway"
	repo "storefront/internal/repository"
)

// CheckoutUsecase はチェックアウトと決済のオーケストレーションです。
// 注文は OPEN → PLACED の一方向で、進めるのは決済成功だけ。
// チェックアウト自体は配送先を保存するだけで ordered は動かさない。
type CheckoutUsecase struct {
	tx repo.TransactionManager
	gw gateway.Gateway
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager, gw gateway.Gateway) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, gw: gw}
}

type CheckoutInput struct {
	StreetAddress    string
	ApartmentAddress string
	Country          string
	Zip              string
}

type CheckoutResponse struct {
	Message   string `json:"message"`
	OrderID   int64  `json:"order_id"`
	AddressID int64  `json:"address_id"`
}

// Checkout は配送先を検証して保存し、オープンカートに張る。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutResponse, error) {
	if userID <= 0 {
		return CheckoutResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	street := strings.TrimSpace(in.StreetAddress)
	country := strings.ToUpper(strings.TrimSpace(in.Country))
	zip := strings.TrimSpace(in.Zip)

	if street == "" {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "street address is required")
	}
	if len(country) != 2 {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid country code")
	}
	if zip == "" {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "zip is required")
	}

	var out CheckoutResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "You do not have an order")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		addr, err := r.Addresses().Create(ctx, model.CheckoutAddress{
			UserID:           userID,
			StreetAddress:    street,
			ApartmentAddress: strings.TrimSpace(in.ApartmentAddress),
			Country:          country,
			Zip:              zip,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().AttachAddress(ctx, order.ID, addr.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = CheckoutResponse{
			Message:   "Checkout address saved",
			OrderID:   order.ID,
			AddressID: addr.ID,
		}
		return nil
	})

	if err != nil {
		return CheckoutResponse{}, err
	}
	return out, nil
}

type PaymentResponse struct {
	Message   string  `json:"message"`
	OrderID   int64   `json:"order_id"`
	PaymentID int64   `json:"payment_id"`
	ChargeID  string  `json:"charge_id"`
	Amount    float64 `json:"amount"`
}

// Pay はオープンカートの合計を課金して注文を確定する。
//
// ゲートウェイ呼び出しはトランザクションの外で行う（ネットワーク待ちで
// 行ロックを抱えない）。成功後の書き込みは1トランザクションにまとめ、
// ordered=false の行だけを進めるので二重確定はできない。
// 失敗時は何も書かない。
func (u *CheckoutUsecase) Pay(ctx context.Context, userID int64, token string) (PaymentResponse, error) {
	if userID <= 0 {
		return PaymentResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(token) == "" {
		return PaymentResponse{}, NewHTTPError(http.StatusBadRequest, "missing payment token")
	}

	//オープンカートと合計を読む
	var orderID int64
	var total float64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "You do not have an order")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		lines, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "your cart is empty")
		}

		for _, line := range lines {
			item, err := r.Items().FindByID(ctx, line.ItemID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "item not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			total += item.Price * float64(line.Quantity)
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	//最小通貨単位へ（×100で切り捨て）
	amountMinor := int64(total * 100)

	charge, err := u.gw.CreateCharge(ctx, gateway.ChargeInput{
		AmountMinor: amountMinor,
		Currency:    "usd",
		Token:       token,
	})
	if err != nil {
		//失敗時は注文を動かさない
		return PaymentResponse{}, mapGatewayError(err)
	}

	var out PaymentResponse

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		paymentID, err := r.Payments().Create(ctx, model.Payment{
			ChargeID: charge.ID,
			UserID:   userID,
			Amount:   total,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().MarkPlaced(ctx, orderID, paymentID); err != nil {
			if err == repo.ErrNotFound {
				//課金とこの書き込みの間に確定済みになった
				return NewHTTPError(http.StatusConflict, "order already placed")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().MarkOrderedByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = PaymentResponse{
			Message:   "Your order has been placed",
			OrderID:   orderID,
			PaymentID: paymentID,
			ChargeID:  charge.ID,
			Amount:    total,
		}
		return nil
	})

	if err != nil {
		return PaymentResponse{}, err
	}
	return out, nil
}

type PlacedPaymentResponse struct {
	ChargeID string  `json:"charge_id"`
	Amount   float64 `json:"amount"`
}

type PlacedOrderResponse struct {
	ID          int64                  `json:"id"`
	OrderedDate time.Time              `json:"ordered_date"`
	Items       []CartLineResponse     `json:"items"`
	Total       float64                `json:"total"`
	Payment     *PlacedPaymentResponse `json:"payment,omitempty"`
}

// GetLatestPlacedOrder は確定済み注文のうち最新の1件を返す。
// 並びは ordered_date desc, id desc で固定。
func (u *CheckoutUsecase) GetLatestPlacedOrder(ctx context.Context, userID int64) (PlacedOrderResponse, error) {
	if userID <= 0 {
		return PlacedOrderResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out PlacedOrderResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindLatestPlacedByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "no placed orders")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cart, err := buildCartResponse(ctx, r, order.ID, "")
		if err != nil {
			return err
		}

		out = PlacedOrderResponse{
			ID:          order.ID,
			OrderedDate: order.OrderedDate,
			Items:       cart.Items,
			Total:       cart.Total,
		}

		if order.PaymentID != nil {
			p, err := r.Payments().FindByID(ctx, *order.PaymentID)
			if err != nil && err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err == nil {
				out.Payment = &PlacedPaymentResponse{
					ChargeID: p.ChargeID,
					Amount:   p.Amount,
				}
			}
		}

		return nil
	})

	if err != nil {
		return PlacedOrderResponse{}, err
	}
	return out, nil
}

// ゲートウェイの失敗分類をユーザー向けメッセージに変換する
func mapGatewayError(err error) error {
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		return NewHTTPError(http.StatusInternalServerError, "Not identified error")
	}

	switch ge.Kind {
	case gateway.KindCardDeclined:
		msg := ge.Message
		if msg == "" {
			msg = "Your card was declined"
		}
		return NewHTTPError(http.StatusPaymentRequired, msg)
	case gateway.KindRateLimited:
		return NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
	case gateway.KindInvalidRequest:
		return NewHTTPError(http.StatusBadRequest, "Invalid payment parameters")
	case gateway.KindAuthenticationFailed:
		return NewHTTPError(http.StatusBadGateway, "Authentication with the payment gateway failed")
	case gateway.KindNetworkError:
		return NewHTTPError(http.StatusBadGateway, "Network error, you were not charged")
	case gateway.KindGatewayGeneric:
		return NewHTTPError(http.StatusBadGateway, "Something went wrong, you were not charged")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Not identified error")
	}
}
