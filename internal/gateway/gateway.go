package gateway

import (
	"context"
	"fmt"
)

// ゲートウェイ障害の分類。ユーザー向けメッセージに変換される。
type ErrorKind string

const (
	KindCardDeclined         ErrorKind = "CARD_DECLINED"
	KindRateLimited          ErrorKind = "RATE_LIMITED"
	KindInvalidRequest       ErrorKind = "INVALID_REQUEST"
	KindAuthenticationFailed ErrorKind = "AUTHENTICATION_FAILED"
	KindNetworkError         ErrorKind = "NETWORK_ERROR"
	KindGatewayGeneric       ErrorKind = "GATEWAY_GENERIC"
	KindUnclassified         ErrorKind = "UNCLASSIFIED"
)

// 決済ゲートウェイの失敗。例外ではなく値で返す。
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

type ChargeInput struct {
	//最小通貨単位（USDならcents）
	AmountMinor int64
	Currency    string
	//クライアントから渡される不透明トークン
	Token string
}

type Charge struct {
	//ゲートウェイ側のcharge ID
	ID string
}

// 決済ゲートウェイ。1回の同期リクエストで課金する。リトライはしない。
type Gateway interface {
	CreateCharge(ctx context.Context, in ChargeInput) (Charge, error)
}
