package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.stripe.com"

// Stripeクライアントの設定。APIキーはプロセス全体の変数ではなく明示的に渡す。
type StripeConfig struct {
	APIKey string

	// テスト時に差し替える。空ならStripe本番。
	BaseURL string

	HTTPClient *http.Client
}

type StripeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewStripeClient(cfg StripeConfig) *StripeClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	return &StripeClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: hc,
	}
}

// Stripeのエラー応答
type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type stripeChargeBody struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateCharge は POST /v1/charges を1回だけ呼ぶ。
func (c *StripeClient) CreateCharge(ctx context.Context, in ChargeInput) (Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.AmountMinor, 10))
	form.Set("currency", in.Currency)
	form.Set("source", in.Token)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/charges",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return Charge{}, &Error{Kind: KindInvalidRequest, Message: err.Error()}
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	//同じ課金を二重送信しないためのキー
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Charge{}, &Error{Kind: KindNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var body stripeChargeBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return Charge{}, &Error{Kind: KindUnclassified, Message: err.Error()}
		}
		if body.ID == "" {
			return Charge{}, &Error{Kind: KindUnclassified, Message: "charge id missing in response"}
		}
		return Charge{ID: body.ID}, nil
	}

	var body stripeErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Charge{}, &Error{Kind: KindUnclassified, Message: resp.Status}
	}

	return Charge{}, classifyStripeError(body.Error.Type, body.Error.Message)
}

// Stripeのerror.typeを分類に落とす
func classifyStripeError(errType string, message string) *Error {
	switch errType {
	case "card_error":
		return &Error{Kind: KindCardDeclined, Message: message}
	case "rate_limit_error":
		return &Error{Kind: KindRateLimited, Message: message}
	case "invalid_request_error":
		return &Error{Kind: KindInvalidRequest, Message: message}
	case "authentication_error":
		return &Error{Kind: KindAuthenticationFailed, Message: message}
	case "api_connection_error":
		return &Error{Kind: KindNetworkError, Message: message}
	case "api_error", "idempotency_error":
		return &Error{Kind: KindGatewayGeneric, Message: message}
	default:
		return &Error{Kind: KindUnclassified, Message: message}
	}
}
