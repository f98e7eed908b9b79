package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/gateway"

	"github.com/stretchr/testify/assert"
)

func newTestClient(handler http.HandlerFunc) (*gateway.StripeClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := gateway.NewStripeClient(gateway.StripeConfig{
		APIKey:  "sk_test_123",
		BaseURL: srv.URL,
	})
	return client, srv
}

func TestCreateCharge_Success(t *testing.T) {
	var gotPath, gotAuth, gotIdemKey string
	var gotForm map[string]string

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")

		assert.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"amount":   r.PostFormValue("amount"),
			"currency": r.PostFormValue("currency"),
			"source":   r.PostFormValue("source"),
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_abc123","status":"succeeded"}`))
	})
	defer srv.Close()

	charge, err := client.CreateCharge(context.Background(), gateway.ChargeInput{
		AmountMinor: 2000,
		Currency:    "usd",
		Token:       "tok_visa",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ch_abc123", charge.ID)
	assert.Equal(t, "/v1/charges", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.NotEmpty(t, gotIdemKey)
	assert.Equal(t, "2000", gotForm["amount"])
	assert.Equal(t, "usd", gotForm["currency"])
	assert.Equal(t, "tok_visa", gotForm["source"])
}

func TestCreateCharge_ErrorClassification(t *testing.T) {
	cases := []struct {
		stripeType string
		wantKind   gateway.ErrorKind
	}{
		{"card_error", gateway.KindCardDeclined},
		{"rate_limit_error", gateway.KindRateLimited},
		{"invalid_request_error", gateway.KindInvalidRequest},
		{"authentication_error", gateway.KindAuthenticationFailed},
		{"api_connection_error", gateway.KindNetworkError},
		{"api_error", gateway.KindGatewayGeneric},
		{"idempotency_error", gateway.KindGatewayGeneric},
		{"something_new", gateway.KindUnclassified},
	}

	for _, tc := range cases {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error":{"type":"` + tc.stripeType + `","message":"boom"}}`))
		})

		_, err := client.CreateCharge(context.Background(), gateway.ChargeInput{
			AmountMinor: 100,
			Currency:    "usd",
			Token:       "tok",
		})
		srv.Close()

		var ge *gateway.Error
		if assert.ErrorAs(t, err, &ge, tc.stripeType) {
			assert.Equal(t, tc.wantKind, ge.Kind, tc.stripeType)
			assert.Equal(t, "boom", ge.Message, tc.stripeType)
		}
	}
}

func TestCreateCharge_TransportFailureIsNetworkError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	//先に閉じて接続エラーを起こす
	srv.Close()

	_, err := client.CreateCharge(context.Background(), gateway.ChargeInput{
		AmountMinor: 100,
		Currency:    "usd",
		Token:       "tok",
	})

	var ge *gateway.Error
	if assert.ErrorAs(t, err, &ge) {
		assert.Equal(t, gateway.KindNetworkError, ge.Kind)
	}
}

func TestCreateCharge_MalformedErrorBodyIsUnclassified(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	})
	defer srv.Close()

	_, err := client.CreateCharge(context.Background(), gateway.ChargeInput{
		AmountMinor: 100,
		Currency:    "usd",
		Token:       "tok",
	})

	var ge *gateway.Error
	if assert.ErrorAs(t, err, &ge) {
		assert.Equal(t, gateway.KindUnclassified, ge.Kind)
	}
}
