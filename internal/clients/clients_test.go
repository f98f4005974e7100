package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
)

func TestActivatorRedeemSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/redeem", r.URL.Path)
		require.Equal(t, "user token", r.Header.Get("Authorization"))

		var req redeemRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.RequireReceipt)
		require.Equal(t, "5550001", req.PlayerID)
		require.Equal(t, "CODE-1", req.CodeOverride)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewActivatorClient(srv.URL, "user", "token")
	require.NoError(t, c.Redeem(context.Background(), "5550001", "CODE-1"))
}

func TestActivatorRedeemCharacterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorCode":"CHARACTER_NOT_FOUND"}`))
	}))
	defer srv.Close()

	c := NewActivatorClient(srv.URL, "user", "token")
	err := c.Redeem(context.Background(), "нет такого", "CODE-1")
	require.ErrorIs(t, err, common.ErrRecipientNotFound)
}

func TestActivatorRedeemOtherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewActivatorClient(srv.URL, "user", "token")
	err := c.Redeem(context.Background(), "5550001", "CODE-1")
	require.ErrorIs(t, err, common.ErrRedemptionFailed)
}

func TestFragmentOrderStars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order/stars", r.URL.Path)
		require.Equal(t, "JWT секрет", r.Header.Get("Authorization"))

		var req starsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "@petya", req.Username)
		require.Equal(t, int64(50), req.Quantity)

		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := NewFragmentClient(srv.URL, "секрет")
	require.NoError(t, c.OrderStars(context.Background(), "@petya", 50))
}

func TestFragmentOrderStarsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	defer srv.Close()

	c := NewFragmentClient(srv.URL, "секрет")
	require.Error(t, c.OrderStars(context.Background(), "@petya", 50))
}

func TestBybitCreatePaymentSignature(t *testing.T) {
	const apiKey = "key"
	const secret = "secret"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v5/bybitpay/create_pay", r.URL.Path)
		require.Equal(t, apiKey, r.Header.Get("X-BAPI-API-KEY"))
		require.Equal(t, "5000", r.Header.Get("X-BAPI-RECV-WINDOW"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// подпись пересчитывается на стороне сервера тем же способом
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(r.Header.Get("X-BAPI-TIMESTAMP") + apiKey + "5000" + string(body)))
		require.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-BAPI-SIGN"))

		var req bybitCreatePayRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "merchant-1", req.MerchantID)
		require.Equal(t, "25.5", req.OrderAmount)
		require.Equal(t, "USDT", req.Currency)

		_, _ = w.Write([]byte(`{"retCode":0}`))
	}))
	defer srv.Close()

	c := NewBybitClient(srv.URL, apiKey, secret)
	raw, err := c.CreatePayment(context.Background(), 100, decimal.RequireFromString("25.5"), "merchant-1")
	require.NoError(t, err)
	require.Equal(t, `{"retCode":0}`, raw)
}
