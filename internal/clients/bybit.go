// bybit.go — клиент ByBit Pay: создание платёжного поручения на
// пополнение баланса. Запрос подписывается HMAC-SHA256 по схеме
// timestamp + apiKey + recvWindow + тело запроса.
package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const bybitRecvWindow = 5000

// BybitClient создаёт платежи ByBit Pay.
type BybitClient struct {
	baseURL string
	apiKey  string
	secret  string
	http    *http.Client
}

// NewBybitClient создаёт клиент ByBit Pay.
func NewBybitClient(baseURL, apiKey, secret string) *BybitClient {
	return &BybitClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type bybitGoods struct {
	ShoppingName string `json:"shoppingName"`
	GoodsName    string `json:"goodsName"`
}

type bybitEnv struct {
	TerminalType   string `json:"terminalType"`
	Device         string `json:"device"`
	BrowserVersion string `json:"browserVersion"`
	IP             string `json:"ip"`
}

type bybitCreatePayRequest struct {
	MerchantID      string       `json:"merchantId"`
	MerchantName    string       `json:"merchantName"`
	PaymentType     string       `json:"paymentType"`
	MerchantTradeNo string       `json:"merchantTradeNo"`
	Goods           []bybitGoods `json:"goods"`
	OrderAmount     string       `json:"orderAmount"`
	Currency        string       `json:"currency"`
	CurrencyType    string       `json:"currencyType"`
	Env             bybitEnv     `json:"env"`
}

// sign подписывает тело запроса: HMAC-SHA256(timestamp + apiKey + recvWindow + body).
func (c *BybitClient) sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(timestamp + c.apiKey + strconv.Itoa(bybitRecvWindow) + string(body)))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePayment создаёт платёж на пополнение баланса в USDT.
// merchantID берётся из платёжных реквизитов и может меняться на лету.
// Возвращает сырой ответ API — его бот пересылает админам как есть.
func (c *BybitClient) CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal, merchantID string) (string, error) {
	now := time.Now()
	tradeNo := fmt.Sprintf("bybit-order_%d_%s", userID, strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))

	body, err := json.Marshal(bybitCreatePayRequest{
		MerchantID:      merchantID,
		MerchantName:    "Roni",
		PaymentType:     "E_COMMERCE",
		MerchantTradeNo: tradeNo,
		Goods:           []bybitGoods{{ShoppingName: "Roni", GoodsName: "Пополнение баланса"}},
		OrderAmount:     amount.String(),
		Currency:        "USDT",
		CurrencyType:    "crypto",
		Env: bybitEnv{
			TerminalType:   "WEB",
			Device:         fmt.Sprintf("tg_device_%d", userID),
			BrowserVersion: "Mozilla/5.0 (compatible; TelegramBot/1.0)",
			IP:             "109.252.189.23",
		},
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации платежа: %w", err)
	}

	timestamp := strconv.FormatInt(now.UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v5/bybitpay/create_pay", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса платежа: %w", err)
	}
	req.Header.Set("X-BAPI-SIGN", c.sign(timestamp, body))
	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", strconv.Itoa(bybitRecvWindow))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса к ByBit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа ByBit: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{"status": resp.StatusCode, "body": string(raw)}).Error("ByBit вернул ошибку")
		return "", fmt.Errorf("bybit вернул статус %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{"user_id": userID, "trade_no": tradeNo}).Info("Платёж ByBit создан")
	return string(raw), nil
}
