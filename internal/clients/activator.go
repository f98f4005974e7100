// Package clients содержит HTTP-клиенты внешних сервисов: активатор
// игровых кодов, Fragment (звёзды) и ByBit Pay.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// ActivatorClient активирует коды на игровой аккаунт через API активатора.
type ActivatorClient struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

// NewActivatorClient создаёт клиент активатора.
func NewActivatorClient(baseURL, username, token string) *ActivatorClient {
	return &ActivatorClient{
		baseURL:  baseURL,
		username: username,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type redeemRequest struct {
	RequireReceipt bool   `json:"requireReceipt"`
	PlayerID       string `json:"playerId"`
	CodeOverride   string `json:"codeOverride"`
}

type redeemError struct {
	ErrorCode string `json:"errorCode"`
}

// Redeem активирует один код на аккаунт игрока.
// Неизвестный игрок — common.ErrRecipientNotFound: пользователь может
// исправить ID и попробовать снова.
func (c *ActivatorClient) Redeem(ctx context.Context, playerID, code string) error {
	body, err := json.Marshal(redeemRequest{RequireReceipt: true, PlayerID: playerID, CodeOverride: code})
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса активации: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/redeem", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса активации: %w", err)
	}
	req.Header.Set("Authorization", c.username+" "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRedemptionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.WithField("player_id", playerID).Info("Код активирован")
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	var apiErr redeemError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.ErrorCode == "CHARACTER_NOT_FOUND" {
		return common.ErrRecipientNotFound
	}

	log.WithFields(log.Fields{
		"player_id": playerID,
		"status":    resp.StatusCode,
		"body":      string(raw),
	}).Error("Активатор вернул ошибку")
	return fmt.Errorf("%w: статус %d", common.ErrRedemptionFailed, resp.StatusCode)
}
