// fragment.go — клиент Fragment API для отправки Telegram-звёзд.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// FragmentClient отправляет звёзды через Fragment.
type FragmentClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewFragmentClient создаёт клиент Fragment.
func NewFragmentClient(baseURL, token string) *FragmentClient {
	return &FragmentClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type starsRequest struct {
	Username string `json:"username"`
	Quantity int64  `json:"quantity"`
}

type starsResponse struct {
	Status string `json:"status"`
}

// OrderStars отправляет quantity звёзд пользователю username.
// Успехом считается только status == "success" в теле ответа.
func (c *FragmentClient) OrderStars(ctx context.Context, username string, quantity int64) error {
	body, err := json.Marshal(starsRequest{Username: username, Quantity: quantity})
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса звёзд: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order/stars", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса звёзд: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "JWT "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса к Fragment: %w", err)
	}
	defer resp.Body.Close()

	var out starsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("ошибка разбора ответа Fragment: %w", err)
	}
	if out.Status != "success" {
		log.WithFields(log.Fields{
			"username": username,
			"quantity": quantity,
			"status":   out.Status,
		}).Error("Fragment отклонил заказ звёзд")
		return fmt.Errorf("fragment вернул статус %q", out.Status)
	}

	log.WithFields(log.Fields{"username": username, "quantity": quantity}).Info("Звёзды отправлены")
	return nil
}
