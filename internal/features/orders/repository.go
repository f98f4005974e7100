// Package orders — repository.go пишет журнал заказов в таблицу orders.
// В отличие от остальных зеркал запись заказа обязана пройти: заказ без
// записи в журнале — потерянные деньги пользователя.
package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей orders.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий заказов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// orderRow — плоское представление заказа для хранения.
// Составные поля сериализуются в JSON-колонки.
type orderRow struct {
	Items       []Item              `json:"items"`
	UserInfo    UserInfo            `json:"user_info"`
	Codes       map[string][]string `json:"codes,omitempty"`
	PubgID      string              `json:"pubg_id,omitempty"`
	Tag         string              `json:"tag,omitempty"`
	StarsAmount int64               `json:"stars_amount,omitempty"`
}

// SaveOrder записывает или обновляет заказ.
func (r *Repository) SaveOrder(ctx context.Context, o Order) error {
	payload, err := json.Marshal(orderRow{
		Items:       o.Items,
		UserInfo:    o.UserInfo,
		Codes:       o.Codes,
		PubgID:      o.PubgID,
		Tag:         o.Tag,
		StarsAmount: o.StarsAmount,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации заказа: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (order_id, user_id, type, total, status, created_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO UPDATE SET status = EXCLUDED.status, payload = EXCLUDED.payload
	`, o.OrderID, o.UserID, string(o.Type), o.Total, string(o.Status), o.Timestamp, payload)
	if err != nil {
		return fmt.Errorf("ошибка сохранения заказа: %w", err)
	}
	return nil
}

// LoadAll поднимает журнал заказов при старте, старые первыми.
func (r *Repository) LoadAll(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, user_id, type, total, status, created_at, payload
		FROM orders ORDER BY created_at, order_id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заказов: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var typ, status string
		var payload []byte
		if err := rows.Scan(&o.OrderID, &o.UserID, &typ, &o.Total, &status, &o.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
		}
		o.Type = Type(typ)
		o.Status = Status(status)

		var row orderRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("ошибка разбора заказа %s: %w", o.OrderID, err)
		}
		o.Items = row.Items
		o.UserInfo = row.UserInfo
		o.Codes = row.Codes
		o.PubgID = row.PubgID
		o.Tag = row.Tag
		o.StarsAmount = row.StarsAmount

		orders = append(orders, o)
	}
	return orders, rows.Err()
}
