// Package users управляет пользователями магазина и их балансами.
// models.go описывает структуру пользователя.
package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User представляет пользователя бота.
// Создаётся при первом контакте с балансом 0 и русским языком.
type User struct {
	ID        int64           `db:"user_id"`    // Telegram user ID
	Balance   decimal.Decimal `db:"balance"`    // Текущий баланс в USDT (никогда не отрицательный)
	Language  string          `db:"language"`   // Язык интерфейса: "ru" или "en"
	CreatedAt time.Time       `db:"created_at"` // Время первого контакта
}
