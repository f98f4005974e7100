// Package deposits ведёт учёт пополнений баланса: ручные чеки ByBit и
// автоматическая сверка переводов CryptoBot.
// models.go описывает ожидающие записи обоих способов.
package deposits

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingCheck — чек ByBit, отправленный пользователем и ожидающий
// ручной проверки админом.
type PendingCheck struct {
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	PayerTag  string          `db:"payer_tag"`
	CreatedAt time.Time       `db:"created_at"`
}

// CryptoDeposit — заявка на пополнение через CryptoBot: пользователь
// назвал себя, бот ждёт сообщения о переводе от CryptoBot в группе.
type CryptoDeposit struct {
	UserID           int64     `db:"user_id"`
	PayerName        string    `db:"payer_name"`
	InvoiceMessageID int       `db:"invoice_message_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// PaymentDetails — реквизиты, которые бот показывает при пополнении.
// Меняются из админ-панели.
type PaymentDetails struct {
	ByBit     string `db:"bybit"`
	CryptoBot string `db:"cryptobot"`
}
