// Package deposits — repository.go зеркалирует ожидающие пополнения
// в таблицы pending_checks, cryptobot_deposits и payment_details.
package deposits

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицами пополнений.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий пополнений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveCheck записывает чек пользователя (один активный чек на пользователя).
func (r *Repository) SaveCheck(ctx context.Context, c PendingCheck) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pending_checks (user_id, amount, payer_tag, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			payer_tag = EXCLUDED.payer_tag,
			created_at = EXCLUDED.created_at
	`, c.UserID, c.Amount, c.PayerTag, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения чека: %w", err)
	}
	return nil
}

// DeleteCheck удаляет чек после подтверждения, отклонения или истечения.
func (r *Repository) DeleteCheck(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM pending_checks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка удаления чека: %w", err)
	}
	return nil
}

// LoadChecks поднимает ожидающие чеки при старте.
func (r *Repository) LoadChecks(ctx context.Context) ([]PendingCheck, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, amount, payer_tag, created_at FROM pending_checks`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения чеков: %w", err)
	}
	defer rows.Close()

	var checks []PendingCheck
	for rows.Next() {
		var c PendingCheck
		if err := rows.Scan(&c.UserID, &c.Amount, &c.PayerTag, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования чека: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// SaveDeposit записывает заявку CryptoBot.
func (r *Repository) SaveDeposit(ctx context.Context, d CryptoDeposit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cryptobot_deposits (user_id, payer_name, invoice_message_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			payer_name = EXCLUDED.payer_name,
			invoice_message_id = EXCLUDED.invoice_message_id,
			created_at = EXCLUDED.created_at
	`, d.UserID, d.PayerName, d.InvoiceMessageID, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения заявки: %w", err)
	}
	return nil
}

// DeleteDeposit удаляет заявку CryptoBot.
func (r *Repository) DeleteDeposit(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cryptobot_deposits WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	return nil
}

// LoadDeposits поднимает заявки CryptoBot при старте.
func (r *Repository) LoadDeposits(ctx context.Context) ([]CryptoDeposit, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, payer_name, invoice_message_id, created_at FROM cryptobot_deposits`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявок: %w", err)
	}
	defer rows.Close()

	var deposits []CryptoDeposit
	for rows.Next() {
		var d CryptoDeposit
		if err := rows.Scan(&d.UserID, &d.PayerName, &d.InvoiceMessageID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// SavePaymentDetails записывает реквизиты (единственная строка id=1).
func (r *Repository) SavePaymentDetails(ctx context.Context, p PaymentDetails) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_details (id, bybit, cryptobot)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET bybit = EXCLUDED.bybit, cryptobot = EXCLUDED.cryptobot
	`, p.ByBit, p.CryptoBot)
	if err != nil {
		return fmt.Errorf("ошибка сохранения реквизитов: %w", err)
	}
	return nil
}

// LoadPaymentDetails читает реквизиты; отсутствие строки — не ошибка.
func (r *Repository) LoadPaymentDetails(ctx context.Context) (PaymentDetails, error) {
	var p PaymentDetails
	err := r.db.QueryRow(ctx, `SELECT bybit, cryptobot FROM payment_details WHERE id = 1`).Scan(&p.ByBit, &p.CryptoBot)
	if err == pgx.ErrNoRows {
		return PaymentDetails{}, nil
	}
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("ошибка чтения реквизитов: %w", err)
	}
	return p, nil
}
