// Package inventory — repository.go зеркалирует пулы кодов в таблицу codes.
package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей codes.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий кодов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveCodes записывает добавленные коды пула.
func (r *Repository) SaveCodes(ctx context.Context, label string, codes []Code) error {
	for _, c := range codes {
		_, err := r.db.Exec(ctx, `
			INSERT INTO codes (code_id, label, code, added_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code_id) DO NOTHING
		`, c.ID, label, c.Value, c.AddedAt)
		if err != nil {
			return fmt.Errorf("ошибка сохранения кода: %w", err)
		}
	}
	return nil
}

// DeleteCodes удаляет потреблённые коды.
func (r *Repository) DeleteCodes(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := r.db.Exec(ctx, `DELETE FROM codes WHERE code_id = $1`, id); err != nil {
			return fmt.Errorf("ошибка удаления кода: %w", err)
		}
	}
	return nil
}

// LoadAll поднимает все пулы при старте, в порядке добавления.
func (r *Repository) LoadAll(ctx context.Context) (map[string][]Code, error) {
	rows, err := r.db.Query(ctx, `
		SELECT code_id, label, code, added_at FROM codes ORDER BY added_at, code_id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения кодов: %w", err)
	}
	defer rows.Close()

	pools := make(map[string][]Code)
	for rows.Next() {
		var c Code
		var label string
		if err := rows.Scan(&c.ID, &label, &c.Value, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования кода: %w", err)
		}
		pools[label] = append(pools[label], c)
	}
	return pools, rows.Err()
}
