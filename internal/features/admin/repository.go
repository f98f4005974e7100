// Package admin — repository.go зеркалирует список администраторов в таблицу admins.
package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей admins.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий администраторов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveAdmin записывает администратора.
func (r *Repository) SaveAdmin(ctx context.Context, a Admin) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admins (chat_id, added_at)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO NOTHING
	`, a.ChatID, a.AddedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения администратора: %w", err)
	}
	return nil
}

// DeleteAdmin удаляет администратора.
func (r *Repository) DeleteAdmin(ctx context.Context, chatID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM admins WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("ошибка удаления администратора: %w", err)
	}
	return nil
}

// LoadAll поднимает список администраторов при старте.
func (r *Repository) LoadAll(ctx context.Context) ([]Admin, error) {
	rows, err := r.db.Query(ctx, `SELECT chat_id, added_at FROM admins ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения администраторов: %w", err)
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ChatID, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования администратора: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
