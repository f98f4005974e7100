// Package users — repository.go зеркалирует пользователей в таблицу users.
// Авторитетное состояние живёт в памяти (Ledger); сюда пишем после каждой
// мутации, а на старте поднимаем всё обратно.
package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с таблицей users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий пользователей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveUser записывает пользователя целиком (создание или обновление).
func (r *Repository) SaveUser(ctx context.Context, u User) error {
	query := `
		INSERT INTO users (user_id, balance, language, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance, language = EXCLUDED.language
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.Balance, u.Language, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}

// DeleteUser удаляет пользователя (вычистка заблокировавших бота).
func (r *Repository) DeleteUser(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	return nil
}

// LoadAll поднимает всех пользователей при старте.
func (r *Repository) LoadAll(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, balance, language, created_at FROM users`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Balance, &u.Language, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
