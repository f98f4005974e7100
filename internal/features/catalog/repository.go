// Package catalog — repository.go зеркалирует товарные списки в Postgres.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository предоставляет методы для работы с таблицами products и stars_price.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий каталога.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ReplaceProducts полностью заменяет список товаров категории.
// Замена списка — редкая админская операция, делаем её одной транзакцией.
func (r *Repository) ReplaceProducts(ctx context.Context, category Category, products []Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE category = $1`, category); err != nil {
		return fmt.Errorf("ошибка очистки категории: %w", err)
	}
	for i, p := range products {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (category, label, price, position)
			VALUES ($1, $2, $3, $4)
		`, category, p.Label, p.Price, i)
		if err != nil {
			return fmt.Errorf("ошибка записи товара %q: %w", p.Label, err)
		}
	}
	return tx.Commit(ctx)
}

// LoadProducts читает список товаров категории в сохранённом порядке.
func (r *Repository) LoadProducts(ctx context.Context, category Category) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT label, price FROM products
		WHERE category = $1
		ORDER BY position
	`, category)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения товаров: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Label, &p.Price); err != nil {
			return nil, fmt.Errorf("ошибка сканирования товара: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveStarsPrice сохраняет цену одной звезды (единственная строка).
func (r *Repository) SaveStarsPrice(ctx context.Context, price decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stars_price (id, price) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET price = EXCLUDED.price
	`, price)
	if err != nil {
		return fmt.Errorf("ошибка сохранения цены звёзд: %w", err)
	}
	return nil
}

// LoadStarsPrice читает цену звезды; ноль, если ещё не задана.
func (r *Repository) LoadStarsPrice(ctx context.Context) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT price FROM stars_price WHERE id = 1`).Scan(&price)
	if err != nil {
		// пустая таблица — не ошибка
		return decimal.Zero, nil
	}
	return price, nil
}
