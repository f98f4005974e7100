// Package catalog управляет товарными списками магазина.
// models.go описывает товар и категории.
package catalog

import "github.com/shopspring/decimal"

// Category — раздел каталога.
type Category string

const (
	CategoryCodes   Category = "codes"   // коды активации UC
	CategoryID      Category = "id"      // активация по игровому ID (тот же список товаров, что codes)
	CategoryPremium Category = "premium" // Telegram Premium
	CategoryPromo   Category = "promo"   // промокоды
	CategoryStars   Category = "stars"   // звёзды: списка товаров нет, только цена за штуку
)

// Product — товар каталога. Метка уникальна внутри категории,
// цена всегда положительная.
type Product struct {
	Label string          `db:"label"` // Метка товара, например "60" (номинал UC)
	Price decimal.Decimal `db:"price"` // Цена в USDT
}
