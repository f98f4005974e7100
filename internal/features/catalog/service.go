// Package catalog — service.go содержит Store, владельца товарных списков.
// Списки меняются целиком (админская операция), поэтому один глобальный
// RWMutex на весь каталог — осознанный выбор: запись редкая, чтение частое.
package catalog

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// Mirror — зеркало каталога в постоянном хранилище.
type Mirror interface {
	ReplaceProducts(ctx context.Context, category Category, products []Product) error
	SaveStarsPrice(ctx context.Context, price decimal.Decimal) error
}

// Store хранит товарные списки и цену звезды в памяти.
type Store struct {
	mu         sync.RWMutex
	codes      []Product // общий список для категорий codes и id
	premium    []Product
	promo      []Product
	starsPrice decimal.Decimal
	mirror     Mirror
}

// NewStore создаёт пустой каталог. mirror может быть nil (тесты).
func NewStore(mirror Mirror) *Store {
	return &Store{mirror: mirror}
}

// Load поднимает каталог из зеркала при старте.
func (s *Store) Load(codes, premium, promo []Product, starsPrice decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = codes
	s.premium = premium
	s.promo = promo
	s.starsPrice = starsPrice
	log.WithFields(log.Fields{
		"codes":   len(codes),
		"premium": len(premium),
		"promo":   len(promo),
	}).Info("Каталог загружен")
}

// Products возвращает копию списка товаров категории.
// Категория id читает список codes — товар тот же, отличается только доставка.
func (s *Store) Products(category Category) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var src []Product
	switch category {
	case CategoryCodes, CategoryID:
		src = s.codes
	case CategoryPremium:
		src = s.premium
	case CategoryPromo:
		src = s.promo
	default:
		return nil
	}
	out := make([]Product, len(src))
	copy(out, src)
	return out
}

// Find ищет товар по метке внутри категории.
func (s *Store) Find(category Category, label string) (Product, error) {
	for _, p := range s.Products(category) {
		if p.Label == label {
			return p, nil
		}
	}
	return Product{}, common.ErrProductNotFound
}

// Replace полностью заменяет список товаров категории.
// Список сортируется по числовому значению метки, как в админке.
func (s *Store) Replace(ctx context.Context, category Category, products []Product) error {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, errA := strconv.Atoi(sorted[i].Label)
		b, errB := strconv.Atoi(sorted[j].Label)
		if errA != nil || errB != nil {
			return sorted[i].Label < sorted[j].Label
		}
		return a < b
	})

	s.mu.Lock()
	switch category {
	case CategoryCodes, CategoryID:
		s.codes = sorted
	case CategoryPremium:
		s.premium = sorted
	case CategoryPromo:
		s.promo = sorted
	default:
		s.mu.Unlock()
		return common.ErrProductNotFound
	}
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.ReplaceProducts(ctx, category, sorted); err != nil {
			log.WithError(err).WithField("category", category).Warn("Не удалось зеркалировать каталог")
		}
	}
	return nil
}

// AddProduct добавляет товар в категорию (замена списка с новым элементом).
func (s *Store) AddProduct(ctx context.Context, category Category, p Product) error {
	products := append(s.Products(category), p)
	return s.Replace(ctx, category, products)
}

// RemoveProduct удаляет товар по метке.
func (s *Store) RemoveProduct(ctx context.Context, category Category, label string) error {
	products := s.Products(category)
	idx := -1
	for i, p := range products {
		if p.Label == label {
			idx = i
			break
		}
	}
	if idx == -1 {
		return common.ErrProductNotFound
	}
	return s.Replace(ctx, category, append(products[:idx], products[idx+1:]...))
}

// SetPrice меняет цену существующего товара.
func (s *Store) SetPrice(ctx context.Context, category Category, label string, price decimal.Decimal) error {
	products := s.Products(category)
	for i := range products {
		if products[i].Label == label {
			products[i].Price = price
			return s.Replace(ctx, category, products)
		}
	}
	return common.ErrProductNotFound
}

// StarsPrice возвращает цену одной звезды.
func (s *Store) StarsPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.starsPrice
}

// SetStarsPrice меняет цену одной звезды.
func (s *Store) SetStarsPrice(ctx context.Context, price decimal.Decimal) {
	s.mu.Lock()
	s.starsPrice = price
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.SaveStarsPrice(ctx, price); err != nil {
			log.WithError(err).Warn("Не удалось зеркалировать цену звёзд")
		}
	}
}
