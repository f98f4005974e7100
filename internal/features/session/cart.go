// cart.go — корзина пользователя. Живёт внутри сессии и не переживает
// перезапуск: корзина — черновик покупки, а не обязательство.
package session

import (
	"github.com/shopspring/decimal"

	"ronid.ru/shop-bot/internal/common"
)

// CartItem — одна позиция корзины.
type CartItem struct {
	Label string
	Price decimal.Decimal
}

// Cart — корзина с бегущей суммой. Порядок позиций — порядок добавления.
type Cart struct {
	items []CartItem
	total decimal.Decimal
}

// Add кладёт позицию в корзину и пересчитывает сумму.
// Сумма нормализуется после каждого добавления, чтобы хвосты двоичной
// арифметики не накапливались от позиции к позиции.
func (c *Cart) Add(label string, price decimal.Decimal) {
	c.items = append(c.items, CartItem{Label: label, Price: price})
	c.total = common.NormalizeMoney(c.total.Add(price))
}

// Total возвращает текущую сумму корзины.
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

// Items возвращает копию позиций в порядке добавления.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len возвращает число позиций.
func (c *Cart) Len() int {
	return len(c.items)
}

// Clear опустошает корзину. Идемпотентно.
func (c *Cart) Clear() {
	c.items = nil
	c.total = decimal.Zero
}

// RequiredCounts сворачивает корзину в счётчик "метка → штук".
// Порядок ключей в карте не определён, но labels сохраняет порядок
// первого появления метки — он нужен при выдаче кодов.
func (c *Cart) RequiredCounts() (counts map[string]int, labels []string) {
	counts = make(map[string]int, len(c.items))
	for _, it := range c.items {
		if counts[it.Label] == 0 {
			labels = append(labels, it.Label)
		}
		counts[it.Label]++
	}
	return counts, labels
}
