// Package inventory управляет пулами кодов активации.
// models.go описывает код.
package inventory

import "time"

// Code — одноразовый код активации в пуле товара.
// Код либо лежит в пуле (не использован), либо удалён (потрачен):
// флага "использован" нет, потребление = удаление.
type Code struct {
	ID      string    `db:"code_id"`  // Непрозрачный идентификатор, назначается хранилищем
	Value   string    `db:"code"`     // Сам код активации
	AddedAt time.Time `db:"added_at"` // Когда код добавлен в пул
}
