// Package orders ведёт журнал заказов и выполняет покупки.
// models.go описывает заказ и его жизненный цикл.
package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type — тип заказа, определяет способ доставки товара.
type Type string

const (
	TypeCodes   Type = "codes"   // коды выдаются в чат
	TypeID      Type = "id"      // коды активируются на игровой аккаунт
	TypePremium Type = "premium" // премиум выдаёт админ вручную
	TypeStars   Type = "stars"   // звёзды отправляются через Fragment
)

// Status — статус заказа.
type Status string

const (
	StatusPending   Status = "pending"   // ждёт ручного подтверждения админом
	StatusConfirmed Status = "confirmed" // выполнен
	StatusDeclined  Status = "declined"  // отклонён, деньги возвращены
)

// Item — позиция заказа.
type Item struct {
	Label string          `db:"label"`
	Price decimal.Decimal `db:"price"`
}

// UserInfo — снимок пользователя на момент заказа, попадает в отчёт админу.
type UserInfo struct {
	Username      string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Order — заказ. Codes заполняется только для типов codes и id:
// какие именно коды ушли в каком количестве по каждой метке.
type Order struct {
	OrderID     string
	UserID      int64
	Type        Type
	Items       []Item
	Total       decimal.Decimal
	Status      Status
	Timestamp   time.Time
	UserInfo    UserInfo
	PubgID      string              // для типа id
	Tag         string              // получатель премиума или звёзд
	Codes       map[string][]string // метка → выданные коды
	StarsAmount int64               // для типа stars
}
