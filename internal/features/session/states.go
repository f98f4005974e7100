// Package session хранит диалоговое состояние каждого пользователя:
// в каком шаге разговора он находится и что лежит в его корзине.
// states.go описывает закрытый набор состояний диалога.
package session

import "github.com/shopspring/decimal"

// State — состояние диалога. Закрытый интерфейс: реализации живут
// только в этом пакете, обработчик переключается type switch-ом.
type State interface{ dialogState() }

// Browsing — нейтральное состояние, бот ждёт команд из меню.
type Browsing struct{}

// AwaitingPubgID — ждём игровой ID для активации кодов на аккаунт.
type AwaitingPubgID struct{}

// AwaitingPremiumTag — ждём telegram-тег получателя премиума.
type AwaitingPremiumTag struct {
	Label string
	Price decimal.Decimal
}

// AwaitingStarsAmount — ждём количество звёзд.
type AwaitingStarsAmount struct{}

// AwaitingUserTag — ждём тег получателя звёзд.
type AwaitingUserTag struct {
	StarsAmount int64
}

// AwaitingDeposit — ждём сумму пополнения через ByBit.
type AwaitingDeposit struct{}

// AwaitingReceipt — ждём скриншот чека перевода ByBit.
type AwaitingReceipt struct {
	Amount   decimal.Decimal
	PayerTag string
}

// AwaitingProductPriceChange — админ меняет цену товара.
type AwaitingProductPriceChange struct {
	Category string
	Label    string
}

// AwaitingNewProductLabel — админ вводит метку нового товара.
type AwaitingNewProductLabel struct {
	Category string
}

// AwaitingNewProductPrice — админ вводит цену нового товара.
type AwaitingNewProductPrice struct {
	Category string
	Label    string
}

// AwaitingStarsPrice — админ вводит цену одной звезды.
type AwaitingStarsPrice struct{}

// AwaitingCredentials — админ вводит новые платёжные реквизиты.
type AwaitingCredentials struct {
	Method string
}

// AwaitingBalanceUser — админ вводит ID пользователя для правки баланса.
type AwaitingBalanceUser struct{}

// AwaitingBalanceAmount — админ вводит новый баланс пользователя.
type AwaitingBalanceAmount struct {
	UserID int64
}

// AwaitingBroadcast — админ вводит текст рассылки.
type AwaitingBroadcast struct{}

// AwaitingAdminAdd — админ вводит chat ID нового администратора.
type AwaitingAdminAdd struct{}

// AwaitingAdminRemove — админ вводит chat ID удаляемого администратора.
type AwaitingAdminRemove struct{}

// AwaitingCodes — админ вводит коды для пополнения пула (по одному на строку).
type AwaitingCodes struct {
	Label string
}

// AwaitingCodeDelete — админ вводит значение удаляемого кода.
type AwaitingCodeDelete struct {
	Label string
}

// AwaitingPassword — пользователь вводит пароль после /login.
type AwaitingPassword struct{}

func (Browsing) dialogState()                   {}
func (AwaitingPubgID) dialogState()             {}
func (AwaitingPremiumTag) dialogState()         {}
func (AwaitingStarsAmount) dialogState()        {}
func (AwaitingUserTag) dialogState()            {}
func (AwaitingDeposit) dialogState()            {}
func (AwaitingReceipt) dialogState()            {}
func (AwaitingProductPriceChange) dialogState() {}
func (AwaitingNewProductLabel) dialogState()    {}
func (AwaitingNewProductPrice) dialogState()    {}
func (AwaitingStarsPrice) dialogState()         {}
func (AwaitingCredentials) dialogState()        {}
func (AwaitingBalanceUser) dialogState()        {}
func (AwaitingBalanceAmount) dialogState()      {}
func (AwaitingBroadcast) dialogState()          {}
func (AwaitingAdminAdd) dialogState()           {}
func (AwaitingAdminRemove) dialogState()        {}
func (AwaitingCodes) dialogState()              {}
func (AwaitingCodeDelete) dialogState()         {}
func (AwaitingPassword) dialogState()           {}
