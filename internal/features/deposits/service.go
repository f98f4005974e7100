// Package deposits — service.go содержит Desk, владельца ожидающих
// пополнений. Подтверждение и отклонение реализованы как take-and-delete:
// запись выдаётся ровно один раз, второй клик по той же кнопке получает
// false и ничего не делает.
package deposits

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// Mirror — зеркало ожидающих пополнений в постоянном хранилище.
type Mirror interface {
	SaveCheck(ctx context.Context, c PendingCheck) error
	DeleteCheck(ctx context.Context, userID int64) error
	SaveDeposit(ctx context.Context, d CryptoDeposit) error
	DeleteDeposit(ctx context.Context, userID int64) error
	SavePaymentDetails(ctx context.Context, p PaymentDetails) error
}

// Desk хранит ожидающие чеки, заявки CryptoBot и платёжные реквизиты.
type Desk struct {
	mu       sync.Mutex
	checks   map[int64]PendingCheck
	deposits map[int64]CryptoDeposit
	details  PaymentDetails
	mirror   Mirror
}

// NewDesk создаёт пустой стол пополнений. mirror может быть nil (тесты).
func NewDesk(mirror Mirror) *Desk {
	return &Desk{
		checks:   make(map[int64]PendingCheck),
		deposits: make(map[int64]CryptoDeposit),
		mirror:   mirror,
	}
}

// Load поднимает состояние из зеркала при старте.
func (d *Desk) Load(checks []PendingCheck, deposits []CryptoDeposit, details PaymentDetails) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range checks {
		d.checks[c.UserID] = c
	}
	for _, dep := range deposits {
		d.deposits[dep.UserID] = dep
	}
	d.details = details
	log.WithFields(log.Fields{"checks": len(checks), "deposits": len(deposits)}).Info("Пополнения загружены")
}

// CreateCheck регистрирует чек ByBit. Новый чек пользователя замещает старый.
func (d *Desk) CreateCheck(ctx context.Context, userID int64, amount decimal.Decimal, payerTag string) PendingCheck {
	c := PendingCheck{UserID: userID, Amount: amount, PayerTag: payerTag, CreatedAt: time.Now()}
	d.mu.Lock()
	d.checks[userID] = c
	d.mu.Unlock()

	if d.mirror != nil {
		if err := d.mirror.SaveCheck(ctx, c); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось зеркалировать чек")
		}
	}
	return c
}

// TakeCheck забирает чек пользователя. Возвращает false, если чека нет —
// он уже подтверждён, отклонён или истёк.
func (d *Desk) TakeCheck(ctx context.Context, userID int64) (PendingCheck, bool) {
	d.mu.Lock()
	c, ok := d.checks[userID]
	if ok {
		delete(d.checks, userID)
	}
	d.mu.Unlock()

	if ok {
		d.mirrorDeleteCheck(ctx, userID)
	}
	return c, ok
}

// TrackDeposit регистрирует заявку CryptoBot.
func (d *Desk) TrackDeposit(ctx context.Context, userID int64, payerName string, invoiceMessageID int) CryptoDeposit {
	dep := CryptoDeposit{UserID: userID, PayerName: payerName, InvoiceMessageID: invoiceMessageID, CreatedAt: time.Now()}
	d.mu.Lock()
	d.deposits[userID] = dep
	d.mu.Unlock()

	if d.mirror != nil {
		if err := d.mirror.SaveDeposit(ctx, dep); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось зеркалировать заявку")
		}
	}
	return dep
}

// TakeDepositByPayer ищет заявку по имени плательщика из сообщения
// CryptoBot и забирает её. Сверка exactly-once: совпавшая заявка
// исчезает до начисления, второй раз её не найти. Если под имя подходит
// несколько заявок, угадывать получателя нельзя — возвращается
// ErrAmbiguousDeposit, все заявки остаются на месте.
func (d *Desk) TakeDepositByPayer(ctx context.Context, payerName string) (CryptoDeposit, error) {
	d.mu.Lock()
	var found CryptoDeposit
	matches := 0
	for _, dep := range d.deposits {
		if dep.PayerName == payerName {
			found = dep
			matches++
		}
	}
	switch {
	case matches == 0:
		d.mu.Unlock()
		return CryptoDeposit{}, common.ErrNoMatchingDeposit
	case matches > 1:
		d.mu.Unlock()
		return CryptoDeposit{}, common.ErrAmbiguousDeposit
	}
	delete(d.deposits, found.UserID)
	d.mu.Unlock()

	d.mirrorDeleteDeposit(ctx, found.UserID)
	return found, nil
}

// ExpireStale убирает чеки и заявки старше ttl. Возвращает убранное —
// вызывающий сообщает о них админам, молча пропадать они не должны.
func (d *Desk) ExpireStale(ctx context.Context, ttl time.Duration) ([]PendingCheck, []CryptoDeposit) {
	cutoff := time.Now().Add(-ttl)

	d.mu.Lock()
	var staleChecks []PendingCheck
	for id, c := range d.checks {
		if c.CreatedAt.Before(cutoff) {
			staleChecks = append(staleChecks, c)
			delete(d.checks, id)
		}
	}
	var staleDeposits []CryptoDeposit
	for id, dep := range d.deposits {
		if dep.CreatedAt.Before(cutoff) {
			staleDeposits = append(staleDeposits, dep)
			delete(d.deposits, id)
		}
	}
	d.mu.Unlock()

	for _, c := range staleChecks {
		d.mirrorDeleteCheck(ctx, c.UserID)
	}
	for _, dep := range staleDeposits {
		d.mirrorDeleteDeposit(ctx, dep.UserID)
	}

	if len(staleChecks) > 0 || len(staleDeposits) > 0 {
		log.WithFields(log.Fields{
			"checks":   len(staleChecks),
			"deposits": len(staleDeposits),
		}).Info("Просроченные пополнения убраны")
	}
	return staleChecks, staleDeposits
}

// Details возвращает текущие платёжные реквизиты.
func (d *Desk) Details() PaymentDetails {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.details
}

// SetDetail меняет реквизиты одного способа оплаты.
func (d *Desk) SetDetail(ctx context.Context, method, value string) {
	d.mu.Lock()
	switch method {
	case "bybit":
		d.details.ByBit = value
	case "cryptobot":
		d.details.CryptoBot = value
	}
	snapshot := d.details
	d.mu.Unlock()

	if d.mirror != nil {
		if err := d.mirror.SavePaymentDetails(ctx, snapshot); err != nil {
			log.WithError(err).Warn("Не удалось зеркалировать реквизиты")
		}
	}
}

func (d *Desk) mirrorDeleteCheck(ctx context.Context, userID int64) {
	if d.mirror == nil {
		return
	}
	if err := d.mirror.DeleteCheck(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось удалить чек из зеркала")
	}
}

func (d *Desk) mirrorDeleteDeposit(ctx context.Context, userID int64) {
	if d.mirror == nil {
		return
	}
	if err := d.mirror.DeleteDeposit(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось удалить заявку из зеркала")
	}
}
