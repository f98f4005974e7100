// Package orders — dispatcher.go выполняет покупки. Каждый сценарий —
// последовательность шагов с компенсацией: если шаг после денежного или
// товарного движения падает, предыдущие шаги откатываются, и пользователь
// не теряет ни денег, ни кодов.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/inventory"
	"ronid.ru/shop-bot/internal/features/users"
)

// Activator активирует код на игровой аккаунт.
type Activator interface {
	Redeem(ctx context.Context, playerID, code string) error
}

// StarsSender отправляет звёзды пользователю Telegram.
type StarsSender interface {
	OrderStars(ctx context.Context, username string, quantity int64) error
}

// Dispatcher связывает балансы, пулы кодов и журнал в сценарии покупки.
type Dispatcher struct {
	users     *users.Ledger
	inventory *inventory.Store
	journal   *Journal
	activator Activator
	stars     StarsSender
}

// NewDispatcher создаёт диспетчер покупок.
func NewDispatcher(ledger *users.Ledger, inv *inventory.Store, journal *Journal, activator Activator, stars StarsSender) *Dispatcher {
	return &Dispatcher{users: ledger, inventory: inv, journal: journal, activator: activator, stars: stars}
}

// PurchaseCodes — покупка кодов с выдачей в чат.
// Резервация, списание и запись заказа; на любом сбое — полный откат.
func (d *Dispatcher) PurchaseCodes(ctx context.Context, userID int64, username string, items []Item, counts map[string]int, total decimal.Decimal) (Order, error) {
	balanceBefore := d.users.Balance(userID)
	if balanceBefore.LessThan(total) {
		return Order{}, common.ErrInsufficientFunds
	}

	taken, err := d.inventory.Reserve(ctx, counts)
	if err != nil {
		return Order{}, err
	}

	balanceAfter, err := d.users.Debit(ctx, userID, total)
	if err != nil {
		d.requeueAll(ctx, taken)
		return Order{}, err
	}

	o := d.newOrder(userID, username, TypeCodes, items, total, StatusConfirmed, balanceBefore, balanceAfter)
	o.Codes = codeValues(taken)

	if err := d.journal.Create(ctx, o); err != nil {
		// заказ не записан — возвращаем и деньги, и коды
		if _, cerr := d.users.Credit(ctx, userID, total); cerr != nil {
			log.WithError(cerr).WithField("user_id", userID).Error("Компенсация списания не прошла")
		}
		d.requeueAll(ctx, taken)
		return Order{}, err
	}
	return o, nil
}

// PurchaseWithID — покупка кодов с активацией на игровой аккаунт.
// Коды активируются по одному; при сбое активации неиспользованные коды
// возвращаются в пул, деньги не списываются. Уже активированные коды
// доставлены получателю — о них сообщает вернувшийся заказ-черновик.
func (d *Dispatcher) PurchaseWithID(ctx context.Context, userID int64, username, pubgID string, items []Item, counts map[string]int, labels []string, total decimal.Decimal) (Order, error) {
	balanceBefore := d.users.Balance(userID)
	if balanceBefore.LessThan(total) {
		return Order{}, common.ErrInsufficientFunds
	}

	taken, err := d.inventory.Reserve(ctx, counts)
	if err != nil {
		return Order{}, err
	}

	redeemed := make(map[string][]string)
	for _, label := range labels {
		for i, code := range taken[label] {
			if err := d.activator.Redeem(ctx, pubgID, code.Value); err != nil {
				// неактивированные коды (включая упавший) обратно в пул
				d.inventory.Requeue(ctx, label, taken[label][i:])
				for _, rest := range labels {
					if rest != label && len(redeemed[rest]) == 0 {
						d.inventory.Requeue(ctx, rest, taken[rest])
					}
				}
				log.WithError(err).WithFields(log.Fields{
					"user_id":  userID,
					"pubg_id":  pubgID,
					"redeemed": redeemed,
				}).Error("Активация кода прервана")
				draft := Order{UserID: userID, Type: TypeID, Codes: redeemed}
				return draft, err
			}
			redeemed[label] = append(redeemed[label], code.Value)
		}
	}

	balanceAfter, err := d.users.Debit(ctx, userID, total)
	if err != nil {
		// коды уже активированы, откатить нельзя — только зафиксировать
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "total": total}).Error("Списание после активации не прошло")
		return Order{UserID: userID, Type: TypeID, Codes: redeemed}, err
	}

	o := d.newOrder(userID, username, TypeID, items, total, StatusConfirmed, balanceBefore, balanceAfter)
	o.PubgID = pubgID
	o.Codes = redeemed

	if err := d.journal.Create(ctx, o); err != nil {
		if _, cerr := d.users.Credit(ctx, userID, total); cerr != nil {
			log.WithError(cerr).WithField("user_id", userID).Error("Компенсация списания не прошла")
		}
		return Order{}, err
	}
	return o, nil
}

// PurchasePremium — покупка премиума. Деньги списываются сразу, заказ
// встаёт в pending и ждёт ручного подтверждения админом; отклонение
// вернёт деньги.
func (d *Dispatcher) PurchasePremium(ctx context.Context, userID int64, username, label, tag string, price decimal.Decimal) (Order, error) {
	balanceBefore := d.users.Balance(userID)
	balanceAfter, err := d.users.Debit(ctx, userID, price)
	if err != nil {
		return Order{}, err
	}

	o := d.newOrder(userID, username, TypePremium, []Item{{Label: label, Price: price}}, price, StatusPending, balanceBefore, balanceAfter)
	o.Tag = tag

	if err := d.journal.Create(ctx, o); err != nil {
		if _, cerr := d.users.Credit(ctx, userID, price); cerr != nil {
			log.WithError(cerr).WithField("user_id", userID).Error("Компенсация списания не прошла")
		}
		return Order{}, err
	}
	return o, nil
}

// PurchaseStars — покупка звёзд. Отправка через Fragment синхронна:
// сначала звёзды уходят получателю, затем списываются деньги.
func (d *Dispatcher) PurchaseStars(ctx context.Context, userID int64, username, tag string, amount int64, total decimal.Decimal) (Order, error) {
	balanceBefore := d.users.Balance(userID)
	if balanceBefore.LessThan(total) {
		return Order{}, common.ErrInsufficientFunds
	}

	if err := d.stars.OrderStars(ctx, tag, amount); err != nil {
		return Order{}, err
	}

	balanceAfter, err := d.users.Debit(ctx, userID, total)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "total": total}).Error("Списание после отправки звёзд не прошло")
		return Order{}, err
	}

	o := d.newOrder(userID, username, TypeStars, []Item{{Label: "stars", Price: total}}, total, StatusConfirmed, balanceBefore, balanceAfter)
	o.Tag = tag
	o.StarsAmount = amount

	if err := d.journal.Create(ctx, o); err != nil {
		if _, cerr := d.users.Credit(ctx, userID, total); cerr != nil {
			log.WithError(cerr).WithField("user_id", userID).Error("Компенсация списания не прошла")
		}
		return Order{}, err
	}
	return o, nil
}

// DeclineOrder отклоняет ожидающий заказ и возвращает деньги.
// Повторное отклонение — no-op.
func (d *Dispatcher) DeclineOrder(ctx context.Context, orderID string) (Order, bool) {
	o, ok := d.journal.Decline(ctx, orderID)
	if !ok {
		return Order{}, false
	}
	if _, err := d.users.Credit(ctx, o.UserID, o.Total); err != nil && !errors.Is(err, common.ErrInvalidAmount) {
		log.WithError(err).WithField("order_id", orderID).Error("Возврат по отклонённому заказу не прошёл")
	}
	return o, true
}

// ConfirmOrder подтверждает ожидающий заказ. Повторное подтверждение — no-op.
func (d *Dispatcher) ConfirmOrder(ctx context.Context, orderID string) (Order, bool) {
	return d.journal.Confirm(ctx, orderID)
}

func (d *Dispatcher) newOrder(userID int64, username string, typ Type, items []Item, total decimal.Decimal, status Status, before, after decimal.Decimal) Order {
	now := time.Now()
	return Order{
		OrderID:   common.NewOrderID(userID, now),
		UserID:    userID,
		Type:      typ,
		Items:     items,
		Total:     total,
		Status:    status,
		Timestamp: now,
		UserInfo: UserInfo{
			Username:      username,
			BalanceBefore: before,
			BalanceAfter:  after,
		},
	}
}

func (d *Dispatcher) requeueAll(ctx context.Context, taken map[string][]inventory.Code) {
	for label, codes := range taken {
		d.inventory.Requeue(ctx, label, codes)
	}
}

func codeValues(taken map[string][]inventory.Code) map[string][]string {
	out := make(map[string][]string, len(taken))
	for label, codes := range taken {
		values := make([]string, len(codes))
		for i, c := range codes {
			values[i] = c.Value
		}
		out[label] = values
	}
	return out
}
