// Package orders — service.go содержит Journal, владельца журнала заказов.
// Запись нового заказа в хранилище обязательна: если она не прошла,
// Create возвращает ошибку и вызывающий обязан откатить покупку.
// Смена статуса уже записанного заказа — best-effort, как у остальных зеркал.
package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// Mirror — постоянное хранилище журнала заказов.
type Mirror interface {
	SaveOrder(ctx context.Context, o Order) error
}

// Journal хранит все заказы в памяти.
type Journal struct {
	mu     sync.RWMutex
	orders map[string]*Order // по OrderID
	byUser map[int64][]string
	mirror Mirror
}

// NewJournal создаёт пустой журнал. mirror может быть nil (тесты).
func NewJournal(mirror Mirror) *Journal {
	return &Journal{
		orders: make(map[string]*Order),
		byUser: make(map[int64][]string),
		mirror: mirror,
	}
}

// Load поднимает журнал из зеркала при старте. Заказы приходят
// отсортированными по времени, порядок в byUser сохраняется.
func (j *Journal) Load(orders []Order) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range orders {
		o := orders[i]
		j.orders[o.OrderID] = &o
		j.byUser[o.UserID] = append(j.byUser[o.UserID], o.OrderID)
	}
	log.WithField("count", len(orders)).Info("Журнал заказов загружен")
}

// Create записывает новый заказ. При ошибке хранилища заказ не появляется
// ни в памяти, ни на диске — вызывающий компенсирует покупку.
func (j *Journal) Create(ctx context.Context, o Order) error {
	if j.mirror != nil {
		if err := j.mirror.SaveOrder(ctx, o); err != nil {
			log.WithError(err).WithField("order_id", o.OrderID).Error("Не удалось записать заказ")
			return fmt.Errorf("%w: %v", common.ErrPersistence, err)
		}
	}

	j.mu.Lock()
	j.orders[o.OrderID] = &o
	j.byUser[o.UserID] = append(j.byUser[o.UserID], o.OrderID)
	j.mu.Unlock()

	log.WithFields(log.Fields{
		"order_id": o.OrderID,
		"user_id":  o.UserID,
		"type":     o.Type,
		"total":    o.Total,
		"status":   o.Status,
	}).Info("Заказ записан")
	return nil
}

// Get возвращает заказ по номеру.
func (j *Journal) Get(orderID string) (Order, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	o, ok := j.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Confirm переводит ожидающий заказ в confirmed.
// Возвращает false, если заказ не найден или уже не pending —
// повторное нажатие кнопки админом ничего не меняет.
func (j *Journal) Confirm(ctx context.Context, orderID string) (Order, bool) {
	return j.transition(ctx, orderID, StatusConfirmed)
}

// Decline переводит ожидающий заказ в declined. Возврат денег —
// обязанность вызывающего: журнал статусами занимается, деньгами нет.
func (j *Journal) Decline(ctx context.Context, orderID string) (Order, bool) {
	return j.transition(ctx, orderID, StatusDeclined)
}

func (j *Journal) transition(ctx context.Context, orderID string, to Status) (Order, bool) {
	j.mu.Lock()
	o, ok := j.orders[orderID]
	if !ok || o.Status != StatusPending {
		j.mu.Unlock()
		return Order{}, false
	}
	o.Status = to
	snapshot := *o
	j.mu.Unlock()

	if j.mirror != nil {
		if err := j.mirror.SaveOrder(ctx, snapshot); err != nil {
			log.WithError(err).WithField("order_id", orderID).Warn("Не удалось зеркалировать статус заказа")
		}
	}
	log.WithFields(log.Fields{"order_id": orderID, "status": to}).Info("Статус заказа изменён")
	return snapshot, true
}

// History возвращает заказы пользователя, новые первыми.
func (j *Journal) History(userID int64) []Order {
	j.mu.RLock()
	defer j.mu.RUnlock()

	ids := j.byUser[userID]
	out := make([]Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *j.orders[ids[i]])
	}
	return out
}

// TotalSpent суммирует подтверждённые заказы пользователя (для профиля).
func (j *Journal) TotalSpent(userID int64) decimal.Decimal {
	j.mu.RLock()
	defer j.mu.RUnlock()

	total := decimal.Zero
	for _, id := range j.byUser[userID] {
		if o := j.orders[id]; o.Status == StatusConfirmed {
			total = total.Add(o.Total)
		}
	}
	return common.NormalizeMoney(total)
}
