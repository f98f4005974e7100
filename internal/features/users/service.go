// Package users — service.go содержит Ledger, единственного владельца балансов.
// Все проверки и списания выполняются под замком конкретного пользователя:
// между чтением баланса и его изменением никто другой вклиниться не может.
package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// Mirror — зеркало пользователей в постоянном хранилище.
// Запись best-effort: ошибка логируется, но операция в памяти не откатывается.
type Mirror interface {
	SaveUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, userID int64) error
}

// account — пользователь вместе со своим замком.
// Замок сериализует все денежные операции одного пользователя.
type account struct {
	mu   sync.Mutex
	user User
}

// Ledger хранит балансы всех пользователей в памяти.
// Баланс меняется только через методы Ledger — прямых записей нет нигде.
type Ledger struct {
	mu       sync.RWMutex // защищает карту accounts
	accounts map[int64]*account
	mirror   Mirror
}

// NewLedger создаёт пустой реестр балансов.
// mirror может быть nil — тогда состояние живёт только в памяти (тесты).
func NewLedger(mirror Mirror) *Ledger {
	return &Ledger{
		accounts: make(map[int64]*account),
		mirror:   mirror,
	}
}

// Load поднимает пользователей из зеркала при старте.
func (l *Ledger) Load(users []User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range users {
		l.accounts[u.ID] = &account{user: u}
	}
	log.WithField("count", len(users)).Info("Пользователи загружены")
}

// acct возвращает запись пользователя, при необходимости создавая её.
func (l *Ledger) acct(userID int64, create bool) (*account, bool) {
	l.mu.RLock()
	a, ok := l.accounts[userID]
	l.mu.RUnlock()
	if ok || !create {
		return a, ok
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok = l.accounts[userID]; ok {
		return a, true
	}
	a = &account{user: User{
		ID:        userID,
		Balance:   decimal.Zero,
		Language:  "ru",
		CreatedAt: time.Now(),
	}}
	l.accounts[userID] = a
	return a, false
}

// EnsureUser создаёт пользователя при первом контакте.
// Возвращает true, если пользователь был создан только что.
func (l *Ledger) EnsureUser(ctx context.Context, userID int64) bool {
	a, existed := l.acct(userID, true)
	if existed {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	l.save(ctx, a.user)
	return true
}

// Exists сообщает, известен ли пользователь.
func (l *Ledger) Exists(userID int64) bool {
	_, ok := l.acct(userID, false)
	return ok
}

// Balance возвращает текущий баланс пользователя.
// Для неизвестного пользователя — ноль.
func (l *Ledger) Balance(userID int64) decimal.Decimal {
	a, ok := l.acct(userID, false)
	if !ok {
		return decimal.Zero
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user.Balance
}

// Credit начисляет сумму на баланс. Возвращает новый баланс.
func (l *Ledger) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}

	a, _ := l.acct(userID, true)
	a.mu.Lock()
	defer a.mu.Unlock()

	a.user.Balance = common.NormalizeMoney(a.user.Balance.Add(amount))
	l.save(ctx, a.user)

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": a.user.Balance,
	}).Info("Начисление на баланс")

	return a.user.Balance, nil
}

// Debit списывает сумму с баланса. Проверка и списание выполняются
// атомарно под замком пользователя: баланс не может уйти в минус,
// и два параллельных списания не потратят одни и те же деньги дважды.
func (l *Ledger) Debit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}

	a, ok := l.acct(userID, false)
	if !ok {
		return decimal.Zero, common.ErrUserNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.user.Balance.LessThan(amount) {
		return a.user.Balance, common.ErrInsufficientFunds
	}

	a.user.Balance = common.NormalizeMoney(a.user.Balance.Sub(amount))
	l.save(ctx, a.user)

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": a.user.Balance,
	}).Info("Списание с баланса")

	return a.user.Balance, nil
}

// SetBalance выставляет баланс напрямую (только админ-панель).
func (l *Ledger) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return common.ErrInvalidAmount
	}

	a, ok := l.acct(userID, false)
	if !ok {
		return common.ErrUserNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.user.Balance = common.NormalizeMoney(balance)
	l.save(ctx, a.user)
	return nil
}

// Language возвращает язык пользователя ("ru" по умолчанию).
func (l *Ledger) Language(userID int64) string {
	a, ok := l.acct(userID, false)
	if !ok {
		return "ru"
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user.Language
}

// SetLanguage меняет язык интерфейса пользователя.
func (l *Ledger) SetLanguage(ctx context.Context, userID int64, lang string) {
	a, _ := l.acct(userID, true)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user.Language = lang
	l.save(ctx, a.user)
}

// Purge удаляет пользователя — вызывается, когда Telegram сообщает,
// что пользователь заблокировал бота.
func (l *Ledger) Purge(ctx context.Context, userID int64) {
	l.mu.Lock()
	delete(l.accounts, userID)
	l.mu.Unlock()

	if l.mirror != nil {
		if err := l.mirror.DeleteUser(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось удалить пользователя из зеркала")
		}
	}
	log.WithField("user_id", userID).Info("Пользователь вычищен (бот заблокирован)")
}

// AllIDs возвращает отсортированный список всех пользователей (для рассылки).
func (l *Ledger) AllIDs() []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]int64, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// save пишет пользователя в зеркало. Ошибка не фатальна: память авторитетна.
func (l *Ledger) save(ctx context.Context, u User) {
	if l.mirror == nil {
		return
	}
	if err := l.mirror.SaveUser(ctx, u); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Warn("Не удалось зеркалировать пользователя")
	}
}
