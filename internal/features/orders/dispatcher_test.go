package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/inventory"
	"ronid.ru/shop-bot/internal/features/users"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeActivator активирует коды до первого запрещённого.
type fakeActivator struct {
	failOn   string
	failWith error
	redeemed []string
}

func (f *fakeActivator) Redeem(_ context.Context, _, code string) error {
	if code == f.failOn {
		return f.failWith
	}
	f.redeemed = append(f.redeemed, code)
	return nil
}

type fakeStars struct {
	err  error
	sent int64
}

func (f *fakeStars) OrderStars(_ context.Context, _ string, quantity int64) error {
	if f.err != nil {
		return f.err
	}
	f.sent += quantity
	return nil
}

// failingMirror роняет запись заказа.
type failingMirror struct{}

func (failingMirror) SaveOrder(context.Context, Order) error {
	return errors.New("диск недоступен")
}

func newDispatcher(mirror Mirror, act Activator, stars StarsSender) (*Dispatcher, *users.Ledger, *inventory.Store, *Journal) {
	ledger := users.NewLedger(nil)
	inv := inventory.NewStore(nil)
	journal := NewJournal(mirror)
	return NewDispatcher(ledger, inv, journal, act, stars), ledger, inv, journal
}

func TestPurchaseCodesHappyPath(t *testing.T) {
	d, ledger, inv, journal := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("100"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1", "c2", "c3"})

	items := []Item{{Label: "60", Price: price("30")}, {Label: "60", Price: price("30")}}
	o, err := d.PurchaseCodes(ctx, 100, "ivan", items, map[string]int{"60": 2}, price("60"))
	require.NoError(t, err)

	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, []string{"c1", "c2"}, o.Codes["60"])
	require.Equal(t, "40", ledger.Balance(100).String())
	require.Equal(t, 1, inv.Available("60"))

	got, ok := journal.Get(o.OrderID)
	require.True(t, ok)
	require.Equal(t, "100", got.UserInfo.BalanceBefore.String())
	require.Equal(t, "40", got.UserInfo.BalanceAfter.String())
}

func TestPurchaseCodesInsufficientFunds(t *testing.T) {
	d, ledger, inv, _ := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	inv.Add(ctx, "60", []string{"c1"})

	_, err := d.PurchaseCodes(ctx, 100, "ivan", []Item{{Label: "60", Price: price("30")}}, map[string]int{"60": 1}, price("30"))
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	require.Equal(t, 1, inv.Available("60"))
}

func TestPurchaseCodesInsufficientInventory(t *testing.T) {
	d, ledger, inv, _ := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("100"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1"})

	_, err = d.PurchaseCodes(ctx, 100, "ivan", []Item{{Label: "60", Price: price("30")}, {Label: "60", Price: price("30")}}, map[string]int{"60": 2}, price("60"))
	require.ErrorIs(t, err, common.ErrInsufficientInventory)
	require.Equal(t, "100", ledger.Balance(100).String())
	require.Equal(t, 1, inv.Available("60"))
}

func TestPurchaseCodesPersistenceFailureCompensates(t *testing.T) {
	d, ledger, inv, journal := newDispatcher(failingMirror{}, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("50"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1"})

	_, err = d.PurchaseCodes(ctx, 100, "ivan", []Item{{Label: "60", Price: price("30")}}, map[string]int{"60": 1}, price("30"))
	require.ErrorIs(t, err, common.ErrPersistence)

	// деньги и код вернулись, журнал пуст
	require.Equal(t, "50", ledger.Balance(100).String())
	require.Equal(t, 1, inv.Available("60"))
	require.Empty(t, journal.History(100))
}

func TestPurchaseWithIDActivationFailureNoDebit(t *testing.T) {
	act := &fakeActivator{failOn: "c2", failWith: common.ErrRecipientNotFound}
	d, ledger, inv, journal := newDispatcher(nil, act, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("100"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1", "c2", "c3"})

	items := []Item{{Label: "60", Price: price("30")}, {Label: "60", Price: price("30")}}
	draft, err := d.PurchaseWithID(ctx, 100, "ivan", "5550001", items, map[string]int{"60": 2}, []string{"60"}, price("60"))
	require.ErrorIs(t, err, common.ErrRecipientNotFound)

	// c1 успел активироваться и в пул не возвращается, c2 вернулся
	require.Equal(t, []string{"c1"}, draft.Codes["60"])
	require.Equal(t, 2, inv.Available("60"))
	require.Equal(t, "100", ledger.Balance(100).String())
	require.Empty(t, journal.History(100))
}

func TestPurchaseWithIDHappyPath(t *testing.T) {
	act := &fakeActivator{}
	d, ledger, inv, _ := newDispatcher(nil, act, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("100"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1", "c2"})

	items := []Item{{Label: "60", Price: price("30")}, {Label: "60", Price: price("30")}}
	o, err := d.PurchaseWithID(ctx, 100, "ivan", "5550001", items, map[string]int{"60": 2}, []string{"60"}, price("60"))
	require.NoError(t, err)

	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, "5550001", o.PubgID)
	require.Equal(t, []string{"c1", "c2"}, act.redeemed)
	require.Equal(t, "40", ledger.Balance(100).String())
	require.Equal(t, 0, inv.Available("60"))
}

func TestPurchasePremiumPendingAndDecline(t *testing.T) {
	d, ledger, _, journal := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("20"))
	require.NoError(t, err)

	o, err := d.PurchasePremium(ctx, 100, "ivan", "3 месяца", "@petya", price("12"))
	require.NoError(t, err)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, "@petya", o.Tag)
	require.Equal(t, "8", ledger.Balance(100).String())

	declined, ok := d.DeclineOrder(ctx, o.OrderID)
	require.True(t, ok)
	require.Equal(t, StatusDeclined, declined.Status)
	require.Equal(t, "20", ledger.Balance(100).String())

	// повторное отклонение денег не возвращает
	_, ok = d.DeclineOrder(ctx, o.OrderID)
	require.False(t, ok)
	require.Equal(t, "20", ledger.Balance(100).String())

	got, ok := journal.Get(o.OrderID)
	require.True(t, ok)
	require.Equal(t, StatusDeclined, got.Status)
}

func TestConfirmOrderIdempotent(t *testing.T) {
	d, ledger, _, _ := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("20"))
	require.NoError(t, err)

	o, err := d.PurchasePremium(ctx, 100, "ivan", "3 месяца", "@petya", price("12"))
	require.NoError(t, err)

	_, ok := d.ConfirmOrder(ctx, o.OrderID)
	require.True(t, ok)
	_, ok = d.ConfirmOrder(ctx, o.OrderID)
	require.False(t, ok)
	_, ok = d.DeclineOrder(ctx, o.OrderID)
	require.False(t, ok)
}

func TestPurchaseStars(t *testing.T) {
	stars := &fakeStars{}
	d, ledger, _, _ := newDispatcher(nil, nil, stars)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("10"))
	require.NoError(t, err)

	o, err := d.PurchaseStars(ctx, 100, "ivan", "@petya", 50, price("1"))
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, int64(50), o.StarsAmount)
	require.Equal(t, int64(50), stars.sent)
	require.Equal(t, "9", ledger.Balance(100).String())
}

func TestPurchaseStarsSendFailureKeepsBalance(t *testing.T) {
	stars := &fakeStars{err: errors.New("fragment недоступен")}
	d, ledger, _, _ := newDispatcher(nil, nil, stars)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("10"))
	require.NoError(t, err)

	_, err = d.PurchaseStars(ctx, 100, "ivan", "@petya", 50, price("1"))
	require.Error(t, err)
	require.Equal(t, "10", ledger.Balance(100).String())
}

func TestHistoryNewestFirst(t *testing.T) {
	d, ledger, inv, journal := newDispatcher(nil, nil, nil)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	_, err := ledger.Credit(ctx, 100, price("100"))
	require.NoError(t, err)
	inv.Add(ctx, "60", []string{"c1", "c2"})

	first, err := d.PurchaseCodes(ctx, 100, "ivan", []Item{{Label: "60", Price: price("30")}}, map[string]int{"60": 1}, price("30"))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // номер заказа растёт с миллисекундами
	second, err := d.PurchaseCodes(ctx, 100, "ivan", []Item{{Label: "60", Price: price("30")}}, map[string]int{"60": 1}, price("30"))
	require.NoError(t, err)

	h := journal.History(100)
	require.Len(t, h, 2)
	require.Equal(t, second.OrderID, h[0].OrderID)
	require.Equal(t, first.OrderID, h[1].OrderID)

	require.Equal(t, "60", journal.TotalSpent(100).String())
}
