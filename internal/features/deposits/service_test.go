package deposits

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTakeCheckIsExactlyOnce(t *testing.T) {
	d := NewDesk(nil)
	ctx := context.Background()

	d.CreateCheck(ctx, 100, amount("25"), "@ivan")

	c, ok := d.TakeCheck(ctx, 100)
	require.True(t, ok)
	require.Equal(t, "25", c.Amount.String())
	require.Equal(t, "@ivan", c.PayerTag)

	// второй клик по кнопке — чека уже нет
	_, ok = d.TakeCheck(ctx, 100)
	require.False(t, ok)
}

func TestNewCheckReplacesOld(t *testing.T) {
	d := NewDesk(nil)
	ctx := context.Background()

	d.CreateCheck(ctx, 100, amount("25"), "@ivan")
	d.CreateCheck(ctx, 100, amount("40"), "@ivan")

	c, ok := d.TakeCheck(ctx, 100)
	require.True(t, ok)
	require.Equal(t, "40", c.Amount.String())
}

func TestExpireStale(t *testing.T) {
	d := NewDesk(nil)
	ctx := context.Background()

	old := PendingCheck{UserID: 1, Amount: amount("10"), CreatedAt: time.Now().Add(-80 * time.Hour)}
	fresh := PendingCheck{UserID: 2, Amount: amount("20"), CreatedAt: time.Now()}
	oldDep := CryptoDeposit{UserID: 3, PayerName: "ivan", CreatedAt: time.Now().Add(-80 * time.Hour)}
	d.Load([]PendingCheck{old, fresh}, []CryptoDeposit{oldDep}, PaymentDetails{})

	checks, deposits := d.ExpireStale(ctx, 72*time.Hour)
	require.Len(t, checks, 1)
	require.Equal(t, int64(1), checks[0].UserID)
	require.Len(t, deposits, 1)
	require.Equal(t, int64(3), deposits[0].UserID)

	// свежий чек остался, заявки по плательщику нет
	_, ok := d.TakeCheck(ctx, 2)
	require.True(t, ok)
	_, err := d.TakeDepositByPayer(ctx, "ivan")
	require.ErrorIs(t, err, common.ErrNoMatchingDeposit)
}

func TestTakeDepositAmbiguousPayer(t *testing.T) {
	d := NewDesk(nil)
	ctx := context.Background()

	d.TrackDeposit(ctx, 100, "Иван Петров", 0)
	d.TrackDeposit(ctx, 200, "Иван Петров", 0)

	// два тёзки — получателя не угадываем, обе заявки остаются
	_, err := d.TakeDepositByPayer(ctx, "Иван Петров")
	require.ErrorIs(t, err, common.ErrAmbiguousDeposit)

	_, err = d.TakeDepositByPayer(ctx, "Иван Петров")
	require.ErrorIs(t, err, common.ErrAmbiguousDeposit)
}

func TestPaymentDetails(t *testing.T) {
	d := NewDesk(nil)
	ctx := context.Background()

	require.Empty(t, d.Details().ByBit)

	d.SetDetail(ctx, "bybit", "UID 12345678")
	d.SetDetail(ctx, "cryptobot", "@CryptoBot чек на @shop")

	got := d.Details()
	require.Equal(t, "UID 12345678", got.ByBit)
	require.Equal(t, "@CryptoBot чек на @shop", got.CryptoBot)
}
