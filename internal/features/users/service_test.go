package users

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
)

func TestEnsureUser(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()

	require.True(t, l.EnsureUser(ctx, 100))
	require.False(t, l.EnsureUser(ctx, 100), "повторный контакт не пересоздаёт пользователя")

	require.True(t, l.Balance(100).IsZero())
	require.Equal(t, "ru", l.Language(100))
}

func TestDebitNeverGoesNegative(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.EnsureUser(ctx, 1)

	_, err := l.Credit(ctx, 1, decimal.NewFromInt(50))
	require.NoError(t, err)

	balance, err := l.Debit(ctx, 1, decimal.NewFromInt(100))
	require.ErrorIs(t, err, common.ErrInsufficientFunds)
	require.True(t, balance.Equal(decimal.NewFromInt(50)), "баланс не изменился")

	balance, err = l.Debit(ctx, 1, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestDebitRejectsNonPositive(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.EnsureUser(ctx, 1)

	_, err := l.Debit(ctx, 1, decimal.Zero)
	require.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = l.Credit(ctx, 1, decimal.NewFromInt(-5))
	require.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestDebitUnknownUser(t *testing.T) {
	l := NewLedger(nil)
	_, err := l.Debit(context.Background(), 404, decimal.NewFromInt(1))
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

// Два потока одновременно пытаются потратить один и тот же баланс:
// пройти должно ровно одно списание.
func TestConcurrentDebitNoDoubleSpend(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.EnsureUser(ctx, 7)
	_, err := l.Credit(ctx, 7, decimal.NewFromInt(30))
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Debit(ctx, 7, decimal.NewFromInt(30))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, common.ErrInsufficientFunds)
		}
	}
	require.Equal(t, 1, succeeded, "двойного списания быть не должно")
	require.True(t, l.Balance(7).IsZero())
}

func TestPurge(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.EnsureUser(ctx, 5)
	l.Purge(ctx, 5)

	require.False(t, l.Exists(5))
	require.Empty(t, l.AllIDs())
}

func TestCreditNormalizesFloatTail(t *testing.T) {
	l := NewLedger(nil)
	ctx := context.Background()
	l.EnsureUser(ctx, 9)

	amount, err := common.ParseAmount("12,4999999")
	require.NoError(t, err)

	balance, err := l.Credit(ctx, 9, amount)
	require.NoError(t, err)
	require.Equal(t, "12.49", balance.String())
}
