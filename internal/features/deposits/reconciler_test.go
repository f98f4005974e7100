package deposits

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/users"
)

func TestParseTransfer(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		payer  string
		amount string
		ok     bool
	}{
		{
			name:   "обычный перевод",
			text:   "Иван Петров отправил(а) 🪙 12.5 USDT",
			payer:  "Иван Петров",
			amount: "12.5",
			ok:     true,
		},
		{
			name:   "запятая в сумме",
			text:   "ivan отправил(а) 🪙 12,5 USDT",
			payer:  "ivan",
			amount: "12.5",
			ok:     true,
		},
		{name: "нет маркера", text: "Иван перевёл 🪙 12.5"},
		{name: "нет монеты после маркера", text: "Иван отправил(а) 12.5 USDT"},
		{name: "нет суммы", text: "Иван отправил(а) 🪙"},
		{name: "сумма не число", text: "Иван отправил(а) 🪙 много USDT"},
		{name: "маркер первым токеном", text: "отправил(а) 🪙 12.5 USDT"},
		{name: "пустой текст", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payer, amount, err := ParseTransfer(tt.text)
			if !tt.ok {
				require.ErrorIs(t, err, common.ErrParseFailure)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.payer, payer)
			require.True(t, amount.Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestReconcilerCreditsExactlyOnce(t *testing.T) {
	ledger := users.NewLedger(nil)
	desk := NewDesk(nil)
	r := NewReconciler(desk, ledger)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	desk.TrackDeposit(ctx, 100, "Иван Петров", 555)

	res, err := r.Process(ctx, "Иван Петров отправил(а) 🪙 12,5 USDT")
	require.NoError(t, err)
	require.Equal(t, int64(100), res.Deposit.UserID)
	require.Equal(t, 555, res.Deposit.InvoiceMessageID)
	require.Equal(t, "12.5", res.Amount.String())
	require.Equal(t, "12.5", ledger.Balance(100).String())

	// то же сообщение второй раз — заявки уже нет
	_, err = r.Process(ctx, "Иван Петров отправил(а) 🪙 12,5 USDT")
	require.ErrorIs(t, err, common.ErrNoMatchingDeposit)
	require.Equal(t, "12.5", ledger.Balance(100).String())
}

func TestReconcilerNoMatchingDeposit(t *testing.T) {
	ledger := users.NewLedger(nil)
	r := NewReconciler(NewDesk(nil), ledger)

	_, err := r.Process(context.Background(), "Неизвестный отправил(а) 🪙 5 USDT")
	require.ErrorIs(t, err, common.ErrNoMatchingDeposit)
}

func TestReconcilerAmbiguousPayerCreditsNobody(t *testing.T) {
	ledger := users.NewLedger(nil)
	desk := NewDesk(nil)
	r := NewReconciler(desk, ledger)
	ctx := context.Background()

	ledger.EnsureUser(ctx, 100)
	ledger.EnsureUser(ctx, 200)
	desk.TrackDeposit(ctx, 100, "Иван Петров", 0)
	desk.TrackDeposit(ctx, 200, "Иван Петров", 0)

	_, err := r.Process(ctx, "Иван Петров отправил(а) 🪙 12,5 USDT")
	require.ErrorIs(t, err, common.ErrAmbiguousDeposit)
	require.True(t, ledger.Balance(100).IsZero())
	require.True(t, ledger.Balance(200).IsZero())
}

func TestReconcilerParseFailure(t *testing.T) {
	r := NewReconciler(NewDesk(nil), users.NewLedger(nil))

	_, err := r.Process(context.Background(), "служебное сообщение без перевода")
	require.ErrorIs(t, err, common.ErrParseFailure)
}
