package common

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSafeRound(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"хвост из девяток обрезается", 12.4999999, 12.49},
		{"длинный хвост", 59.9899999999, 59.98},
		{"ровное число не трогаем", 12.5, 12.5},
		{"целое не трогаем", 60, 60},
		{"нулей после запятой недостаточно для серии", 0.30000000000000004, 0.30000000000000004},
		{"девятки не сразу после второго знака", 1.290999, 1.290999},
		{"отрицательное с хвостом", -12.4999999, -12.49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, SafeRound(tt.in), 1e-12)
		})
	}
}

func TestSafeRoundProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.Float64Range(0, 1e6).Draw(t, "in")
		out := SafeRound(in)

		// нормализация меняет число не больше чем на цену хвоста
		require.LessOrEqual(t, math.Abs(out-in), 0.01)
		// повторная нормализация ничего не делает
		require.Equal(t, out, SafeRound(out))
	})
}

func TestParseAmount(t *testing.T) {
	t.Run("точка как разделитель", func(t *testing.T) {
		d, err := ParseAmount("12.5")
		require.NoError(t, err)
		require.True(t, d.Equal(decimal.NewFromFloat(12.5)))
	})

	t.Run("запятая как разделитель", func(t *testing.T) {
		d, err := ParseAmount("12,5")
		require.NoError(t, err)
		require.True(t, d.Equal(decimal.NewFromFloat(12.5)))
	})

	t.Run("не число", func(t *testing.T) {
		_, err := ParseAmount("дай сто")
		require.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("положительная сумма обязательна", func(t *testing.T) {
		_, err := ParsePositiveAmount("-5")
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = ParsePositiveAmount("0")
		require.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "60", FormatAmount(decimal.NewFromInt(60)))
	require.Equal(t, "30.5", FormatAmount(decimal.RequireFromString("30.50")))
	require.Equal(t, "12.49", FormatAmount(decimal.RequireFromString("12.49")))
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID(1234567890, timeFixed())
	require.True(t, len(id) > 4)
	require.Equal(t, "7890", id[len(id)-4:])
}

func timeFixed() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestPluralizeCodes(t *testing.T) {
	require.Equal(t, "код", PluralizeCodes(1))
	require.Equal(t, "кода", PluralizeCodes(3))
	require.Equal(t, "кодов", PluralizeCodes(5))
	require.Equal(t, "кодов", PluralizeCodes(11))
	require.Equal(t, "код", PluralizeCodes(21))
}
