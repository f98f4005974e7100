package session

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ronid.ru/shop-bot/internal/common"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCartAddAccumulatesTotal(t *testing.T) {
	var c Cart
	c.Add("60", price("0.99"))
	c.Add("60", price("0.99"))
	c.Add("325", price("4.5"))

	require.Equal(t, 3, c.Len())
	require.Equal(t, "6.48", c.Total().String())
}

func TestCartRequiredCounts(t *testing.T) {
	var c Cart
	c.Add("60", price("0.99"))
	c.Add("325", price("4.5"))
	c.Add("60", price("0.99"))

	counts, labels := c.RequiredCounts()
	require.Equal(t, map[string]int{"60": 2, "325": 1}, counts)
	require.Equal(t, []string{"60", "325"}, labels)
}

func TestCartClearIdempotent(t *testing.T) {
	var c Cart
	c.Add("60", price("0.99"))

	c.Clear()
	require.Zero(t, c.Len())
	require.True(t, c.Total().IsZero())

	c.Clear()
	require.Zero(t, c.Len())
}

func TestCartItemsReturnsCopy(t *testing.T) {
	var c Cart
	c.Add("60", price("0.99"))

	items := c.Items()
	items[0].Label = "испорчено"
	require.Equal(t, "60", c.Items()[0].Label)
}

func TestCartTotalMatchesSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var c Cart
		sum := decimal.Zero
		n := rapid.IntRange(1, 20).Draw(t, "n")
		for i := 0; i < n; i++ {
			cents := rapid.Int64Range(1, 100000).Draw(t, "cents")
			p := decimal.New(cents, -2)
			c.Add("x", p)
			sum = sum.Add(p)
		}
		// цены с двумя знаками — нормализация не должна ничего менять
		require.True(t, c.Total().Equal(common.NormalizeMoney(sum)))
		require.True(t, c.Total().Equal(sum))
	})
}

func TestSessionResetClearsStateAndCart(t *testing.T) {
	m := NewManager()

	s := m.Acquire(42)
	s.State = AwaitingPubgID{}
	s.Cart.Add("60", price("0.99"))
	s.Reset()
	require.IsType(t, Browsing{}, s.State)
	require.Zero(t, s.Cart.Len())
	m.Release(s)
}

func TestManagerReturnsSameSession(t *testing.T) {
	m := NewManager()

	s := m.Acquire(42)
	s.State = AwaitingDeposit{}
	m.Release(s)

	s2 := m.Acquire(42)
	require.IsType(t, AwaitingDeposit{}, s2.State)
	m.Release(s2)

	m.Drop(42)
	s3 := m.Acquire(42)
	require.IsType(t, Browsing{}, s3.State)
	m.Release(s3)
}
