package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/common"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCategoryIDSharesCodesList(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, CategoryCodes, []Product{{Label: "60", Price: price("0.99")}}))

	require.Len(t, s.Products(CategoryID), 1)
	require.Equal(t, "60", s.Products(CategoryID)[0].Label)
}

func TestReplaceSortsByNumericLabel(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	err := s.Replace(ctx, CategoryCodes, []Product{
		{Label: "325", Price: price("4.5")},
		{Label: "60", Price: price("0.99")},
		{Label: "1800", Price: price("24")},
	})
	require.NoError(t, err)

	got := s.Products(CategoryCodes)
	require.Equal(t, []string{"60", "325", "1800"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestFind(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, CategoryPremium, []Product{{Label: "3 месяца", Price: price("12")}}))

	p, err := s.Find(CategoryPremium, "3 месяца")
	require.NoError(t, err)
	require.True(t, p.Price.Equal(price("12")))

	_, err = s.Find(CategoryPremium, "год")
	require.ErrorIs(t, err, common.ErrProductNotFound)
}

func TestAddRemoveProduct(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.AddProduct(ctx, CategoryPromo, Product{Label: "promo10", Price: price("1")}))
	require.Len(t, s.Products(CategoryPromo), 1)

	require.NoError(t, s.RemoveProduct(ctx, CategoryPromo, "promo10"))
	require.Empty(t, s.Products(CategoryPromo))

	require.ErrorIs(t, s.RemoveProduct(ctx, CategoryPromo, "promo10"), common.ErrProductNotFound)
}

func TestSetPrice(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, CategoryCodes, []Product{{Label: "60", Price: price("0.99")}}))

	require.NoError(t, s.SetPrice(ctx, CategoryCodes, "60", price("1.05")))
	p, err := s.Find(CategoryCodes, "60")
	require.NoError(t, err)
	require.True(t, p.Price.Equal(price("1.05")))

	require.ErrorIs(t, s.SetPrice(ctx, CategoryCodes, "нет", price("1")), common.ErrProductNotFound)
}

func TestStarsPrice(t *testing.T) {
	s := NewStore(nil)
	require.True(t, s.StarsPrice().IsZero())

	s.SetStarsPrice(context.Background(), price("0.02"))
	require.True(t, s.StarsPrice().Equal(price("0.02")))
}

func TestProductsReturnsCopy(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, CategoryCodes, []Product{{Label: "60", Price: price("0.99")}}))

	got := s.Products(CategoryCodes)
	got[0].Label = "испорчено"

	require.Equal(t, "60", s.Products(CategoryCodes)[0].Label)
}
