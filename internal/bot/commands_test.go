package bot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseCommandSimple(t *testing.T) {
	require.Equal(t, CmdReturn, ParseCommand("return").Kind)
	require.Equal(t, CmdCatalog, ParseCommand("catalog").Kind)
	require.Equal(t, CmdAdminPanel, ParseCommand("admin-panel").Kind)
	require.Equal(t, CmdDepositCryptobot, ParseCommand("deposit-with-cryptobot").Kind)
	require.Equal(t, CmdUnknown, ParseCommand("что-то-левое").Kind)
	require.Equal(t, CmdUnknown, ParseCommand("").Kind)
}

func TestParseCommandOpenShop(t *testing.T) {
	cmd := ParseCommand("open-shop_premium")
	require.Equal(t, CmdOpenShop, cmd.Kind)
	require.Equal(t, "premium", cmd.ShopType)
}

func TestParseCommandAddToCart(t *testing.T) {
	cmd := ParseCommand("add-to-cart_60_0.99_codes")
	require.Equal(t, CmdAddToCart, cmd.Kind)
	require.Equal(t, "60", cmd.Label)
	require.True(t, cmd.Price.Equal(decimal.RequireFromString("0.99")))
	require.Equal(t, "codes", cmd.ShopType)

	require.Equal(t, CmdUnknown, ParseCommand("add-to-cart_60_дорого_codes").Kind)
	require.Equal(t, CmdUnknown, ParseCommand("add-to-cart_60").Kind)
}

func TestParseCommandCart(t *testing.T) {
	cmd := ParseCommand("cart_buy-with-id_id")
	require.Equal(t, CmdCartBuyWithID, cmd.Kind)
	require.Equal(t, "id", cmd.ShopType)

	require.Equal(t, CmdCartClear, ParseCommand("cart_clear_codes").Kind)
	require.Equal(t, CmdCartBuyCodes, ParseCommand("cart_buy-codes_codes").Kind)
	require.Equal(t, CmdUnknown, ParseCommand("cart_steal_codes").Kind)
}

func TestParseCommandBuyPremium(t *testing.T) {
	// метка может содержать подчёркивания и пробелы — цена режется с конца
	cmd := ParseCommand("buy-premium_3 месяца_12.5")
	require.Equal(t, CmdBuyPremium, cmd.Kind)
	require.Equal(t, "3 месяца", cmd.Label)
	require.True(t, cmd.Price.Equal(decimal.RequireFromString("12.5")))
}

func TestParseCommandProducts(t *testing.T) {
	cmd := ParseCommand("edit-product_codes_60")
	require.Equal(t, CmdEditProduct, cmd.Kind)
	require.Equal(t, "codes", cmd.Category)
	require.Equal(t, "60", cmd.Label)

	cmd = ParseCommand("delete-product_premium_3 месяца")
	require.Equal(t, CmdDeleteProduct, cmd.Kind)
	require.Equal(t, "3 месяца", cmd.Label)

	require.Equal(t, "promo", ParseCommand("manage-category_promo").Category)
	require.Equal(t, "codes", ParseCommand("add-product_codes").Category)
}

func TestParseCommandChecks(t *testing.T) {
	cmd := ParseCommand("confirm_1234567890")
	require.Equal(t, CmdConfirmCheck, cmd.Kind)
	require.Equal(t, int64(1234567890), cmd.UserID)

	cmd = ParseCommand("reject_42")
	require.Equal(t, CmdRejectCheck, cmd.Kind)
	require.Equal(t, int64(42), cmd.UserID)

	require.Equal(t, CmdUnknown, ParseCommand("confirm_не-число").Kind)
}

func TestParseCommandOrderCallbacks(t *testing.T) {
	cmd := ParseCommand("order-completed_42_MB4QZ1K03525")
	require.Equal(t, CmdOrderCompleted, cmd.Kind)
	require.Equal(t, int64(42), cmd.UserID)
	require.Equal(t, "MB4QZ1K03525", cmd.OrderID)

	cmd = ParseCommand("order-declined_42_MB4QZ1K03525_12.5")
	require.Equal(t, CmdOrderDeclined, cmd.Kind)
	require.Equal(t, int64(42), cmd.UserID)
	require.Equal(t, "MB4QZ1K03525", cmd.OrderID)
	require.True(t, cmd.Amount.Equal(decimal.RequireFromString("12.5")))

	require.Equal(t, CmdUnknown, ParseCommand("order-declined_42_MB4QZ1K03525").Kind)
}

func TestParseCommandCodes(t *testing.T) {
	require.Equal(t, "60", ParseCommand("add-codes_60").Label)
	require.Equal(t, "325", ParseCommand("remove-codes_325").Label)
	require.Equal(t, CmdAddCodesList, ParseCommand("add-codes-list").Kind)
}
