// Package bot — commands.go разбирает данные inline-кнопок в типизированную
// команду. Данные кнопки — строка с подчёркиваниями в роли разделителей;
// разбор происходит один раз на входе, дальше обработчики работают с Command.
package bot

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CommandKind — вид команды inline-кнопки.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdReturn
	CmdMainMessage
	CmdCatalog
	CmdPubg
	CmdTelegram
	CmdOpenShop
	CmdAdminPanel
	CmdMyProfile
	CmdMyOrders
	CmdLanguage
	CmdSetLang
	CmdDeposit
	CmdDepositBybit
	CmdDepositCryptobot
	CmdAddToCart
	CmdCartClear
	CmdCartBuyWithID
	CmdCartBuyCodes
	CmdBuyPremium
	CmdEditPaymentDetails
	CmdSelectPaymentMethod
	CmdManageBalances
	CmdManageProducts
	CmdManageCategory
	CmdEditProduct
	CmdDeleteProductList
	CmdDeleteProduct
	CmdAddProduct
	CmdManageAdmins
	CmdAddAdmin
	CmdRemoveAdmin
	CmdSendBroadcast
	CmdManageCodes
	CmdAddCodesList
	CmdRemoveCodesList
	CmdAddCodes
	CmdRemoveCodes
	CmdConfirmCheck
	CmdRejectCheck
	CmdOrderCompleted
	CmdOrderDeclined
)

// Command — разобранная команда кнопки.
// Заполнены только поля, осмысленные для данного вида.
type Command struct {
	Kind     CommandKind
	Label    string
	Price    decimal.Decimal
	ShopType string // категория магазина: codes, id, premium, promo, stars
	Category string
	Method   string // способ оплаты: bybit, cryptobot
	Lang     string
	UserID   int64
	OrderID  string
	Amount   decimal.Decimal
}

// ParseCommand разбирает данные кнопки. Незнакомые данные дают CmdUnknown —
// такие нажатия молча игнорируются.
func ParseCommand(data string) Command {
	switch data {
	case "return":
		return Command{Kind: CmdReturn}
	case "main-message":
		return Command{Kind: CmdMainMessage}
	case "catalog":
		return Command{Kind: CmdCatalog}
	case "pubg":
		return Command{Kind: CmdPubg}
	case "telegram":
		return Command{Kind: CmdTelegram}
	case "admin-panel":
		return Command{Kind: CmdAdminPanel}
	case "my-profile":
		return Command{Kind: CmdMyProfile}
	case "my-orders":
		return Command{Kind: CmdMyOrders}
	case "language":
		return Command{Kind: CmdLanguage}
	case "deposit":
		return Command{Kind: CmdDeposit}
	case "deposit-with-bybit":
		return Command{Kind: CmdDepositBybit}
	case "deposit-with-cryptobot":
		return Command{Kind: CmdDepositCryptobot}
	case "edit-payment-details":
		return Command{Kind: CmdEditPaymentDetails}
	case "manage-balances":
		return Command{Kind: CmdManageBalances}
	case "manage-products":
		return Command{Kind: CmdManageProducts}
	case "manage-admins":
		return Command{Kind: CmdManageAdmins}
	case "add-admin":
		return Command{Kind: CmdAddAdmin}
	case "remove-admin":
		return Command{Kind: CmdRemoveAdmin}
	case "send-broadcast":
		return Command{Kind: CmdSendBroadcast}
	case "manage-codes":
		return Command{Kind: CmdManageCodes}
	case "add-codes-list":
		return Command{Kind: CmdAddCodesList}
	case "remove-codes-list":
		return Command{Kind: CmdRemoveCodesList}
	}

	switch {
	case strings.HasPrefix(data, "open-shop_"):
		return Command{Kind: CmdOpenShop, ShopType: strings.TrimPrefix(data, "open-shop_")}

	case strings.HasPrefix(data, "set-lang_"):
		return Command{Kind: CmdSetLang, Lang: strings.TrimPrefix(data, "set-lang_")}

	case strings.HasPrefix(data, "add-to-cart_"):
		// add-to-cart_{label}_{price}_{type}
		parts := strings.Split(strings.TrimPrefix(data, "add-to-cart_"), "_")
		if len(parts) != 3 {
			return Command{}
		}
		price, err := decimal.NewFromString(parts[1])
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdAddToCart, Label: parts[0], Price: price, ShopType: parts[2]}

	case strings.HasPrefix(data, "cart_"):
		// cart_{action}_{type}; в действии подчёркиваний нет, режем по последнему
		rest := strings.TrimPrefix(data, "cart_")
		idx := strings.LastIndex(rest, "_")
		if idx == -1 {
			return Command{}
		}
		action, shopType := rest[:idx], rest[idx+1:]
		switch action {
		case "clear":
			return Command{Kind: CmdCartClear, ShopType: shopType}
		case "buy-with-id":
			return Command{Kind: CmdCartBuyWithID, ShopType: shopType}
		case "buy-codes":
			return Command{Kind: CmdCartBuyCodes, ShopType: shopType}
		}
		return Command{}

	case strings.HasPrefix(data, "buy-premium_"):
		// buy-premium_{label}_{price}
		rest := strings.TrimPrefix(data, "buy-premium_")
		idx := strings.LastIndex(rest, "_")
		if idx == -1 {
			return Command{}
		}
		price, err := decimal.NewFromString(rest[idx+1:])
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdBuyPremium, Label: rest[:idx], Price: price}

	case strings.HasPrefix(data, "select-payment-method_"):
		return Command{Kind: CmdSelectPaymentMethod, Method: strings.TrimPrefix(data, "select-payment-method_")}

	case strings.HasPrefix(data, "manage-category_"):
		return Command{Kind: CmdManageCategory, Category: strings.TrimPrefix(data, "manage-category_")}

	case strings.HasPrefix(data, "edit-product_"):
		return parseCategoryLabel(data, "edit-product_", CmdEditProduct)

	case strings.HasPrefix(data, "delete-product-list_"):
		return Command{Kind: CmdDeleteProductList, Category: strings.TrimPrefix(data, "delete-product-list_")}

	case strings.HasPrefix(data, "delete-product_"):
		return parseCategoryLabel(data, "delete-product_", CmdDeleteProduct)

	case strings.HasPrefix(data, "add-product_"):
		return Command{Kind: CmdAddProduct, Category: strings.TrimPrefix(data, "add-product_")}

	case strings.HasPrefix(data, "add-codes_"):
		return Command{Kind: CmdAddCodes, Label: strings.TrimPrefix(data, "add-codes_")}

	case strings.HasPrefix(data, "remove-codes_"):
		return Command{Kind: CmdRemoveCodes, Label: strings.TrimPrefix(data, "remove-codes_")}

	case strings.HasPrefix(data, "confirm_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "confirm_"), 10, 64)
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdConfirmCheck, UserID: id}

	case strings.HasPrefix(data, "reject_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "reject_"), 10, 64)
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdRejectCheck, UserID: id}

	case strings.HasPrefix(data, "order-completed_"):
		// order-completed_{userId}_{orderId}
		parts := strings.SplitN(strings.TrimPrefix(data, "order-completed_"), "_", 2)
		if len(parts) != 2 {
			return Command{}
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdOrderCompleted, UserID: id, OrderID: parts[1]}

	case strings.HasPrefix(data, "order-declined_"):
		// order-declined_{userId}_{orderId}_{amount}
		rest := strings.TrimPrefix(data, "order-declined_")
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) != 2 {
			return Command{}
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Command{}
		}
		idx := strings.LastIndex(parts[1], "_")
		if idx == -1 {
			return Command{}
		}
		amount, err := decimal.NewFromString(parts[1][idx+1:])
		if err != nil {
			return Command{}
		}
		return Command{Kind: CmdOrderDeclined, UserID: id, OrderID: parts[1][:idx], Amount: amount}
	}

	return Command{}
}

func parseCategoryLabel(data, prefix string, kind CommandKind) Command {
	parts := strings.SplitN(strings.TrimPrefix(data, prefix), "_", 2)
	if len(parts) != 2 {
		return Command{}
	}
	return Command{Kind: kind, Category: parts[0], Label: parts[1]}
}
