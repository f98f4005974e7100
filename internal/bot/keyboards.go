// keyboards.go — inline-клавиатуры. Данные кнопок обязаны разбираться
// обратно функцией ParseCommand.
package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/catalog"
)

func btn(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

// mainKeyboard — главное меню. Админ видит дополнительную кнопку панели.
func mainKeyboard(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		row(btn("🛒 Каталог", "catalog")),
		row(btn("👤 Мой профиль", "my-profile"), btn("📦 Мои заказы", "my-orders")),
		row(btn("💰 Пополнить баланс", "deposit")),
		row(btn("🌐 Язык", "language")),
	}
	if isAdmin {
		rows = append(rows, row(btn("⚙️ Админ-панель", "admin-panel")))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// catalogKeyboard — выбор раздела каталога.
func catalogKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("🎮 PUBG", "pubg")),
		row(btn("✈️ Telegram", "telegram")),
		row(btn("↩️ Назад", "return")),
	)
}

// pubgKeyboard — способы доставки PUBG-товаров.
func pubgKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("🔑 Коды в чат", "open-shop_codes")),
		row(btn("🆔 Активация по ID", "open-shop_id")),
		row(btn("🏷 Промо", "open-shop_promo")),
		row(btn("↩️ Назад", "catalog")),
	)
}

// telegramKeyboard — товары Telegram.
func telegramKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("⭐️ Звёзды", "open-shop_stars")),
		row(btn("💎 Премиум", "open-shop_premium")),
		row(btn("↩️ Назад", "catalog")),
	)
}

// shopKeyboard — список товаров раздела с кнопками добавления в корзину.
// Для премиума кнопка сразу запускает покупку.
func shopKeyboard(products []catalog.Product, shopType string, cartLen int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		text := fmt.Sprintf("%s — %s$", p.Label, common.FormatAmount(p.Price))
		var data string
		if shopType == "premium" {
			data = fmt.Sprintf("buy-premium_%s_%s", p.Label, p.Price.String())
		} else {
			data = fmt.Sprintf("add-to-cart_%s_%s_%s", p.Label, p.Price.String(), shopType)
		}
		rows = append(rows, row(btn(text, data)))
	}

	if shopType == "codes" || shopType == "id" || shopType == "promo" {
		if cartLen > 0 {
			buyData := "cart_buy-codes_" + shopType
			if shopType == "id" {
				buyData = "cart_buy-with-id_" + shopType
			}
			rows = append(rows,
				row(btn(fmt.Sprintf("✅ Купить (%d %s)", cartLen, common.PluralizeItems(cartLen)), buyData)),
				row(btn("🗑 Очистить корзину", "cart_clear_"+shopType)),
			)
		}
	}
	rows = append(rows, row(btn("↩️ Назад", "return")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// depositKeyboard — выбор способа пополнения.
func depositKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("💳 ByBit", "deposit-with-bybit")),
		row(btn("🤖 CryptoBot", "deposit-with-cryptobot")),
		row(btn("↩️ Назад", "return")),
	)
}

// languageKeyboard — выбор языка.
func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("🇷🇺 Русский", "set-lang_ru"), btn("🇬🇧 English", "set-lang_en")),
		row(btn("↩️ Назад", "return")),
	)
}

// returnKeyboard — одна кнопка возврата в главное меню.
func returnKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(row(btn("↩️ В меню", "return")))
}

// adminKeyboard — главное меню админ-панели.
func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("💵 Балансы", "manage-balances")),
		row(btn("📦 Товары", "manage-products")),
		row(btn("🔑 Коды", "manage-codes")),
		row(btn("💳 Реквизиты", "edit-payment-details")),
		row(btn("👥 Администраторы", "manage-admins")),
		row(btn("📣 Рассылка", "send-broadcast")),
		row(btn("↩️ В меню", "return")),
	)
}

// manageProductsKeyboard — выбор категории для правки товаров.
func manageProductsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("🔑 Коды", "manage-category_codes")),
		row(btn("💎 Премиум", "manage-category_premium")),
		row(btn("🏷 Промо", "manage-category_promo")),
		row(btn("⭐️ Цена звезды", "manage-category_stars")),
		row(btn("↩️ Назад", "admin-panel")),
	)
}

// manageCategoryKeyboard — товары категории с кнопками правки.
func manageCategoryKeyboard(category string, products []catalog.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		text := fmt.Sprintf("%s — %s$", p.Label, common.FormatAmount(p.Price))
		rows = append(rows, row(btn(text, fmt.Sprintf("edit-product_%s_%s", category, p.Label))))
	}
	rows = append(rows,
		row(btn("➕ Добавить товар", "add-product_"+category)),
		row(btn("➖ Удалить товар", "delete-product-list_"+category)),
		row(btn("↩️ Назад", "manage-products")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// deleteProductKeyboard — выбор товара на удаление.
func deleteProductKeyboard(category string, products []catalog.Product) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, row(btn(p.Label, fmt.Sprintf("delete-product_%s_%s", category, p.Label))))
	}
	rows = append(rows, row(btn("↩️ Назад", "manage-category_"+category)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// manageCodesKeyboard — меню управления пулами кодов.
func manageCodesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("➕ Добавить коды", "add-codes-list")),
		row(btn("➖ Удалить код", "remove-codes-list")),
		row(btn("↩️ Назад", "admin-panel")),
	)
}

// codesLabelsKeyboard — выбор метки товара для операции с кодами.
func codesLabelsKeyboard(products []catalog.Product, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, row(btn(p.Label, prefix+p.Label)))
	}
	rows = append(rows, row(btn("↩️ Назад", "manage-codes")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// manageAdminsKeyboard — меню управления администраторами.
func manageAdminsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("➕ Добавить", "add-admin"), btn("➖ Удалить", "remove-admin")),
		row(btn("↩️ Назад", "admin-panel")),
	)
}

// paymentMethodKeyboard — выбор способа оплаты для правки реквизитов.
func paymentMethodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(btn("ByBit", "select-payment-method_bybit"), btn("CryptoBot", "select-payment-method_cryptobot")),
		row(btn("↩️ Назад", "admin-panel")),
	)
}

// checkReviewKeyboard — кнопки подтверждения чека ByBit в группе депозитов.
func checkReviewKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(
			btn("✅ Подтвердить", fmt.Sprintf("confirm_%d", userID)),
			btn("❌ Отклонить", fmt.Sprintf("reject_%d", userID)),
		),
	)
}

// orderReviewKeyboard — кнопки заказа премиума в группе заказов.
func orderReviewKeyboard(userID int64, orderID string, total decimal.Decimal) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		row(
			btn("✅ Выполнен", fmt.Sprintf("order-completed_%d_%s", userID, orderID)),
			btn("❌ Отклонить", fmt.Sprintf("order-declined_%d_%s_%s", userID, orderID, total.String())),
		),
	)
}
