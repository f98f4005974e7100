// shop_handlers.go — пользовательские сценарии магазина: каталог, корзина,
// покупки, профиль и история заказов.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/catalog"
	"ronid.ru/shop-bot/internal/features/orders"
	"ronid.ru/shop-bot/internal/features/session"
)

// onOpenShop открывает раздел магазина. Звёзды — отдельный сценарий
// без корзины: спрашиваем количество сразу.
func (b *Bot) onOpenShop(ctx context.Context, s *session.Session, chatID int64, messageID int, shopType string) {
	if shopType == "stars" {
		starsPrice := b.catalog.StarsPrice()
		if !starsPrice.IsPositive() {
			b.sendText(chatID, "Продажа звёзд временно недоступна.")
			return
		}
		s.State = session.AwaitingStarsAmount{}
		b.sendText(chatID, fmt.Sprintf("Цена одной звезды: %s$\nВведите количество звёзд:", common.FormatAmount(starsPrice)))
		return
	}

	products := b.catalog.Products(catalog.Category(shopType))
	if len(products) == 0 {
		b.sendText(chatID, "В этом разделе пока пусто.")
		return
	}

	text := b.shopCaption(s, shopType)
	b.editKeyboard(chatID, messageID, text, shopKeyboard(products, shopType, s.Cart.Len()))
}

// shopCaption — заголовок раздела с состоянием корзины.
func (b *Bot) shopCaption(s *session.Session, shopType string) string {
	header := "Выберите товар:"
	if shopType == "id" {
		header = "Выберите товар (активация по вашему игровому ID):"
	}
	if s.Cart.Len() == 0 {
		return header
	}
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n🛒 Корзина:\n")
	for _, it := range s.Cart.Items() {
		sb.WriteString(fmt.Sprintf("• %s — %s$\n", it.Label, common.FormatAmount(it.Price)))
	}
	sb.WriteString(fmt.Sprintf("\nИтого: %s$", common.FormatAmount(s.Cart.Total())))
	return sb.String()
}

// onAddToCart кладёт товар в корзину и перерисовывает раздел.
func (b *Bot) onAddToCart(s *session.Session, chatID int64, messageID int, cmd Command) {
	if _, err := b.catalog.Find(catalog.Category(cmd.ShopType), cmd.Label); err != nil {
		b.sendText(chatID, "Товар больше не продаётся.")
		return
	}
	s.Cart.Add(cmd.Label, cmd.Price)

	products := b.catalog.Products(catalog.Category(cmd.ShopType))
	b.editKeyboard(chatID, messageID, b.shopCaption(s, cmd.ShopType), shopKeyboard(products, cmd.ShopType, s.Cart.Len()))
}

// cartOrder собирает из корзины позиции заказа.
func cartOrder(s *session.Session) (items []orders.Item, counts map[string]int, labels []string) {
	for _, it := range s.Cart.Items() {
		items = append(items, orders.Item{Label: it.Label, Price: it.Price})
	}
	counts, labels = s.Cart.RequiredCounts()
	return items, counts, labels
}

// onBuyCodes — покупка кодов с выдачей в чат.
func (b *Bot) onBuyCodes(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User) {
	if s.Cart.Len() == 0 {
		b.sendText(chatID, "Корзина пуста.")
		return
	}

	items, counts, _ := cartOrder(s)
	total := s.Cart.Total()

	o, err := b.dispatcher.PurchaseCodes(ctx, chatID, common.UserTag(from.UserName, from.FirstName), items, counts, total)
	if err != nil {
		b.sendPurchaseError(chatID, err)
		return
	}
	s.Reset()

	b.sendMarkdown(chatID, deliveredCodesMessage(o))
	b.reportOrder(o, false)
}

// onBuyWithID запрашивает игровой ID перед активацией кодов.
func (b *Bot) onBuyWithID(s *session.Session, chatID int64) {
	if s.Cart.Len() == 0 {
		b.sendText(chatID, "Корзина пуста.")
		return
	}
	s.State = session.AwaitingPubgID{}
	b.sendWithKeyboard(chatID, "Введите ваш игровой ID:", returnKeyboard())
}

// onPubgIDEntered — активация кодов на введённый ID.
func (b *Bot) onPubgIDEntered(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User, pubgID string) {
	if pubgID == "" {
		b.sendText(chatID, "Введите игровой ID.")
		return
	}

	items, counts, labels := cartOrder(s)
	total := s.Cart.Total()

	o, err := b.dispatcher.PurchaseWithID(ctx, chatID, common.UserTag(from.UserName, from.FirstName), pubgID, items, counts, labels, total)
	if err != nil {
		if errors.Is(err, common.ErrRecipientNotFound) {
			// ID можно исправить и попробовать снова, корзина цела
			b.sendWithKeyboard(chatID, "Игрок с таким ID не найден. Проверьте ID и введите ещё раз:", returnKeyboard())
			return
		}
		if len(o.Codes) > 0 {
			// часть кодов успела активироваться — об этом узнают админы
			b.reportActivationFailure(chatID, pubgID, o.Codes, err)
		}
		s.Reset()
		b.sendPurchaseError(chatID, err)
		return
	}
	s.Reset()

	b.sendText(chatID, fmt.Sprintf("✅ Заказ %s выполнен! Коды активированы на аккаунт %s.", o.OrderID, pubgID))
	b.reportOrder(o, false)
}

// onBuyPremium запрашивает тег получателя премиума.
func (b *Bot) onBuyPremium(s *session.Session, chatID int64, cmd Command) {
	s.State = session.AwaitingPremiumTag{Label: cmd.Label, Price: cmd.Price}
	b.sendWithKeyboard(chatID, "Введите telegram-тег получателя (например, @username):", returnKeyboard())
}

// onPremiumTagEntered — покупка премиума: деньги списываются, заказ уходит
// админам на ручное исполнение.
func (b *Bot) onPremiumTagEntered(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User, st session.AwaitingPremiumTag, tag string) {
	if !strings.HasPrefix(tag, "@") || len(tag) < 2 {
		b.sendText(chatID, "Тег должен начинаться с @. Попробуйте ещё раз:")
		return
	}

	o, err := b.dispatcher.PurchasePremium(ctx, chatID, common.UserTag(from.UserName, from.FirstName), st.Label, tag, st.Price)
	if err != nil {
		b.sendPurchaseError(chatID, err)
		return
	}
	s.Reset()

	b.sendText(chatID, fmt.Sprintf("⏳ Заказ %s принят! Премиум «%s» будет выдан на %s после проверки.", o.OrderID, st.Label, tag))
	b.reportOrder(o, true)
}

// onStarsAmountEntered — ввод количества звёзд.
func (b *Bot) onStarsAmountEntered(s *session.Session, chatID int64, text string) {
	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil || amount <= 0 {
		b.sendText(chatID, "Введите целое число звёзд.")
		return
	}

	total := common.NormalizeMoney(b.catalog.StarsPrice().Mul(decimal.NewFromInt(amount)))
	s.State = session.AwaitingUserTag{StarsAmount: amount}
	b.sendWithKeyboard(chatID, fmt.Sprintf("%d ⭐️ = %s$\nВведите тег получателя (например, @username):", amount, common.FormatAmount(total)), returnKeyboard())
}

// onStarsTagEntered — отправка звёзд через Fragment.
func (b *Bot) onStarsTagEntered(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User, st session.AwaitingUserTag, tag string) {
	if !strings.HasPrefix(tag, "@") || len(tag) < 2 {
		b.sendText(chatID, "Тег должен начинаться с @. Попробуйте ещё раз:")
		return
	}

	total := common.NormalizeMoney(b.catalog.StarsPrice().Mul(decimal.NewFromInt(st.StarsAmount)))
	o, err := b.dispatcher.PurchaseStars(ctx, chatID, common.UserTag(from.UserName, from.FirstName), tag, st.StarsAmount, total)
	if err != nil {
		b.sendPurchaseError(chatID, err)
		return
	}
	s.Reset()

	b.sendText(chatID, fmt.Sprintf("✅ Заказ %s выполнен! %d ⭐️ отправлены на %s.", o.OrderID, st.StarsAmount, tag))
	b.reportOrder(o, false)
}

// onMyProfile показывает баланс и статистику покупок.
func (b *Bot) onMyProfile(chatID int64, from *tgbotapi.User) {
	balance := b.users.Balance(chatID)
	spent := b.journal.TotalSpent(chatID)
	count := len(b.journal.History(chatID))

	text := fmt.Sprintf("👤 %s\n\n💰 Баланс: %s$\n🧾 Заказов: %d\n💸 Потрачено: %s$",
		common.UserTag(from.UserName, from.FirstName),
		common.FormatAmount(balance), count, common.FormatAmount(spent))
	b.sendWithKeyboard(chatID, text, returnKeyboard())
}

// onMyOrders показывает последние заказы, новые первыми.
func (b *Bot) onMyOrders(chatID int64) {
	history := b.journal.History(chatID)
	if len(history) == 0 {
		b.sendWithKeyboard(chatID, "У вас пока нет заказов.", returnKeyboard())
		return
	}
	if len(history) > 10 {
		history = history[:10]
	}

	var sb strings.Builder
	sb.WriteString("📦 Ваши заказы:\n")
	for _, o := range history {
		sb.WriteString(fmt.Sprintf("\n%s %s — %s$ (%s)\n", statusEmoji(o.Status), o.OrderID,
			common.FormatAmount(o.Total), common.FormatDateTime(o.Timestamp)))
	}
	b.sendWithKeyboard(chatID, sb.String(), returnKeyboard())
}

// deliveredCodesMessage — текст с выданными кодами; коды в обратных
// кавычках, отправлять с Markdown-разметкой.
func deliveredCodesMessage(o orders.Order) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Заказ %s выполнен!\n\nВаши коды:\n", o.OrderID))
	for label, values := range o.Codes {
		n := len(values)
		sb.WriteString(fmt.Sprintf("\n%s (%d %s):\n", label, n, common.PluralizeCodes(n)))
		for _, v := range values {
			sb.WriteString("`" + v + "`\n")
		}
	}
	return sb.String()
}

func statusEmoji(s orders.Status) string {
	switch s {
	case orders.StatusConfirmed:
		return "✅"
	case orders.StatusDeclined:
		return "❌"
	default:
		return "⏳"
	}
}

// sendPurchaseError переводит ошибку покупки в сообщение пользователю.
func (b *Bot) sendPurchaseError(chatID int64, err error) {
	switch {
	case errors.Is(err, common.ErrInsufficientFunds):
		b.sendWithKeyboard(chatID, "Недостаточно средств на балансе. Пополните баланс и попробуйте снова.", returnKeyboard())
	case errors.Is(err, common.ErrInsufficientInventory):
		b.sendWithKeyboard(chatID, "Недостаточно кодов в наличии. Уменьшите количество или загляните позже.", returnKeyboard())
	default:
		log.WithError(err).WithField("chat_id", chatID).Error("Покупка не удалась")
		b.sendWithKeyboard(chatID, "Не удалось выполнить заказ. Попробуйте позже или напишите в поддержку.", returnKeyboard())
	}
}

// reportOrder отправляет заказ в группу заказов. Для ожидающих заказов
// добавляются кнопки выполнения и отклонения.
func (b *Bot) reportOrder(o orders.Order, pending bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 Заказ %s (%s)\n", o.OrderID, o.Type))
	sb.WriteString(fmt.Sprintf("👤 %s (id %d)\n", o.UserInfo.Username, o.UserID))
	sb.WriteString(fmt.Sprintf("💰 %s$ (баланс %s$ → %s$)\n",
		common.FormatAmount(o.Total),
		common.FormatAmount(o.UserInfo.BalanceBefore),
		common.FormatAmount(o.UserInfo.BalanceAfter)))
	for _, it := range o.Items {
		sb.WriteString(fmt.Sprintf("• %s — %s$\n", it.Label, common.FormatAmount(it.Price)))
	}
	if o.PubgID != "" {
		sb.WriteString("🆔 " + o.PubgID + "\n")
	}
	if o.Tag != "" {
		sb.WriteString("📨 " + o.Tag + "\n")
	}
	if o.StarsAmount > 0 {
		sb.WriteString(fmt.Sprintf("⭐️ %d\n", o.StarsAmount))
	}
	sb.WriteString("🕒 " + common.FormatDateTime(o.Timestamp))

	msg := tgbotapi.NewMessage(b.cfg.OrdersGroupID, sb.String())
	if pending {
		msg.ReplyMarkup = orderReviewKeyboard(o.UserID, o.OrderID, o.Total)
	}
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("order_id", o.OrderID).Error("Не удалось отправить заказ в группу")
	}
}

// reportActivationFailure сообщает админам о частично активированном заказе.
func (b *Bot) reportActivationFailure(userID int64, pubgID string, redeemed map[string][]string, cause error) {
	var sb strings.Builder
	sb.WriteString("⚠️ Активация прервана!\n")
	sb.WriteString(fmt.Sprintf("👤 id %d, игровой ID %s\n", userID, pubgID))
	sb.WriteString(fmt.Sprintf("Причина: %v\n\nУже активировано:\n", cause))
	for label, values := range redeemed {
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, strings.Join(values, ", ")))
	}
	sb.WriteString("\nДеньги не списаны, нужен ручной разбор.")
	b.sendText(b.cfg.OrdersGroupID, sb.String())
}
