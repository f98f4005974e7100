// deposit_handlers.go — пополнение баланса: ручные чеки ByBit с проверкой
// админом и автоматическая сверка переводов CryptoBot, плюс кнопки
// подтверждения чеков и заказов в служебных группах.
package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/session"
)

// onDepositCryptobot регистрирует заявку на пополнение через CryptoBot.
// Ключ сверки — имя пользователя, каким его напишет CryptoBot в группе.
func (b *Bot) onDepositCryptobot(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User) {
	details := b.desk.Details().CryptoBot
	if details == "" {
		b.sendText(chatID, "Пополнение через CryptoBot временно недоступно.")
		return
	}

	payerName := common.FullName(from.FirstName, from.LastName)
	s.Reset()

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Переведите нужную сумму чеком через CryptoBot:\n%s\n\n"+
			"Перевод должен прийти от имени «%s». Баланс пополнится автоматически после поступления.",
		details, payerName))
	msg.ReplyMarkup = returnKeyboard()
	sent, err := b.api.Send(msg)
	if err != nil {
		b.handleSendError(chatID, err)
		return
	}

	// номер сообщения с инструкцией запоминаем, чтобы убрать его после зачисления
	b.desk.TrackDeposit(ctx, chatID, payerName, sent.MessageID)
}

// onDepositAmountEntered — сумма пополнения ByBit введена.
func (b *Bot) onDepositAmountEntered(ctx context.Context, s *session.Session, chatID int64, from *tgbotapi.User, text string) {
	amount, err := common.ParsePositiveAmount(text)
	if err != nil {
		b.sendText(chatID, "Введите сумму числом, например 25.5")
		return
	}

	details := b.desk.Details()
	payerTag := common.UserTag(from.UserName, from.FirstName)

	// платёж создаётся заранее, чек пользователь пришлёт после перевода
	if _, err := b.bybit.CreatePayment(ctx, chatID, amount, details.ByBit); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось создать платёж ByBit")
	}

	s.State = session.AwaitingReceipt{Amount: amount, PayerTag: payerTag}
	b.sendWithKeyboard(chatID, fmt.Sprintf(
		"Переведите %s USDT на аккаунт ByBit:\n%s\n\nПосле перевода пришлите скриншот чека.",
		common.FormatAmount(amount), details.ByBit), returnKeyboard())
}

// onReceiptReceived — пользователь прислал чек ByBit. Чек пересылается
// в депозитную группу с кнопками подтверждения.
func (b *Bot) onReceiptReceived(ctx context.Context, s *session.Session, chatID int64, message *tgbotapi.Message, st session.AwaitingReceipt) {
	if len(message.Photo) == 0 && message.Document == nil {
		b.sendText(chatID, "Пришлите скриншот чека.")
		return
	}

	b.desk.CreateCheck(ctx, chatID, st.Amount, st.PayerTag)
	s.Reset()

	forward := tgbotapi.NewForward(b.cfg.DepositGroupID, chatID, message.MessageID)
	if _, err := b.api.Send(forward); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось переслать чек")
	}

	text := fmt.Sprintf("💰 Заявка на пополнение\n👤 %s (id %d)\n💵 %s USDT",
		st.PayerTag, chatID, common.FormatAmount(st.Amount))
	msg := tgbotapi.NewMessage(b.cfg.DepositGroupID, text)
	msg.ReplyMarkup = checkReviewKeyboard(chatID)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Error("Не удалось отправить заявку в депозитную группу")
	}

	b.sendWithKeyboard(chatID, "Чек отправлен на проверку. Баланс пополнится после подтверждения.", returnKeyboard())
}

// handleCryptoBotMessage — сообщение CryptoBot в депозитной группе.
// Любой неуспех сверки уходит админам: молча потерянный перевод хуже
// лишнего уведомления.
func (b *Bot) handleCryptoBotMessage(ctx context.Context, message *tgbotapi.Message) {
	res, err := b.reconciler.Process(ctx, message.Text)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrParseFailure):
			b.sendText(b.cfg.DepositGroupID, "⚠️ Сообщение не распознано как перевод — проверьте вручную:\n"+message.Text)
		case errors.Is(err, common.ErrNoMatchingDeposit):
			b.sendText(b.cfg.DepositGroupID, "⚠️ Перевод без заявки — нужен ручной разбор:\n"+message.Text)
		case errors.Is(err, common.ErrAmbiguousDeposit):
			b.sendText(b.cfg.DepositGroupID, "⚠️ Несколько заявок с таким отправителем — начисление остановлено, нужен ручной разбор:\n"+message.Text)
		}
		return
	}

	// инструкция больше не нужна, убираем её из чата пользователя
	if res.Deposit.InvoiceMessageID != 0 {
		del := tgbotapi.NewDeleteMessage(res.Deposit.UserID, res.Deposit.InvoiceMessageID)
		if _, err := b.api.Request(del); err != nil {
			log.WithError(err).Debug("Не удалось удалить сообщение с инструкцией")
		}
	}

	b.sendText(b.cfg.DepositGroupID, fmt.Sprintf("✅ Зачислено %s$ пользователю id %d",
		common.FormatAmount(res.Amount), res.Deposit.UserID))
	b.sendText(res.Deposit.UserID, fmt.Sprintf("✅ Баланс пополнен на %s$. Текущий баланс: %s$",
		common.FormatAmount(res.Amount), common.FormatAmount(res.NewBalance)))
}

// onConfirmCheck — админ подтвердил чек ByBit. Повторное нажатие — no-op.
func (b *Bot) onConfirmCheck(ctx context.Context, query *tgbotapi.CallbackQuery, userID int64) {
	check, ok := b.desk.TakeCheck(ctx, userID)
	if !ok {
		return
	}

	newBalance, err := b.users.Credit(ctx, userID, check.Amount)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Начисление по чеку не прошло")
		return
	}

	b.markGroupMessage(query, "✅ Подтверждено")
	b.sendText(userID, fmt.Sprintf("✅ Пополнение на %s$ подтверждено. Текущий баланс: %s$",
		common.FormatAmount(check.Amount), common.FormatAmount(newBalance)))
}

// onRejectCheck — админ отклонил чек ByBit.
func (b *Bot) onRejectCheck(ctx context.Context, query *tgbotapi.CallbackQuery, userID int64) {
	check, ok := b.desk.TakeCheck(ctx, userID)
	if !ok {
		return
	}

	b.markGroupMessage(query, "❌ Отклонено")
	b.sendText(userID, fmt.Sprintf("❌ Пополнение на %s$ отклонено. Если это ошибка, напишите в поддержку.",
		common.FormatAmount(check.Amount)))
}

// onOrderCompleted — админ выполнил заказ премиума.
func (b *Bot) onOrderCompleted(ctx context.Context, query *tgbotapi.CallbackQuery, cmd Command) {
	o, ok := b.dispatcher.ConfirmOrder(ctx, cmd.OrderID)
	if !ok {
		return
	}

	b.markGroupMessage(query, "✅ Выполнен")
	b.sendText(o.UserID, fmt.Sprintf("✅ Заказ %s выполнен!", o.OrderID))
}

// onOrderDeclined — админ отклонил заказ, деньги возвращаются.
func (b *Bot) onOrderDeclined(ctx context.Context, query *tgbotapi.CallbackQuery, cmd Command) {
	o, ok := b.dispatcher.DeclineOrder(ctx, cmd.OrderID)
	if !ok {
		return
	}

	b.markGroupMessage(query, "❌ Отклонён, деньги возвращены")
	b.sendText(o.UserID, fmt.Sprintf("❌ Заказ %s отклонён. %s$ возвращены на баланс.",
		o.OrderID, common.FormatAmount(o.Total)))
}

// markGroupMessage дописывает итог к сообщению в группе и убирает кнопки.
func (b *Bot) markGroupMessage(query *tgbotapi.CallbackQuery, mark string) {
	if query.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID,
		query.Message.Text+"\n\n"+mark)
	if _, err := b.api.Send(edit); err != nil {
		log.WithError(err).Debug("Не удалось отметить сообщение в группе")
	}
}
