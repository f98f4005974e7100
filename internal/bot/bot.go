// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go держит polling-цикл и маршрутизацию: callback-кнопки разбираются
// в типизированную команду, текст маршрутизируется по состоянию сессии.
package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/bot/middleware"
	"ronid.ru/shop-bot/internal/clients"
	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/config"
	"ronid.ru/shop-bot/internal/features/admin"
	"ronid.ru/shop-bot/internal/features/catalog"
	"ronid.ru/shop-bot/internal/features/deposits"
	"ronid.ru/shop-bot/internal/features/inventory"
	"ronid.ru/shop-bot/internal/features/orders"
	"ronid.ru/shop-bot/internal/features/session"
	"ronid.ru/shop-bot/internal/features/users"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	rateLimiter *middleware.RateLimiter
	sessions    *session.Manager

	users      *users.Ledger
	catalog    *catalog.Store
	inventory  *inventory.Store
	journal    *orders.Journal
	dispatcher *orders.Dispatcher
	desk       *deposits.Desk
	reconciler *deposits.Reconciler
	admins     *admin.Registry
	bybit      *clients.BybitClient

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	ledger *users.Ledger,
	store *catalog.Store,
	inv *inventory.Store,
	journal *orders.Journal,
	dispatcher *orders.Dispatcher,
	desk *deposits.Desk,
	reconciler *deposits.Reconciler,
	admins *admin.Registry,
	bybit *clients.BybitClient,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		sessions:    session.NewManager(),
		users:       ledger,
		catalog:     store,
		inventory:   inv,
		journal:     journal,
		dispatcher:  dispatcher,
		desk:        desk,
		reconciler:  reconciler,
		admins:      admins,
		bybit:       bybit,
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message
	middleware.LogMessage(message)

	// сообщения CryptoBot в депозитной группе — сверка переводов
	if message.Chat.ID == b.cfg.DepositGroupID && message.From.ID == b.cfg.CryptoBotID {
		b.handleCryptoBotMessage(ctx, message)
		return
	}

	// всё остальное бот слушает только в личке
	if !message.Chat.IsPrivate() {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	if b.users.EnsureUser(ctx, chatID) {
		log.WithField("user_id", chatID).Info("Новый пользователь")
	}

	// сессия сериализует обработку сообщений одного пользователя
	s := b.sessions.Acquire(chatID)
	defer b.sessions.Release(s)

	if message.IsCommand() {
		b.handleCommand(ctx, s, message)
		return
	}
	b.handleText(ctx, s, message)
}

// handleCommand обрабатывает слэш-команды.
func (b *Bot) handleCommand(ctx context.Context, s *session.Session, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		s.Reset()
		b.sendMainMessage(chatID, message.From)

	case "login":
		if !b.admins.IsAdmin(chatID) {
			return
		}
		password := strings.TrimSpace(message.CommandArguments())
		if password == "" {
			s.State = session.AwaitingPassword{}
			b.sendText(chatID, "Введите пароль администратора.")
			return
		}
		b.handlePassword(ctx, s, chatID, password)
	}
}

// handleCallback обрабатывает нажатие inline-кнопки.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	middleware.LogCallback(query)
	b.answerCallback(query.ID)

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	cmd := ParseCommand(query.Data)

	// кнопки из групп (чеки, заказы) доступны только админам
	if !query.Message.Chat.IsPrivate() {
		if b.admins.IsAdmin(query.From.ID) {
			b.handleGroupCallback(ctx, query, cmd)
		}
		return
	}

	b.users.EnsureUser(ctx, chatID)
	s := b.sessions.Acquire(chatID)
	defer b.sessions.Release(s)

	b.routeCallback(ctx, s, query, cmd)
}

// handleGroupCallback — кнопки в группах депозитов и заказов.
func (b *Bot) handleGroupCallback(ctx context.Context, query *tgbotapi.CallbackQuery, cmd Command) {
	switch cmd.Kind {
	case CmdConfirmCheck:
		b.onConfirmCheck(ctx, query, cmd.UserID)
	case CmdRejectCheck:
		b.onRejectCheck(ctx, query, cmd.UserID)
	case CmdOrderCompleted:
		b.onOrderCompleted(ctx, query, cmd)
	case CmdOrderDeclined:
		b.onOrderDeclined(ctx, query, cmd)
	}
}

// routeCallback — кнопки в личке пользователя.
func (b *Bot) routeCallback(ctx context.Context, s *session.Session, query *tgbotapi.CallbackQuery, cmd Command) {
	chatID := query.Message.Chat.ID

	switch cmd.Kind {
	case CmdReturn, CmdMainMessage:
		s.Reset()
		b.sendMainMessage(chatID, query.From)
	case CmdCatalog:
		b.editKeyboard(chatID, query.Message.MessageID, "Выберите раздел:", catalogKeyboard())
	case CmdPubg:
		b.editKeyboard(chatID, query.Message.MessageID, "PUBG Mobile:", pubgKeyboard())
	case CmdTelegram:
		b.editKeyboard(chatID, query.Message.MessageID, "Telegram:", telegramKeyboard())
	case CmdOpenShop:
		b.onOpenShop(ctx, s, chatID, query.Message.MessageID, cmd.ShopType)
	case CmdMyProfile:
		b.onMyProfile(chatID, query.From)
	case CmdMyOrders:
		b.onMyOrders(chatID)
	case CmdLanguage:
		b.editKeyboard(chatID, query.Message.MessageID, "Выберите язык:", languageKeyboard())
	case CmdSetLang:
		b.users.SetLanguage(ctx, chatID, cmd.Lang)
		b.sendMainMessage(chatID, query.From)
	case CmdAddToCart:
		b.onAddToCart(s, chatID, query.Message.MessageID, cmd)
	case CmdCartClear:
		s.Cart.Clear()
		b.onOpenShop(ctx, s, chatID, query.Message.MessageID, cmd.ShopType)
	case CmdCartBuyCodes:
		b.onBuyCodes(ctx, s, chatID, query.From)
	case CmdCartBuyWithID:
		b.onBuyWithID(s, chatID)
	case CmdBuyPremium:
		b.onBuyPremium(s, chatID, cmd)
	case CmdDeposit:
		b.editKeyboard(chatID, query.Message.MessageID, "Выберите способ пополнения:", depositKeyboard())
	case CmdDepositBybit:
		s.State = session.AwaitingDeposit{}
		b.sendText(chatID, "Введите сумму пополнения в USDT:")
	case CmdDepositCryptobot:
		b.onDepositCryptobot(ctx, s, chatID, query.From)

	default:
		b.routeAdminCallback(ctx, s, query, cmd)
	}
}

// handleText маршрутизирует текст по состоянию сессии.
func (b *Bot) handleText(ctx context.Context, s *session.Session, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch st := s.State.(type) {
	case session.Browsing:
		// вне сценария текст не ожидается

	case session.AwaitingPassword:
		b.handlePassword(ctx, s, chatID, text)

	case session.AwaitingPubgID:
		b.onPubgIDEntered(ctx, s, chatID, message.From, text)
	case session.AwaitingPremiumTag:
		b.onPremiumTagEntered(ctx, s, chatID, message.From, st, text)
	case session.AwaitingStarsAmount:
		b.onStarsAmountEntered(s, chatID, text)
	case session.AwaitingUserTag:
		b.onStarsTagEntered(ctx, s, chatID, message.From, st, text)

	case session.AwaitingDeposit:
		b.onDepositAmountEntered(ctx, s, chatID, message.From, text)
	case session.AwaitingReceipt:
		b.onReceiptReceived(ctx, s, chatID, message, st)

	case session.AwaitingProductPriceChange:
		b.onProductPriceEntered(ctx, s, chatID, st, text)
	case session.AwaitingNewProductLabel:
		b.onNewProductLabelEntered(s, chatID, st, text)
	case session.AwaitingNewProductPrice:
		b.onNewProductPriceEntered(ctx, s, chatID, st, text)
	case session.AwaitingStarsPrice:
		b.onStarsPriceEntered(ctx, s, chatID, text)
	case session.AwaitingCredentials:
		b.onCredentialsEntered(ctx, s, chatID, st, text)
	case session.AwaitingBalanceUser:
		b.onBalanceUserEntered(s, chatID, text)
	case session.AwaitingBalanceAmount:
		b.onBalanceAmountEntered(ctx, s, chatID, st, text)
	case session.AwaitingBroadcast:
		b.onBroadcastEntered(ctx, s, chatID, text)
	case session.AwaitingAdminAdd:
		b.onAdminAddEntered(ctx, s, chatID, text)
	case session.AwaitingAdminRemove:
		b.onAdminRemoveEntered(ctx, s, chatID, text)
	case session.AwaitingCodes:
		b.onCodesEntered(ctx, s, chatID, st, text)
	case session.AwaitingCodeDelete:
		b.onCodeDeleteEntered(ctx, s, chatID, st, text)
	}
}

// --- Утилиты отправки ---

// sendText отправляет простое текстовое сообщение.
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.handleSendError(chatID, err)
	}
}

// sendMarkdown отправляет сообщение с Markdown-разметкой. Используется
// для выдачи кодов: обратные кавычки дают моноширинный текст с
// копированием по нажатию.
func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.handleSendError(chatID, err)
	}
}

// sendMarkdownWithKeyboard — как sendMarkdown, но с inline-клавиатурой.
func (b *Bot) sendMarkdownWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.handleSendError(chatID, err)
	}
}

// sendWithKeyboard отправляет сообщение с inline-клавиатурой.
func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.handleSendError(chatID, err)
	}
}

// editKeyboard заменяет текст и клавиатуру существующего сообщения.
// Если редактирование не удалось (сообщение старое), шлёт новое.
func (b *Bot) editKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	if _, err := b.api.Send(edit); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Debug("Не удалось отредактировать сообщение")
		b.sendWithKeyboard(chatID, text, kb)
	}
}

// sendMainMessage показывает главное меню.
func (b *Bot) sendMainMessage(chatID int64, from *tgbotapi.User) {
	balance := b.users.Balance(chatID)
	text := "🏠 Главное меню\n\n" +
		"👤 " + common.UserTag(from.UserName, from.FirstName) + "\n" +
		"💰 Баланс: " + common.FormatAmount(balance) + "$"
	b.sendWithKeyboard(chatID, text, mainKeyboard(b.admins.IsAdmin(chatID)))
}

// SendMessageToUser отправляет текст указанному чату. Используется
// планировщиком и другими внешними компонентами.
func (b *Bot) SendMessageToUser(chatID int64, text string) {
	b.sendText(chatID, text)
}

// answerCallback гасит "часики" на кнопке.
func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

// handleSendError разбирает ошибку отправки. Код 403 означает, что
// пользователь заблокировал бота — его состояние вычищается.
func (b *Bot) handleSendError(chatID int64, err error) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		b.users.Purge(context.Background(), chatID)
		b.sessions.Drop(chatID)
		return
	}
	log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
}
