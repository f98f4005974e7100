// admin_handlers.go — админ-панель: вход по паролю, балансы, товары,
// коды, реквизиты, администраторы и рассылка.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/catalog"
	"ronid.ru/shop-bot/internal/features/session"
)

// requireAdmin проверяет право на админ-действие. Админ без активной
// сессии получает напоминание про /login.
func (b *Bot) requireAdmin(chatID int64) bool {
	if !b.admins.IsAdmin(chatID) {
		return false
	}
	if !b.admins.HasActiveSession(chatID) {
		b.sendText(chatID, "Сессия истекла. Войдите заново: /login <пароль>")
		return false
	}
	return true
}

// handlePassword — ввод пароля после /login.
func (b *Bot) handlePassword(ctx context.Context, s *session.Session, chatID int64, password string) {
	s.State = session.Browsing{}

	if !b.admins.IsAdmin(chatID) {
		return
	}
	switch err := b.admins.VerifyPassword(chatID, password); {
	case err == nil:
		b.sendWithKeyboard(chatID, "⚙️ Админ-панель", adminKeyboard())
	case errors.Is(err, common.ErrTooManyAttempts):
		b.sendText(chatID, "Слишком много попыток. Подождите час.")
	default:
		b.sendText(chatID, "Неверный пароль.")
	}
}

// routeAdminCallback — кнопки админ-панели.
func (b *Bot) routeAdminCallback(ctx context.Context, s *session.Session, query *tgbotapi.CallbackQuery, cmd Command) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if !b.requireAdmin(chatID) {
		return
	}

	switch cmd.Kind {
	case CmdAdminPanel:
		s.Reset()
		b.editKeyboard(chatID, messageID, "⚙️ Админ-панель", adminKeyboard())

	case CmdManageBalances:
		s.State = session.AwaitingBalanceUser{}
		b.sendWithKeyboard(chatID, "Введите ID пользователя:", returnKeyboard())

	case CmdManageProducts:
		b.editKeyboard(chatID, messageID, "Выберите категорию:", manageProductsKeyboard())

	case CmdManageCategory:
		if cmd.Category == "stars" {
			s.State = session.AwaitingStarsPrice{}
			b.sendWithKeyboard(chatID, fmt.Sprintf("Текущая цена звезды: %s$\nВведите новую цену:",
				common.FormatAmount(b.catalog.StarsPrice())), returnKeyboard())
			return
		}
		products := b.catalog.Products(catalog.Category(cmd.Category))
		b.editKeyboard(chatID, messageID, "Товары категории:", manageCategoryKeyboard(cmd.Category, products))

	case CmdEditProduct:
		p, err := b.catalog.Find(catalog.Category(cmd.Category), cmd.Label)
		if err != nil {
			b.sendText(chatID, "Товар не найден.")
			return
		}
		s.State = session.AwaitingProductPriceChange{Category: cmd.Category, Label: cmd.Label}
		b.sendWithKeyboard(chatID, fmt.Sprintf("«%s», текущая цена %s$.\nВведите новую цену:",
			p.Label, common.FormatAmount(p.Price)), returnKeyboard())

	case CmdDeleteProductList:
		products := b.catalog.Products(catalog.Category(cmd.Category))
		b.editKeyboard(chatID, messageID, "Какой товар удалить?", deleteProductKeyboard(cmd.Category, products))

	case CmdDeleteProduct:
		if err := b.catalog.RemoveProduct(ctx, catalog.Category(cmd.Category), cmd.Label); err != nil {
			b.sendText(chatID, "Товар не найден.")
			return
		}
		products := b.catalog.Products(catalog.Category(cmd.Category))
		b.editKeyboard(chatID, messageID, "Товар удалён.", manageCategoryKeyboard(cmd.Category, products))

	case CmdAddProduct:
		s.State = session.AwaitingNewProductLabel{Category: cmd.Category}
		b.sendWithKeyboard(chatID, "Введите метку нового товара:", returnKeyboard())

	case CmdManageAdmins:
		var sb strings.Builder
		sb.WriteString("👥 Администраторы:\n")
		for _, a := range b.admins.All() {
			sb.WriteString(fmt.Sprintf("• %d\n", a.ChatID))
		}
		b.editKeyboard(chatID, messageID, sb.String(), manageAdminsKeyboard())

	case CmdAddAdmin:
		s.State = session.AwaitingAdminAdd{}
		b.sendWithKeyboard(chatID, "Введите chat ID нового администратора:", returnKeyboard())

	case CmdRemoveAdmin:
		s.State = session.AwaitingAdminRemove{}
		b.sendWithKeyboard(chatID, "Введите chat ID удаляемого администратора:", returnKeyboard())

	case CmdSendBroadcast:
		s.State = session.AwaitingBroadcast{}
		b.sendWithKeyboard(chatID, "Введите текст рассылки:", returnKeyboard())

	case CmdManageCodes:
		var sb strings.Builder
		sb.WriteString("🔑 Наличие кодов:\n")
		for _, p := range b.catalog.Products(catalog.CategoryCodes) {
			n := b.inventory.Available(p.Label)
			sb.WriteString(fmt.Sprintf("• %s: %d %s\n", p.Label, n, common.PluralizeCodes(n)))
		}
		b.editKeyboard(chatID, messageID, sb.String(), manageCodesKeyboard())

	case CmdAddCodesList:
		b.editKeyboard(chatID, messageID, "К какому товару добавить коды?",
			codesLabelsKeyboard(b.catalog.Products(catalog.CategoryCodes), "add-codes_"))

	case CmdRemoveCodesList:
		b.editKeyboard(chatID, messageID, "У какого товара удалить код?",
			codesLabelsKeyboard(b.catalog.Products(catalog.CategoryCodes), "remove-codes_"))

	case CmdAddCodes:
		s.State = session.AwaitingCodes{Label: cmd.Label}
		b.sendWithKeyboard(chatID, "Пришлите коды, по одному на строку:", returnKeyboard())

	case CmdRemoveCodes:
		codes := b.inventory.Unused(cmd.Label)
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Неиспользованные коды «%s» (%d):\n", cmd.Label, len(codes)))
		for _, c := range codes {
			sb.WriteString("`" + c.Value + "`\n")
		}
		s.State = session.AwaitingCodeDelete{Label: cmd.Label}
		b.sendMarkdownWithKeyboard(chatID, sb.String()+"\nВведите код, который нужно удалить:", returnKeyboard())

	case CmdEditPaymentDetails:
		details := b.desk.Details()
		text := fmt.Sprintf("💳 Реквизиты:\nByBit: %s\nCryptoBot: %s\n\nЧто изменить?", details.ByBit, details.CryptoBot)
		b.editKeyboard(chatID, messageID, text, paymentMethodKeyboard())

	case CmdSelectPaymentMethod:
		s.State = session.AwaitingCredentials{Method: cmd.Method}
		b.sendWithKeyboard(chatID, "Введите новые реквизиты:", returnKeyboard())
	}
}

// --- Текстовые шаги админ-сценариев ---

func (b *Bot) onProductPriceEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingProductPriceChange, text string) {
	price, err := common.ParsePositiveAmount(text)
	if err != nil {
		b.sendText(chatID, "Введите цену числом, например 4.5")
		return
	}
	if err := b.catalog.SetPrice(ctx, catalog.Category(st.Category), st.Label, price); err != nil {
		b.sendText(chatID, "Товар не найден.")
		s.Reset()
		return
	}
	s.Reset()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Цена «%s» теперь %s$.", st.Label, common.FormatAmount(price)), adminKeyboard())
}

func (b *Bot) onNewProductLabelEntered(s *session.Session, chatID int64, st session.AwaitingNewProductLabel, text string) {
	// подчёркивание — разделитель в данных кнопок
	if text == "" || strings.Contains(text, "_") {
		b.sendText(chatID, "Метка не должна быть пустой или содержать подчёркивания.")
		return
	}
	s.State = session.AwaitingNewProductPrice{Category: st.Category, Label: text}
	b.sendText(chatID, "Введите цену товара:")
}

func (b *Bot) onNewProductPriceEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingNewProductPrice, text string) {
	price, err := common.ParsePositiveAmount(text)
	if err != nil {
		b.sendText(chatID, "Введите цену числом, например 4.5")
		return
	}
	if err := b.catalog.AddProduct(ctx, catalog.Category(st.Category), catalog.Product{Label: st.Label, Price: price}); err != nil {
		b.sendText(chatID, "Не удалось добавить товар.")
		s.Reset()
		return
	}
	s.Reset()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Товар «%s» за %s$ добавлен.", st.Label, common.FormatAmount(price)), adminKeyboard())
}

func (b *Bot) onStarsPriceEntered(ctx context.Context, s *session.Session, chatID int64, text string) {
	price, err := common.ParsePositiveAmount(text)
	if err != nil {
		b.sendText(chatID, "Введите цену числом, например 0.02")
		return
	}
	b.catalog.SetStarsPrice(ctx, price)
	s.Reset()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Цена звезды теперь %s$.", common.FormatAmount(price)), adminKeyboard())
}

func (b *Bot) onCredentialsEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingCredentials, text string) {
	if text == "" {
		b.sendText(chatID, "Реквизиты не должны быть пустыми.")
		return
	}
	b.desk.SetDetail(ctx, st.Method, text)
	s.Reset()
	b.sendWithKeyboard(chatID, "Реквизиты обновлены.", adminKeyboard())
}

func (b *Bot) onBalanceUserEntered(s *session.Session, chatID int64, text string) {
	userID, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.sendText(chatID, "Введите ID числом.")
		return
	}
	if !b.users.Exists(userID) {
		b.sendText(chatID, "Пользователь не найден.")
		return
	}
	s.State = session.AwaitingBalanceAmount{UserID: userID}
	b.sendText(chatID, fmt.Sprintf("Текущий баланс: %s$\nВведите новый баланс:",
		common.FormatAmount(b.users.Balance(userID))))
}

func (b *Bot) onBalanceAmountEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingBalanceAmount, text string) {
	amount, err := common.ParseAmount(text)
	if err != nil || amount.IsNegative() {
		b.sendText(chatID, "Введите неотрицательное число.")
		return
	}
	if err := b.users.SetBalance(ctx, st.UserID, amount); err != nil {
		b.sendText(chatID, "Не удалось изменить баланс.")
		s.Reset()
		return
	}
	log.WithFields(log.Fields{"admin": chatID, "user_id": st.UserID, "balance": amount}).Info("Баланс изменён админом")
	s.Reset()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Баланс пользователя %d теперь %s$.", st.UserID, common.FormatAmount(amount)), adminKeyboard())
	b.sendText(st.UserID, fmt.Sprintf("Ваш баланс изменён администратором: %s$", common.FormatAmount(amount)))
}

func (b *Bot) onAdminAddEntered(ctx context.Context, s *session.Session, chatID int64, text string) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.sendText(chatID, "Введите chat ID числом.")
		return
	}
	s.Reset()
	if err := b.admins.Add(ctx, id); err != nil {
		if errors.Is(err, common.ErrAdminExists) {
			b.sendWithKeyboard(chatID, "Такой администратор уже есть.", adminKeyboard())
			return
		}
		b.sendWithKeyboard(chatID, "Не удалось добавить администратора.", adminKeyboard())
		return
	}
	b.sendWithKeyboard(chatID, fmt.Sprintf("Администратор %d добавлен.", id), adminKeyboard())
}

func (b *Bot) onAdminRemoveEntered(ctx context.Context, s *session.Session, chatID int64, text string) {
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		b.sendText(chatID, "Введите chat ID числом.")
		return
	}
	s.Reset()
	switch err := b.admins.Remove(ctx, id); {
	case err == nil:
		b.sendWithKeyboard(chatID, fmt.Sprintf("Администратор %d удалён.", id), adminKeyboard())
	case errors.Is(err, common.ErrMainAdminProtected):
		b.sendWithKeyboard(chatID, "Главного администратора удалить нельзя.", adminKeyboard())
	default:
		b.sendWithKeyboard(chatID, "Такого администратора нет.", adminKeyboard())
	}
}

func (b *Bot) onCodesEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingCodes, text string) {
	var values []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			values = append(values, line)
		}
	}
	if len(values) == 0 {
		b.sendText(chatID, "Пришлите коды, по одному на строку.")
		return
	}

	added := b.inventory.Add(ctx, st.Label, values)
	s.Reset()
	n := len(added)
	b.sendWithKeyboard(chatID, fmt.Sprintf("Добавлено %d %s к «%s». Всего в наличии: %d.",
		n, common.PluralizeCodes(n), st.Label, b.inventory.Available(st.Label)), adminKeyboard())
}

func (b *Bot) onCodeDeleteEntered(ctx context.Context, s *session.Session, chatID int64, st session.AwaitingCodeDelete, text string) {
	if err := b.inventory.DeleteByValue(ctx, st.Label, text); err != nil {
		b.sendText(chatID, "Такого кода нет. Проверьте и введите ещё раз:")
		return
	}
	s.Reset()
	b.sendWithKeyboard(chatID, fmt.Sprintf("Код удалён. Осталось: %d.", b.inventory.Available(st.Label)), adminKeyboard())
}
