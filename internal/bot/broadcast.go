// broadcast.go — рассылка сообщения всем пользователям. Отправка идёт
// с паузами, чтобы не упереться в лимиты Telegram; при 429 бот ждёт
// указанное время и повторяет, при 403 вычищает заблокировавшего.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/features/session"
)

const broadcastPause = 100 * time.Millisecond

// onBroadcastEntered запускает рассылку в фоне, чтобы не держать сессию
// админа на тысячах отправок.
func (b *Bot) onBroadcastEntered(ctx context.Context, s *session.Session, chatID int64, text string) {
	if text == "" {
		b.sendText(chatID, "Текст рассылки пуст.")
		return
	}
	s.Reset()

	ids := b.users.AllIDs()
	b.sendText(chatID, fmt.Sprintf("Рассылка на %d пользователей запущена.", len(ids)))

	go func() {
		sent, blocked := b.broadcast(ctx, ids, text)
		b.sendWithKeyboard(chatID, fmt.Sprintf("📣 Рассылка завершена.\nДоставлено: %d\nЗаблокировали бота: %d",
			sent, blocked), adminKeyboard())
	}()
}

// broadcast рассылает текст по списку пользователей.
func (b *Bot) broadcast(ctx context.Context, ids []int64, text string) (sent, blocked int) {
	for _, id := range ids {
		select {
		case <-ctx.Done():
			log.Info("Рассылка прервана (ctx done)")
			return sent, blocked
		default:
		}

		switch b.broadcastOne(ctx, id, text) {
		case broadcastSent:
			sent++
		case broadcastBlocked:
			blocked++
		}
		time.Sleep(broadcastPause)
	}

	log.WithFields(log.Fields{"sent": sent, "blocked": blocked}).Info("Рассылка завершена")
	return sent, blocked
}

type broadcastResult int

const (
	broadcastSent broadcastResult = iota
	broadcastBlocked
	broadcastFailed
)

// broadcastOne отправляет сообщение одному пользователю,
// один повтор при 429.
func (b *Bot) broadcastOne(ctx context.Context, userID int64, text string) broadcastResult {
	for attempt := 0; attempt < 2; attempt++ {
		_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
		if err == nil {
			return broadcastSent
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code == 403 {
				// пользователь заблокировал бота
				b.users.Purge(ctx, userID)
				b.sessions.Drop(userID)
				return broadcastBlocked
			}
			if apiErr.Code == 429 && apiErr.ResponseParameters.RetryAfter > 0 {
				time.Sleep(time.Duration(apiErr.ResponseParameters.RetryAfter) * time.Second)
				continue
			}
		}

		log.WithError(err).WithField("user_id", userID).Debug("Рассылка: не доставлено")
		return broadcastFailed
	}
	return broadcastFailed
}
