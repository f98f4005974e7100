// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасная уборка просроченных
// пополнений с отчётом админам.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
	"ronid.ru/shop-bot/internal/features/deposits"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	desk       *deposits.Desk
	pendingTTL time.Duration
	sendFunc   func(chatID int64, text string)
	opsChatID  int64
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(desk *deposits.Desk, pendingTTL time.Duration, opsChatID int64, sendFunc func(chatID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		desk:       desk,
		pendingTTL: pendingTTL,
		sendFunc:   sendFunc,
		opsChatID:  opsChatID,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежечасная уборка просроченных чеков и заявок
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Уборка просроченных пополнений")
		s.expireStale(ctx)
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// expireStale убирает просроченные пополнения и сообщает о них админам —
// пользователь ждал зачисления, молча забыть про него нельзя.
func (s *Scheduler) expireStale(ctx context.Context) {
	checks, depositsGone := s.desk.ExpireStale(ctx, s.pendingTTL)
	if len(checks) == 0 && len(depositsGone) == 0 {
		return
	}

	text := "🧹 Просроченные пополнения убраны:\n"
	for _, c := range checks {
		text += fmt.Sprintf("• чек ByBit: id %d, %s$, от %s\n",
			c.UserID, common.FormatAmount(c.Amount), common.FormatDateTime(c.CreatedAt))
	}
	for _, d := range depositsGone {
		text += fmt.Sprintf("• заявка CryptoBot: id %d, «%s», от %s\n",
			d.UserID, d.PayerName, common.FormatDateTime(d.CreatedAt))
	}
	s.sendFunc(s.opsChatID, text)
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
