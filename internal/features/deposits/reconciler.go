// reconciler.go — сверка переводов CryptoBot. Бот читает сообщения
// CryptoBot в депозитной группе, достаёт из текста плательщика и сумму
// и начисляет деньги тому, кто заранее назвал это имя в заявке.
package deposits

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// transferMarker — глагол из сообщения CryptoBot:
// "<имя> отправил(а) 🪙 12.5 USDT".
const transferMarker = "отправил(а)"

// ParseTransfer разбирает текст сообщения CryptoBot о переводе.
// Возвращает имя плательщика и сумму. Формат жёсткий: после маркера
// идёт монета 🪙, затем сумма; запятая в сумме допускается.
func ParseTransfer(text string) (payer string, amount decimal.Decimal, err error) {
	tokens := strings.Fields(text)

	marker := -1
	for i, tok := range tokens {
		if tok == transferMarker {
			marker = i
			break
		}
	}
	if marker <= 0 || marker+2 >= len(tokens) {
		return "", decimal.Zero, common.ErrParseFailure
	}
	if tokens[marker+1] != "🪙" {
		return "", decimal.Zero, common.ErrParseFailure
	}

	amount, err = common.ParsePositiveAmount(tokens[marker+2])
	if err != nil {
		return "", decimal.Zero, common.ErrParseFailure
	}

	payer = strings.Join(tokens[:marker], " ")
	return payer, amount, nil
}

// Crediter начисляет деньги на баланс (реализуется users.Ledger).
type Crediter interface {
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// Reconciler сопоставляет переводы CryptoBot с заявками пользователей.
type Reconciler struct {
	desk     *Desk
	crediter Crediter
}

// NewReconciler создаёт сверку поверх стола пополнений.
func NewReconciler(desk *Desk, crediter Crediter) *Reconciler {
	return &Reconciler{desk: desk, crediter: crediter}
}

// Result — итог сверки одного сообщения.
type Result struct {
	Deposit    CryptoDeposit
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// Process разбирает сообщение и, если нашлась заявка с таким плательщиком,
// начисляет сумму её владельцу. Заявка забирается до начисления, поэтому
// одно сообщение не может быть начислено дважды.
func (r *Reconciler) Process(ctx context.Context, text string) (Result, error) {
	payer, amount, err := ParseTransfer(text)
	if err != nil {
		return Result{}, err
	}

	dep, err := r.desk.TakeDepositByPayer(ctx, payer)
	if err != nil {
		log.WithError(err).WithField("payer", payer).Warn("Перевод не сверен")
		return Result{}, err
	}

	newBalance, err := r.crediter.Credit(ctx, dep.UserID, amount)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": dep.UserID,
			"amount":  amount,
		}).Error("Начисление по переводу не прошло")
		return Result{}, err
	}

	log.WithFields(log.Fields{
		"user_id": dep.UserID,
		"payer":   payer,
		"amount":  amount,
	}).Info("Перевод сверен и начислен")
	return Result{Deposit: dep, Amount: amount, NewBalance: newBalance}, nil
}
