// Package common — money.go содержит работу с денежными суммами.
// Баланс и цены хранятся как decimal.Decimal, но часть значений приходит
// из текста пользователя через float — для них нужна нормализация хвоста
// из девяток, который оставляет двоичное округление.
package common

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SafeRound убирает артефакт двоичного округления: если после второго знака
// дробной части идёт серия из четырёх и более девяток, число обрезается
// до двух знаков. Иначе возвращается как есть.
//
// Примеры:
//
//	SafeRound(12.499999990) → 12.49
//	SafeRound(12.5)         → 12.5
//	SafeRound(0.30000000000000004) → 0.30000000000000004 (девяток нет)
func SafeRound(num float64) float64 {
	s := strconv.FormatFloat(num, 'f', 10, 64)

	dot := strings.IndexByte(s, '.')
	if dot == -1 {
		return num
	}
	frac := s[dot+1:]
	if len(frac) < 6 {
		return num
	}

	// серия девяток должна начинаться сразу после второго знака
	nines := 0
	for i := 2; i < len(frac) && frac[i] == '9'; i++ {
		nines++
	}
	if nines < 4 {
		return num
	}

	// обрезаем строку до двух знаков (именно обрезаем, не округляем)
	out, err := strconv.ParseFloat(s[:dot+3], 64)
	if err != nil {
		return num
	}
	return out
}

// ParseAmount разбирает денежную сумму из текста пользователя.
// Запятая принимается как десятичный разделитель. Результат
// нормализуется через SafeRound.
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(SafeRound(f)), nil
}

// ParsePositiveAmount — как ParseAmount, но сумма обязана быть больше нуля.
func ParsePositiveAmount(text string) (decimal.Decimal, error) {
	d, err := ParseAmount(text)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// NormalizeMoney приводит сумму к двум знакам с нормализацией девяток.
// Используется везде, где сумма получена из float-значений.
func NormalizeMoney(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(SafeRound(f)).Round(2)
}

// FormatAmount форматирует сумму для сообщений: без лишних нулей.
// Пример: FormatAmount(30.50) → "30.5", FormatAmount(60) → "60".
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
