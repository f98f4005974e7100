// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование времени и идентификаторов.
package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PluralizeCodes возвращает правильную форму слова «код» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "код" (1, 21, 31, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "кода" (2, 3, 4, 22, ...)
//   - Остальные случаи → "кодов" (0, 5-20, 25-30, ...)
func PluralizeCodes(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "код"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "кода"
	}
	return "кодов"
}

// PluralizeItems возвращает правильную форму слова «товар».
func PluralizeItems(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "товар"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "товара"
	}
	return "товаров"
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется для отображения дат заказов и депозитов.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}

// NewOrderID генерирует сортируемый по времени номер заказа:
// миллисекунды в base36 верхним регистром плюс последние 4 цифры userID.
// Пример: "MB4QZ1K03525".
func NewOrderID(userID int64, now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strconv.FormatInt(userID, 10)
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return ts + suffix
}

// UserTag возвращает отображаемое имя пользователя: @username,
// а если его нет — имя из профиля.
func UserTag(username, firstName string) string {
	if username != "" {
		return "@" + username
	}
	if firstName != "" {
		return firstName
	}
	return "Пользователь"
}

// FullName склеивает имя и фамилию, пропуская пустые части.
func FullName(firstName, lastName string) string {
	if lastName == "" {
		return firstName
	}
	return fmt.Sprintf("%s %s", firstName, lastName)
}
