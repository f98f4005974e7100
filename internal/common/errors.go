// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки баланса и покупок
var (
	// ErrInsufficientFunds — недостаточно средств на балансе
	ErrInsufficientFunds = errors.New("недостаточно средств на балансе")
	// ErrInsufficientInventory — не хватает кодов в пуле товара
	ErrInsufficientInventory = errors.New("недостаточно кодов для товара")
	// ErrProductNotFound — товар не найден в каталоге
	ErrProductNotFound = errors.New("товар не найден")
	// ErrInvalidAmount — некорректная сумма (не число, ноль или отрицательная)
	ErrInvalidAmount = errors.New("некорректная сумма")
	// ErrUserNotFound — пользователь не найден
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrCodeNotFound — код не найден в пуле
	ErrCodeNotFound = errors.New("код не найден")
)

// Ошибки внешних вызовов и хранилища
var (
	// ErrPersistence — запись заказа не удалась, операция не считается завершённой
	ErrPersistence = errors.New("ошибка записи в хранилище")
	// ErrRecipientNotFound — API активации не нашёл получателя (исправимо пользователем)
	ErrRecipientNotFound = errors.New("получатель не найден")
	// ErrRedemptionFailed — API активации вернул прочую ошибку
	ErrRedemptionFailed = errors.New("ошибка активации кода")
)

// Ошибки сверки депозитов
var (
	// ErrParseFailure — уведомление о платеже не распознано
	ErrParseFailure = errors.New("не удалось разобрать уведомление о платеже")
	// ErrNoMatchingDeposit — нет ожидающего депозита с таким отправителем
	ErrNoMatchingDeposit = errors.New("ожидающий депозит не найден")
	// ErrAmbiguousDeposit — отправителю соответствует несколько депозитов,
	// угадывать получателя нельзя
	ErrAmbiguousDeposit = errors.New("несколько депозитов с таким отправителем")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrAdminExists — пользователь уже администратор
	ErrAdminExists = errors.New("пользователь уже администратор")
	// ErrMainAdminProtected — главного администратора удалить нельзя
	ErrMainAdminProtected = errors.New("главного администратора удалить нельзя")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
