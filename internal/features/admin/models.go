// Package admin управляет списком администраторов и входом в админ-панель.
// models.go описывает запись администратора и сессию.
package admin

import "time"

// Admin — администратор бота.
type Admin struct {
	ChatID  int64     `db:"chat_id"`
	AddedAt time.Time `db:"added_at"`
}

// session — активная сессия после успешного ввода пароля.
type session struct {
	expiresAt time.Time
}

// attemptWindow — окно учёта неудачных попыток входа.
type attemptWindow struct {
	count int
	first time.Time
}
