// Package admin — service.go содержит Registry: список администраторов,
// проверку пароля Argon2id и сессии входа. Главный администратор задаётся
// конфигурацией и не может быть удалён из панели.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"ronid.ru/shop-bot/internal/common"
)

const (
	maxAttempts     = 3
	attemptInterval = time.Hour
	sessionTTL      = 24 * time.Hour
)

// Mirror — зеркало списка администраторов в постоянном хранилище.
type Mirror interface {
	SaveAdmin(ctx context.Context, a Admin) error
	DeleteAdmin(ctx context.Context, chatID int64) error
}

// Registry хранит администраторов, сессии и счётчики попыток входа.
type Registry struct {
	mu           sync.RWMutex
	mainChatID   int64
	passwordHash string
	admins       map[int64]Admin
	sessions     map[int64]session
	attempts     map[int64]*attemptWindow
	mirror       Mirror
}

// NewRegistry создаёт реестр с главным администратором.
// mirror может быть nil (тесты).
func NewRegistry(mainChatID int64, passwordHash string, mirror Mirror) *Registry {
	r := &Registry{
		mainChatID:   mainChatID,
		passwordHash: passwordHash,
		admins:       make(map[int64]Admin),
		sessions:     make(map[int64]session),
		attempts:     make(map[int64]*attemptWindow),
		mirror:       mirror,
	}
	r.admins[mainChatID] = Admin{ChatID: mainChatID, AddedAt: time.Now()}
	return r
}

// Load поднимает администраторов из зеркала при старте.
func (r *Registry) Load(admins []Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range admins {
		r.admins[a.ChatID] = a
	}
	log.WithField("count", len(r.admins)).Info("Администраторы загружены")
}

// IsAdmin сообщает, есть ли chatID в списке администраторов.
func (r *Registry) IsAdmin(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.admins[chatID]
	return ok
}

// Add добавляет администратора. Повторное добавление — ошибка.
func (r *Registry) Add(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	if _, ok := r.admins[chatID]; ok {
		r.mu.Unlock()
		return common.ErrAdminExists
	}
	a := Admin{ChatID: chatID, AddedAt: time.Now()}
	r.admins[chatID] = a
	r.mu.Unlock()

	if r.mirror != nil {
		if err := r.mirror.SaveAdmin(ctx, a); err != nil {
			log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось зеркалировать администратора")
		}
	}
	log.WithField("chat_id", chatID).Info("Администратор добавлен")
	return nil
}

// Remove удаляет администратора. Главного удалить нельзя.
func (r *Registry) Remove(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	if chatID == r.mainChatID {
		r.mu.Unlock()
		return common.ErrMainAdminProtected
	}
	if _, ok := r.admins[chatID]; !ok {
		r.mu.Unlock()
		return common.ErrNotAdmin
	}
	delete(r.admins, chatID)
	delete(r.sessions, chatID)
	r.mu.Unlock()

	if r.mirror != nil {
		if err := r.mirror.DeleteAdmin(ctx, chatID); err != nil {
			log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось удалить администратора из зеркала")
		}
	}
	log.WithField("chat_id", chatID).Info("Администратор удалён")
	return nil
}

// All возвращает отсортированный список администраторов.
func (r *Registry) All() []Admin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Admin, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out
}

// VerifyPassword проверяет пароль и открывает сессию на 24 часа.
// Три неудачные попытки подряд блокируют вход на час.
func (r *Registry) VerifyPassword(chatID int64, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.attempts[chatID]
	if w != nil && time.Since(w.first) > attemptInterval {
		w = nil
	}
	if w != nil && w.count >= maxAttempts {
		return common.ErrTooManyAttempts
	}

	if !verifyArgon2id(password, r.passwordHash) {
		if w == nil {
			w = &attemptWindow{first: time.Now()}
			r.attempts[chatID] = w
		}
		w.count++
		log.WithFields(log.Fields{"chat_id": chatID, "attempts": w.count}).Warn("Неверный пароль администратора")
		return common.ErrWrongPassword
	}

	delete(r.attempts, chatID)
	r.sessions[chatID] = session{expiresAt: time.Now().Add(sessionTTL)}
	log.WithField("chat_id", chatID).Info("Администратор вошёл в панель")
	return nil
}

// HasActiveSession сообщает, действует ли сессия входа.
func (r *Registry) HasActiveSession(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[chatID]
	return ok && time.Now().Before(s.expiresAt)
}

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// сравнение в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
