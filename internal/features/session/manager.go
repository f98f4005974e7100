// manager.go — менеджер сессий. Выдаёт сессию по chat ID и сериализует
// обработку апдейтов одного пользователя: пока его хендлер держит
// сессию, параллельный апдейт того же пользователя ждёт.
package session

import "sync"

// Session — диалоговое состояние одного пользователя.
// Поля читаются и пишутся только между Acquire и Release.
type Session struct {
	mu    sync.Mutex
	State State
	Cart  Cart
}

// Reset возвращает сессию в нейтральное состояние и чистит корзину.
// Вызывается по кнопке возврата в главное меню из любого шага.
func (s *Session) Reset() {
	s.State = Browsing{}
	s.Cart.Clear()
}

// Manager хранит сессии всех пользователей.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewManager создаёт пустой менеджер сессий.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Acquire возвращает сессию пользователя, блокируя её на время обработки.
// Парный Release обязателен.
func (m *Manager) Acquire(chatID int64) *Session {
	m.mu.RLock()
	s, ok := m.sessions[chatID]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		if s, ok = m.sessions[chatID]; !ok {
			s = &Session{State: Browsing{}}
			m.sessions[chatID] = s
		}
		m.mu.Unlock()
	}

	s.mu.Lock()
	return s
}

// Release отпускает сессию, взятую Acquire.
func (m *Manager) Release(s *Session) {
	s.mu.Unlock()
}

// Drop удаляет сессию пользователя (при блокировке бота пользователем).
func (m *Manager) Drop(chatID int64) {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
}
