// Package inventory — service.go содержит Store, владельца пулов кодов.
// Ключевое свойство резервации: проверяем доступность по ВСЕМ меткам
// до того, как тронуть хоть один пул. Частично доступная покупка падает
// целиком, не оставляя следов. Замки пулов берутся в отсортированном
// порядке меток, чтобы две встречные резервации не взаимоблокировались.
package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/common"
)

// Mirror — зеркало пулов кодов в постоянном хранилище.
type Mirror interface {
	SaveCodes(ctx context.Context, label string, codes []Code) error
	DeleteCodes(ctx context.Context, ids []string) error
}

// pool — пул кодов одного товара со своим замком.
// Слайс хранит коды в порядке добавления; выдача идёт с головы.
type pool struct {
	mu    sync.Mutex
	codes []Code
}

// Store хранит пулы кодов всех товаров.
type Store struct {
	mu     sync.RWMutex // защищает карту pools
	pools  map[string]*pool
	mirror Mirror
}

// NewStore создаёт пустое хранилище кодов. mirror может быть nil (тесты).
func NewStore(mirror Mirror) *Store {
	return &Store{pools: make(map[string]*pool), mirror: mirror}
}

// Load поднимает пулы из зеркала при старте.
func (s *Store) Load(pools map[string][]Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for label, codes := range pools {
		s.pools[label] = &pool{codes: codes}
		total += len(codes)
	}
	log.WithFields(log.Fields{"labels": len(pools), "codes": total}).Info("Пулы кодов загружены")
}

// getPool возвращает пул метки, при необходимости создавая его.
func (s *Store) getPool(label string, create bool) *pool {
	s.mu.RLock()
	p, ok := s.pools[label]
	s.mu.RUnlock()
	if ok || !create {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok = s.pools[label]; ok {
		return p
	}
	p = &pool{}
	s.pools[label] = p
	return p
}

// Available возвращает число неиспользованных кодов метки.
func (s *Store) Available(label string) int {
	p := s.getPool(label, false)
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.codes)
}

// Reserve атомарно забирает требуемое число кодов по каждой метке.
// Либо выдаются все коды, либо ни одного: при нехватке хотя бы по одной
// метке возвращается ErrInsufficientInventory и ни один пул не тронут.
// Коды выбираются в порядке добавления. Один код не может быть выдан
// двум резервациям: выдача и есть удаление из пула под замком.
func (s *Store) Reserve(ctx context.Context, required map[string]int) (map[string][]Code, error) {
	if len(required) == 0 {
		return map[string][]Code{}, nil
	}

	// замки берём в стабильном порядке меток
	labels := make([]string, 0, len(required))
	for label := range required {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	locked := make([]*pool, 0, len(labels))
	unlock := func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}

	for _, label := range labels {
		p := s.getPool(label, false)
		if p == nil {
			unlock()
			return nil, common.ErrInsufficientInventory
		}
		p.mu.Lock()
		locked = append(locked, p)
	}
	defer unlock()

	// сначала проверка по всем меткам — под замками она же и финальная
	for i, label := range labels {
		if len(locked[i].codes) < required[label] {
			return nil, common.ErrInsufficientInventory
		}
	}

	// теперь забираем; откатывать уже нечего — нехватки быть не может
	taken := make(map[string][]Code, len(labels))
	var takenIDs []string
	for i, label := range labels {
		n := required[label]
		taken[label] = append([]Code(nil), locked[i].codes[:n]...)
		locked[i].codes = locked[i].codes[n:]
		for _, c := range taken[label] {
			takenIDs = append(takenIDs, c.ID)
		}
	}

	s.mirrorDelete(ctx, takenIDs)

	log.WithFields(log.Fields{"labels": labels, "codes": len(takenIDs)}).Info("Коды зарезервированы")
	return taken, nil
}

// Requeue возвращает коды обратно в пул — компенсация несостоявшейся
// активации. Коды встают в конец пула.
func (s *Store) Requeue(ctx context.Context, label string, codes []Code) {
	if len(codes) == 0 {
		return
	}
	p := s.getPool(label, true)
	p.mu.Lock()
	p.codes = append(p.codes, codes...)
	p.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.SaveCodes(ctx, label, codes); err != nil {
			log.WithError(err).WithField("label", label).Warn("Не удалось зеркалировать возврат кодов")
		}
	}
	log.WithFields(log.Fields{"label": label, "codes": len(codes)}).Info("Коды возвращены в пул")
}

// Add добавляет новые коды в пул (админская операция).
func (s *Store) Add(ctx context.Context, label string, values []string) []Code {
	now := time.Now()
	added := make([]Code, 0, len(values))
	for _, v := range values {
		added = append(added, Code{ID: uuid.NewString(), Value: v, AddedAt: now})
	}

	p := s.getPool(label, true)
	p.mu.Lock()
	p.codes = append(p.codes, added...)
	p.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.SaveCodes(ctx, label, added); err != nil {
			log.WithError(err).WithField("label", label).Warn("Не удалось зеркалировать коды")
		}
	}
	return added
}

// DeleteByValue удаляет один код по его значению (админская операция).
func (s *Store) DeleteByValue(ctx context.Context, label, value string) error {
	p := s.getPool(label, false)
	if p == nil {
		return common.ErrCodeNotFound
	}

	p.mu.Lock()
	idx := -1
	for i, c := range p.codes {
		if c.Value == value {
			idx = i
			break
		}
	}
	if idx == -1 {
		p.mu.Unlock()
		return common.ErrCodeNotFound
	}
	id := p.codes[idx].ID
	p.codes = append(p.codes[:idx], p.codes[idx+1:]...)
	p.mu.Unlock()

	s.mirrorDelete(ctx, []string{id})
	return nil
}

// Unused возвращает копию пула метки в порядке добавления.
func (s *Store) Unused(label string) []Code {
	p := s.getPool(label, false)
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Code(nil), p.codes...)
}

func (s *Store) mirrorDelete(ctx context.Context, ids []string) {
	if s.mirror == nil || len(ids) == 0 {
		return
	}
	if err := s.mirror.DeleteCodes(ctx, ids); err != nil {
		log.WithError(err).Warn("Не удалось зеркалировать удаление кодов")
	}
}
