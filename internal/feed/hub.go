// Package feed доставляет записи журнала в живую ленту админки:
// Redis -> ListenResilient -> Hub -> SSE-подписчики.
package feed

import (
	"context"
	"sync"

	"github.com/xela07ax/storefront-console/internal/domain"
)

// Hub раздает записи подписчикам. Медленный подписчик теряет записи, а не тормозит остальных.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan domain.AuditRecord]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[chan domain.AuditRecord]struct{}), buffer: buffer}
}

// Subscribe возвращает канал записей и функцию отписки (идемпотентна).
func (h *Hub) Subscribe() (<-chan domain.AuditRecord, func()) {
	ch := make(chan domain.AuditRecord, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast: неблокирующая рассылка.
func (h *Hub) Broadcast(rec domain.AuditRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish рассылает запись локально. Используется вместо Redis, когда он не настроен
// (одна реплика консоли).
func (h *Hub) Publish(_ context.Context, rec domain.AuditRecord) error {
	h.Broadcast(rec)
	return nil
}
