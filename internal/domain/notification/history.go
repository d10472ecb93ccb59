package notification

import (
	"context"
	"sync"
)

// DefaultHistoryCapacity используется, если ёмкость не задана.
const DefaultHistoryCapacity = 100

// History хранит ограниченный список последних записей в памяти.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

// NewHistory создаёт историю заданной ёмкости.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// Record добавляет запись, вытесняя самые старые при переполнении.
func (h *History) Record(_ context.Context, entry Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
	return nil
}

// Recent возвращает копию последних записей.
func (h *History) Recent(_ context.Context, limit int) ([]Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(h.entries) {
		start = len(h.entries) - limit
	}
	snapshot := make([]Entry, len(h.entries)-start)
	copy(snapshot, h.entries[start:])
	return snapshot, nil
}

// Len возвращает текущее количество записей.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Tee записывает каждую запись во все журналы по порядку.
// Recent читается из первого журнала.
type Tee []Journal

// Record реализует Journal. Возвращает первую встреченную ошибку,
// но пытается записать во все журналы.
func (t Tee) Record(ctx context.Context, entry Entry) error {
	var firstErr error
	for _, j := range t {
		if err := j.Record(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Recent реализует Journal.
func (t Tee) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return t[0].Recent(ctx, limit)
}
