// Package notification содержит журнал отправленных в чат уведомлений.
// Журнал служит только для аудита: состояние цикла из него не восстанавливается.
package notification

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ══════════════════════════════════════════════════════════════════════════════
// KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind определяет, какое именно сообщение ушло в чат.
type Kind string

const (
	// KindStatus - изменился статус проверки работы.
	KindStatus Kind = "status"

	// KindNoUpdates - в окне запроса нет работ.
	KindNoUpdates Kind = "no_updates"

	// KindError - общее сообщение о сбое (одно на серию ошибок).
	KindError Kind = "error"
)

// IsValid проверяет корректность вида уведомления.
func (k Kind) IsValid() bool {
	switch k {
	case KindStatus, KindNoUpdates, KindError:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление вида.
func (k Kind) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry - запись журнала об одном доставленном сообщении.
type Entry struct {
	CycleID      string    `json:"cycle_id"`
	Kind         Kind      `json:"kind"`
	Text         string    `json:"text"`
	Fingerprint  string    `json:"fingerprint"`
	HomeworkName string    `json:"homework_name,omitempty"`
	Status       string    `json:"status,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// NewEntry создаёт запись журнала и вычисляет отпечаток текста.
func NewEntry(cycleID string, kind Kind, text string, sentAt time.Time) Entry {
	return Entry{
		CycleID:     cycleID,
		Kind:        kind,
		Text:        text,
		Fingerprint: Fingerprint(text),
		SentAt:      sentAt.UTC(),
	}
}

// Fingerprint возвращает BLAKE2b-256 текста сообщения в hex.
// Одинаковые тексты дают одинаковый отпечаток, поэтому по журналу видно,
// что одно и то же сообщение не уходило дважды подряд.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL
// ══════════════════════════════════════════════════════════════════════════════

// Journal сохраняет записи о доставленных уведомлениях.
type Journal interface {
	// Record добавляет запись.
	Record(ctx context.Context, entry Entry) error

	// Recent возвращает не более limit последних записей в хронологическом порядке.
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
