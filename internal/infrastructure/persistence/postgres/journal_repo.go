package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/homework-bot/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MaxRecentLimit caps a single Recent query.
const MaxRecentLimit = 1000

// JournalRepository implements notification.Journal for PostgreSQL.
type JournalRepository struct {
	q            Querier
	queryTimeout time.Duration
}

var _ notification.Journal = (*JournalRepository)(nil)

// NewJournalRepository creates a new JournalRepository. A non-positive
// queryTimeout disables the per-query deadline.
func NewJournalRepository(q Querier, queryTimeout time.Duration) *JournalRepository {
	return &JournalRepository{q: q, queryTimeout: queryTimeout}
}

// Record inserts one journal row. Recording the same cycle and kind twice is a no-op.
func (r *JournalRepository) Record(ctx context.Context, e notification.Entry) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO notification_journal (
			cycle_id, kind, text, fingerprint, homework_name, status, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cycle_id, kind) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		e.CycleID,
		string(e.Kind),
		e.Text,
		e.Fingerprint,
		e.HomeworkName,
		e.Status,
		e.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

// Recent returns up to limit latest rows, oldest first. limit <= 0 means MaxRecentLimit.
func (r *JournalRepository) Recent(ctx context.Context, limit int) ([]notification.Entry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT cycle_id::text, kind, text, fingerprint, homework_name, status, sent_at
		FROM notification_journal
		ORDER BY sent_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	reverse(entries)
	return entries, nil
}

func (r *JournalRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

func scanEntries(rows pgx.Rows) ([]notification.Entry, error) {
	var entries []notification.Entry
	for rows.Next() {
		var (
			e    notification.Entry
			kind string
		)
		if err := rows.Scan(
			&e.CycleID,
			&kind,
			&e.Text,
			&e.Fingerprint,
			&e.HomeworkName,
			&e.Status,
			&e.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		e.Kind = notification.Kind(kind)
		e.SentAt = e.SentAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal rows: %w", err)
	}
	return entries, nil
}

func reverse(entries []notification.Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
