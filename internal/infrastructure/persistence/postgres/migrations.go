package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_notification_journal",
			UpSQL:   migration001Up,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE NOTIFICATION JOURNAL
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- One row per message delivered to the chat
CREATE TABLE IF NOT EXISTS notification_journal (
    id BIGSERIAL PRIMARY KEY,
    cycle_id UUID NOT NULL,
    kind VARCHAR(20) NOT NULL,
    text TEXT NOT NULL,
    fingerprint CHAR(64) NOT NULL,
    homework_name TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT '',
    sent_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_kind CHECK (kind IN ('status', 'no_updates', 'error')),
    CONSTRAINT unique_cycle_kind UNIQUE (cycle_id, kind)
);

CREATE INDEX IF NOT EXISTS idx_notification_journal_sent_at ON notification_journal(sent_at DESC);
CREATE INDEX IF NOT EXISTS idx_notification_journal_fingerprint ON notification_journal(fingerprint);
`
