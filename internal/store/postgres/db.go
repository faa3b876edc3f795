package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the messaging schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Conversations, one row per unordered pair
		`CREATE TABLE IF NOT EXISTS conversations (
			id         UUID        PRIMARY KEY,
			user_low   TEXT        NOT NULL,
			user_high  TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT conversations_pair_key UNIQUE (user_low, user_high),
			CONSTRAINT conversations_pair_order CHECK (user_low <= user_high)
		)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id          UUID        PRIMARY KEY,
			sender_id   TEXT        NOT NULL,
			receiver_id TEXT        NOT NULL,
			body        TEXT        NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		)`,

		// Append-only message log
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			position        BIGSERIAL PRIMARY KEY,
			conversation_id UUID      NOT NULL REFERENCES conversations(id),
			message_id      UUID      NOT NULL REFERENCES messages(id),
			UNIQUE (conversation_id, message_id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_conversations_user_high ON conversations(user_high)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_messages_conv ON conversation_messages(conversation_id, position)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
