package postgres

import (
	"context"
	"database/sql"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt)
	if err != nil {
		return domain.Persistence("insert message", err)
	}
	return nil
}
