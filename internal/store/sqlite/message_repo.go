package sqlite

import (
	"context"
	"database/sql"
	"time"

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
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt.UnixMilli())
	return domain.Persistence("insert message", err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*domain.Message, error) {
	var (
		m         domain.Message
		createdAt int64
	)
	if err := s.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt = time.UnixMilli(createdAt).UTC()
	m.UpdatedAt = m.CreatedAt
	return &m, nil
}
