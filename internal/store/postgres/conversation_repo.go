package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func (r *ConversationRepo) FindOrCreate(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_low, user_high)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT conversations_pair_key DO NOTHING
	`, uuid.New(), pair.Low, pair.High)
	if err != nil {
		return nil, domain.Persistence("insert conversation", err)
	}

	c, err := r.FindByPair(ctx, pair)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.Persistence("find conversation", errors.New("conversation missing after insert"))
	}
	return c, nil
}

func (r *ConversationRepo) FindByPair(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	c := &domain.Conversation{Participants: make([]string, 2)}
	err := r.db.QueryRowContext(ctx, `
		SELECT id::text, user_low, user_high, created_at, updated_at
		FROM conversations
		WHERE user_low = $1 AND user_high = $2
	`, pair.Low, pair.High).Scan(
		&c.ID,
		&c.Participants[0],
		&c.Participants[1],
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Persistence("get conversation", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT message_id::text
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY position ASC
	`, c.ID)
	if err != nil {
		return nil, domain.Persistence("list message ids", err)
	}
	defer rows.Close()

	c.Messages = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Persistence("scan message id", err)
		}
		c.Messages = append(c.Messages, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list message ids", err)
	}
	return c, nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string) error {
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return &domain.NotFoundError{Resource: "conversation", ID: conversationID}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, convID)
	if err != nil {
		return domain.Persistence("touch conversation", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Persistence("touch conversation", err)
	} else if n == 0 {
		return &domain.NotFoundError{Resource: "conversation", ID: conversationID}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO conversation_messages (conversation_id, message_id)
		VALUES ($1, $2)
		ON CONFLICT (conversation_id, message_id) DO NOTHING
	`, convID, messageID); err != nil {
		return domain.Persistence("append message", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Persistence("commit", err)
	}
	return nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return []*domain.Message{}, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id::text, m.sender_id, m.receiver_id, m.body, m.created_at
		FROM conversation_messages cm
		JOIN messages m ON m.id = cm.message_id
		WHERE cm.conversation_id = $1
		ORDER BY cm.position ASC
	`, conversationID)
	if err != nil {
		return nil, domain.Persistence("list messages", err)
	}
	defer rows.Close()

	msgs := []*domain.Message{}
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, domain.Persistence("scan message", err)
		}
		m.UpdatedAt = m.CreatedAt
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list messages", err)
	}
	return msgs, nil
}
