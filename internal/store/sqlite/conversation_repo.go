package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

// FindOrCreate relies on UNIQUE(user_low, user_high): a losing concurrent
// insert becomes a no-op and both callers read the same row.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	now := time.Now().UTC().UnixMilli()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_low, user_high, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_low, user_high) DO NOTHING
	`, uuid.NewString(), pair.Low, pair.High, now, now)
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
	var (
		c                    domain.Conversation
		low, high            string
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_low, user_high, created_at, updated_at
		FROM conversations
		WHERE user_low = ? AND user_high = ?
	`, pair.Low, pair.High).Scan(&c.ID, &low, &high, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Persistence("get conversation", err)
	}
	c.Participants = []string{low, high}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	c.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	ids, err := r.messageIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Messages = ids
	return &c, nil
}

func (r *ConversationRepo) messageIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT message_id
		FROM conversation_messages
		WHERE conversation_id = ?
		ORDER BY position ASC
	`, conversationID)
	if err != nil {
		return nil, domain.Persistence("list message ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Persistence("scan message id", err)
		}
		ids = append(ids, id)
	}
	return ids, domain.Persistence("list message ids", rows.Err())
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence("begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, time.Now().UTC().UnixMilli(), conversationID)
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
		VALUES (?, ?)
		ON CONFLICT (conversation_id, message_id) DO NOTHING
	`, conversationID, messageID); err != nil {
		return domain.Persistence("append message", err)
	}

	return domain.Persistence("commit", tx.Commit())
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.sender_id, m.receiver_id, m.body, m.created_at
		FROM conversation_messages cm
		JOIN messages m ON m.id = cm.message_id
		WHERE cm.conversation_id = ?
		ORDER BY cm.position ASC
	`, conversationID)
	if err != nil {
		return nil, domain.Persistence("list messages", err)
	}
	defer rows.Close()

	msgs := []*domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, domain.Persistence("scan message", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, domain.Persistence("list messages", rows.Err())
}
