package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// messageDoc keeps user references as ObjectIDs when they are hex ids, so the
// main app can populate them.
type messageDoc struct {
	ID         any       `bson:"_id"`
	SenderID   any       `bson:"senderId"`
	ReceiverID any       `bson:"receiverId"`
	Message    string    `bson:"message"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:         idString(d.ID),
		SenderID:   idString(d.SenderID),
		ReceiverID: idString(d.ReceiverID),
		Body:       d.Message,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

type MessageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{coll: db.Collection(messagesCollection)}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, messageDoc{
		ID:         m.ID,
		SenderID:   docID(m.SenderID),
		ReceiverID: docID(m.ReceiverID),
		Message:    m.Body,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.CreatedAt,
	})
	return domain.Persistence("insert message", err)
}
