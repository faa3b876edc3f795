package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// conversationDoc covers both thread shapes in the collection: the ones
// written here carry the normalized userLow/userHigh key, the ones written by
// the main app only have ObjectID participants and messages.
type conversationDoc struct {
	ID           any       `bson:"_id"`
	Participants []any     `bson:"participants"`
	UserLow      string    `bson:"userLow,omitempty"`
	UserHigh     string    `bson:"userHigh,omitempty"`
	Messages     []any     `bson:"messages"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d *conversationDoc) toDomain() *domain.Conversation {
	participants := []string{d.UserLow, d.UserHigh}
	if d.UserLow == "" && len(d.Participants) == 2 {
		participants = domain.NewPair(idString(d.Participants[0]), idString(d.Participants[1])).Participants()
	}
	msgs := make([]string, 0, len(d.Messages))
	for _, id := range d.Messages {
		msgs = append(msgs, idString(id))
	}
	return &domain.Conversation{
		ID:           idString(d.ID),
		Participants: participants,
		Messages:     msgs,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type ConversationRepo struct {
	convs *mongo.Collection
	msgs  *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		convs: db.Collection(conversationsCollection),
		msgs:  db.Collection(messagesCollection),
	}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

func pairFilter(pair domain.Pair) bson.M {
	return bson.M{"userLow": pair.Low, "userHigh": pair.High}
}

// legacyPairFilter matches a two-person thread created by the main app.
func legacyPairFilter(pair domain.Pair) bson.M {
	return bson.M{
		"userLow":      bson.M{"$exists": false},
		"participants": bson.M{"$all": bson.A{docID(pair.Low), docID(pair.High)}, "$size": 2},
	}
}

// FindOrCreate returns the pair's existing thread, otherwise upserts on the
// unique (userLow, userHigh) index. Two racing upserts can both miss and both
// insert; the loser gets a duplicate key error and reads the winner's document.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	existing, err := r.FindByPair(ctx, pair)
	if err != nil || existing != nil {
		return existing, err
	}

	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"_id":          uuid.NewString(),
		"participants": bson.A{docID(pair.Low), docID(pair.High)},
		"messages":     bson.A{},
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc conversationDoc
	err = r.convs.FindOneAndUpdate(ctx, pairFilter(pair), update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.convs.FindOne(ctx, pairFilter(pair)).Decode(&doc)
	}
	if err != nil {
		return nil, domain.Persistence("upsert conversation", err)
	}
	return doc.toDomain(), nil
}

func (r *ConversationRepo) FindByPair(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	for _, filter := range []bson.M{pairFilter(pair), legacyPairFilter(pair)} {
		var doc conversationDoc
		err := r.convs.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, domain.Persistence("find conversation", err)
		}
		return doc.toDomain(), nil
	}
	return nil, nil
}

// AppendMessage is a single-document update, so it is atomic on its own.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string) error {
	res, err := r.convs.UpdateOne(ctx,
		bson.M{"_id": docID(conversationID)},
		bson.M{
			"$addToSet": bson.M{"messages": docID(messageID)},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return domain.Persistence("append message", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "conversation", ID: conversationID}
	}
	return nil
}

// ListMessages resolves the conversation's id list against the messages
// collection and returns them in log order. Ids without a message document
// are skipped.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var doc conversationDoc
	err := r.convs.FindOne(ctx, bson.M{"_id": docID(conversationID)},
		options.FindOne().SetProjection(bson.M{"messages": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []*domain.Message{}, nil
	}
	if err != nil {
		return nil, domain.Persistence("find conversation", err)
	}
	if len(doc.Messages) == 0 {
		return []*domain.Message{}, nil
	}

	cursor, err := r.msgs.Find(ctx, bson.M{"_id": bson.M{"$in": doc.Messages}})
	if err != nil {
		return nil, domain.Persistence("find messages", err)
	}
	var found []messageDoc
	if err := cursor.All(ctx, &found); err != nil {
		return nil, domain.Persistence("decode messages", err)
	}

	byID := make(map[string]*messageDoc, len(found))
	for i := range found {
		byID[idString(found[i].ID)] = &found[i]
	}
	res := make([]*domain.Message, 0, len(doc.Messages))
	for _, id := range doc.Messages {
		if m, ok := byID[idString(id)]; ok {
			res = append(res, m.toDomain())
		}
	}
	return res, nil
}
