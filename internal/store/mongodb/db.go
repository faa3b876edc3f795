// Package mongodb stores conversations and messages in MongoDB and exposes the
// post and follow graphs of the surrounding social app to the notification path.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names shared with the rest of the application.
const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
	postsCollection         = "posts"
	usersCollection         = "users"
)

// Open connects to uri and verifies the connection.
func Open(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// Migrate creates the indexes the stores rely on. Creating an existing index
// is a no-op, so this runs on every start.
func Migrate(ctx context.Context, db *mongo.Database) error {
	log.Info("Running mongo index migration", "database", db.Name())
	collections := map[string][]mongo.IndexModel{
		conversationsCollection: {
			{
				Keys: bson.D{{Key: "userLow", Value: 1}, {Key: "userHigh", Value: 1}},
				// Threads written by the main app carry only participants and
				// must stay out of the unique index.
				Options: options.Index().
					SetUnique(true).
					SetName("unique_conversation_pair").
					SetPartialFilterExpression(bson.M{"userLow": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "participants", Value: 1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "senderId", Value: 1}}},
			{Keys: bson.D{{Key: "receiverId", Value: 1}}},
		},
	}
	for name, models := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	log.Info("Mongo index migration complete")
	return nil
}

// docID maps a user or post id to the stored _id value. Records created by
// the main app use ObjectIDs; anything else is kept as a plain string.
func docID(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// Stores bundles the repositories backed by one database.
type Stores struct {
	Conversations *ConversationRepo
	Messages      *MessageRepo
	Social        *SocialRepo
}

func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Conversations: NewConversationRepo(db),
		Messages:      NewMessageRepo(db),
		Social:        NewSocialRepo(db),
	}
}
