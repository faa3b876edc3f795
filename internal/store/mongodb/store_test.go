package mongodb_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/store/mongodb"
)

// These tests need a live server: MONGO_TEST_URI=mongodb://localhost:27017
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	name := "social_test_" + uuid.NewString()[:8]
	client, db, err := mongodb.Open(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func openTestStores(t *testing.T) (*mongodb.Stores, *mongo.Database) {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, mongodb.Migrate(context.Background(), db))
	return mongodb.NewStores(db), db
}

func TestMongoConversations(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStores(t)

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := s.Conversations.FindOrCreate(ctx, domain.NewPair("bob", "alice"))
			if assert.NoError(t, err) {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var bodies []string
	for _, body := range []string{"one", "two", "three"} {
		m := &domain.Message{ID: uuid.NewString(), SenderID: "alice", ReceiverID: "bob", Body: body, CreatedAt: time.Now().UTC()}
		require.NoError(t, s.Messages.Create(ctx, m))
		require.NoError(t, s.Conversations.AppendMessage(ctx, ids[0], m.ID))
		bodies = append(bodies, body)
	}

	list, err := s.Conversations.ListMessages(ctx, ids[0])
	require.NoError(t, err)
	var got []string
	for _, m := range list {
		got = append(got, m.Body)
	}
	assert.Equal(t, bodies, got)

	err = s.Conversations.AppendMessage(ctx, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoSocial(t *testing.T) {
	ctx := context.Background()
	s, db := openTestStores(t)

	alice, bob, post := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	_, err := db.Collection("users").InsertMany(ctx, []any{
		bson.M{"_id": alice, "username": "alice", "profilePicture": "a.png"},
		bson.M{"_id": bob, "username": "bob"},
	})
	require.NoError(t, err)
	_, err = db.Collection("posts").InsertOne(ctx, bson.M{"_id": post, "author": bob, "likes": bson.A{}})
	require.NoError(t, err)

	owner, err := s.Social.Like(ctx, post.Hex(), alice.Hex())
	require.NoError(t, err)
	assert.Equal(t, bob.Hex(), owner)

	_, err = s.Social.Like(ctx, bson.NewObjectID().Hex(), alice.Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	followed, err := s.Social.Toggle(ctx, alice.Hex(), bob.Hex())
	require.NoError(t, err)
	assert.True(t, followed)
	followed, err = s.Social.Toggle(ctx, alice.Hex(), bob.Hex())
	require.NoError(t, err)
	assert.False(t, followed)

	p, err := s.Social.Profile(ctx, alice.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "a.png", p.ProfilePicture)
}

func TestMongoExistingThreads(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	alice, bob, carol := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	oldMsg, abThread := bson.NewObjectID(), bson.NewObjectID()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := db.Collection("messages").InsertOne(ctx, bson.M{
		"_id": oldMsg, "senderId": bob, "receiverId": alice, "message": "from before",
		"createdAt": created, "updatedAt": created,
	})
	require.NoError(t, err)
	_, err = db.Collection("conversations").InsertMany(ctx, []any{
		bson.M{"_id": abThread, "participants": bson.A{bob, alice}, "messages": bson.A{oldMsg}},
		bson.M{"_id": bson.NewObjectID(), "participants": bson.A{alice, carol}, "messages": bson.A{}},
	})
	require.NoError(t, err)

	// Threads without the pair key must not collide in the unique index.
	require.NoError(t, mongodb.Migrate(ctx, db))
	s := mongodb.NewStores(db)

	pair := domain.NewPair(alice.Hex(), bob.Hex())
	c, err := s.Conversations.FindByPair(ctx, pair)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, abThread.Hex(), c.ID)
	assert.Equal(t, pair.Participants(), c.Participants)

	same, err := s.Conversations.FindOrCreate(ctx, domain.NewPair(bob.Hex(), alice.Hex()))
	require.NoError(t, err)
	assert.Equal(t, abThread.Hex(), same.ID)

	m := &domain.Message{ID: uuid.NewString(), SenderID: alice.Hex(), ReceiverID: bob.Hex(), Body: "reply", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Messages.Create(ctx, m))
	require.NoError(t, s.Conversations.AppendMessage(ctx, c.ID, m.ID))

	list, err := s.Conversations.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, oldMsg.Hex(), list[0].ID)
	assert.Equal(t, "from before", list[0].Body)
	assert.Equal(t, bob.Hex(), list[0].SenderID)
	assert.Equal(t, m.ID, list[1].ID)
	assert.Equal(t, alice.Hex(), list[1].SenderID)

	fresh, err := s.Conversations.FindOrCreate(ctx, domain.NewPair(bob.Hex(), carol.Hex()))
	require.NoError(t, err)
	assert.NotEqual(t, abThread.Hex(), fresh.ID)
}
