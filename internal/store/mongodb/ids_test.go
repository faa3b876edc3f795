package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

func TestDocID(t *testing.T) {
	oid := bson.NewObjectID()

	assert.Equal(t, oid, docID(oid.Hex()))
	assert.Equal(t, "user-42", docID("user-42"))
}

func TestIDString(t *testing.T) {
	oid := bson.NewObjectID()

	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "plain", idString("plain"))
	assert.Equal(t, "", idString(nil))
	assert.Equal(t, "7", idString(int32(7)))
}

func TestConversationDocShapes(t *testing.T) {
	alice, bob, msg := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()

	t.Run("main app thread", func(t *testing.T) {
		doc := conversationDoc{ID: bson.NewObjectID(), Participants: []any{bob, alice}, Messages: []any{msg, "m2"}}
		c := doc.toDomain()

		assert.Equal(t, domain.NewPair(alice.Hex(), bob.Hex()).Participants(), c.Participants)
		assert.Equal(t, []string{msg.Hex(), "m2"}, c.Messages)
	})

	t.Run("keyed thread", func(t *testing.T) {
		doc := conversationDoc{ID: "c1", UserLow: "a", UserHigh: "b"}
		c := doc.toDomain()

		assert.Equal(t, "c1", c.ID)
		assert.Equal(t, []string{"a", "b"}, c.Participants)
		assert.Empty(t, c.Messages)
	})
}

func TestLegacyPairFilter(t *testing.T) {
	alice, bob := bson.NewObjectID(), bson.NewObjectID()
	f := legacyPairFilter(domain.NewPair(alice.Hex(), bob.Hex()))

	assert.Equal(t, bson.M{"$exists": false}, f["userLow"])
	members := f["participants"].(bson.M)["$all"].(bson.A)
	assert.ElementsMatch(t, bson.A{alice, bob}, members)
}
