package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// SocialRepo reads and updates the posts and users collections owned by the
// main application: likes on posts, follow edges and profile display info.
type SocialRepo struct {
	posts *mongo.Collection
	users *mongo.Collection
}

func NewSocialRepo(db *mongo.Database) *SocialRepo {
	return &SocialRepo{
		posts: db.Collection(postsCollection),
		users: db.Collection(usersCollection),
	}
}

var (
	_ domain.PostGraph        = (*SocialRepo)(nil)
	_ domain.FollowGraph      = (*SocialRepo)(nil)
	_ domain.ProfileDirectory = (*SocialRepo)(nil)
)

func (r *SocialRepo) Like(ctx context.Context, postID, userID string) (string, error) {
	return r.react(ctx, postID, bson.M{"$addToSet": bson.M{"likes": docID(userID)}})
}

func (r *SocialRepo) Dislike(ctx context.Context, postID, userID string) (string, error) {
	return r.react(ctx, postID, bson.M{"$pull": bson.M{"likes": docID(userID)}})
}

func (r *SocialRepo) react(ctx context.Context, postID string, update bson.M) (string, error) {
	var post struct {
		Author any `bson:"author"`
	}
	opts := options.FindOneAndUpdate().SetProjection(bson.M{"author": 1})
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": docID(postID)}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", &domain.NotFoundError{Resource: "post", ID: postID}
	}
	if err != nil {
		return "", domain.Persistence("update post likes", err)
	}
	return idString(post.Author), nil
}

// Toggle flips the follow edge. Both sides are separate single-document
// updates, as in the rest of the app.
func (r *SocialRepo) Toggle(ctx context.Context, followerID, targetID string) (bool, error) {
	follower, target := docID(followerID), docID(targetID)

	for _, id := range []string{followerID, targetID} {
		n, err := r.users.CountDocuments(ctx, bson.M{"_id": docID(id)})
		if err != nil {
			return false, domain.Persistence("find user", err)
		}
		if n == 0 {
			return false, &domain.NotFoundError{Resource: "user", ID: id}
		}
	}

	n, err := r.users.CountDocuments(ctx, bson.M{"_id": follower, "following": target})
	if err != nil {
		return false, domain.Persistence("check follow", err)
	}
	following := n > 0

	op := "$addToSet"
	if following {
		op = "$pull"
	}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": follower}, bson.M{op: bson.M{"following": target}}); err != nil {
		return false, domain.Persistence("update following", err)
	}
	if _, err := r.users.UpdateOne(ctx, bson.M{"_id": target}, bson.M{op: bson.M{"followers": follower}}); err != nil {
		return false, domain.Persistence("update followers", err)
	}
	return !following, nil
}

func (r *SocialRepo) Profile(ctx context.Context, userID string) (*domain.UserDetails, error) {
	var doc struct {
		Username       string `bson:"username"`
		ProfilePicture string `bson:"profilePicture"`
	}
	opts := options.FindOne().SetProjection(bson.M{"username": 1, "profilePicture": 1})
	err := r.users.FindOne(ctx, bson.M{"_id": docID(userID)}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &domain.NotFoundError{Resource: "user", ID: userID}
	}
	if err != nil {
		return nil, domain.Persistence("get profile", err)
	}
	return &domain.UserDetails{Username: doc.Username, ProfilePicture: doc.ProfilePicture}, nil
}
