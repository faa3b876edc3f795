package service

import (
	"context"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// NotificationDeliverer pushes a notification to a user if they are online.
type NotificationDeliverer interface {
	DeliverNotification(userID string, n *domain.Notification) bool
}

// SocialService commits likes and follows, then notifies the affected user.
// Actions a user takes on their own content never notify.
type SocialService struct {
	posts    domain.PostGraph
	follows  domain.FollowGraph
	profiles domain.ProfileDirectory
	notifier NotificationDeliverer
}

func NewSocialService(
	posts domain.PostGraph,
	follows domain.FollowGraph,
	profiles domain.ProfileDirectory,
	notifier NotificationDeliverer,
) *SocialService {
	return &SocialService{
		posts:    posts,
		follows:  follows,
		profiles: profiles,
		notifier: notifier,
	}
}

func (s *SocialService) LikePost(ctx context.Context, actorID, postID string) error {
	return s.react(ctx, actorID, postID, domain.NotificationLike)
}

func (s *SocialService) DislikePost(ctx context.Context, actorID, postID string) error {
	return s.react(ctx, actorID, postID, domain.NotificationDislike)
}

func (s *SocialService) react(ctx context.Context, actorID, postID string, kind domain.NotificationType) error {
	// the actor is resolved first so a failed lookup leaves nothing committed
	actor, err := s.profiles.Profile(ctx, actorID)
	if err != nil {
		return err
	}

	var ownerID string
	if kind == domain.NotificationLike {
		ownerID, err = s.posts.Like(ctx, postID, actorID)
	} else {
		ownerID, err = s.posts.Dislike(ctx, postID, actorID)
	}
	if err != nil {
		return err
	}
	if ownerID == "" || ownerID == actorID {
		return nil
	}

	text := "Your post was liked"
	if kind == domain.NotificationDislike {
		text = "Your post was disliked"
	}
	s.notifier.DeliverNotification(ownerID, &domain.Notification{
		Type:        kind,
		UserID:      actorID,
		UserDetails: *actor,
		PostID:      postID,
		Message:     text,
	})
	return nil
}

// FollowOrUnfollow toggles the edge from actorID to targetID and reports
// whether actorID now follows targetID. Only a new follow notifies.
func (s *SocialService) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, &domain.ValidationError{Message: "You cannot follow/unfollow yourself"}
	}

	actor, err := s.profiles.Profile(ctx, actorID)
	if err != nil {
		return false, err
	}
	followed, err := s.follows.Toggle(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if followed {
		s.notifier.DeliverNotification(targetID, &domain.Notification{
			Type:        domain.NotificationFollow,
			UserID:      actorID,
			UserDetails: *actor,
			SubjectID:   targetID,
			Message:     "Started following you",
		})
	}
	return followed, nil
}
