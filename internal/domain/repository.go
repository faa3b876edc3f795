package domain

import "context"

// ConversationRepository persists two-party threads and their ordered message log.
type ConversationRepository interface {
	// FindOrCreate returns the conversation for pair, creating an empty one if
	// none exists. Concurrent calls for the same pair return the same record.
	FindOrCreate(ctx context.Context, pair Pair) (*Conversation, error)
	// FindByPair returns nil, nil when no conversation exists.
	FindByPair(ctx context.Context, pair Pair) (*Conversation, error)
	// AppendMessage appends messageID to the conversation's log. Unknown
	// conversations yield a NotFoundError.
	AppendMessage(ctx context.Context, conversationID, messageID string) error
	// ListMessages returns the conversation's messages in append order.
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
}

// MessageRepository persists immutable message records.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
}

// PostGraph records reactions on posts owned by the post collaborator.
type PostGraph interface {
	// Like records userID's like and returns the post author id.
	Like(ctx context.Context, postID, userID string) (authorID string, err error)
	// Dislike removes userID's like and returns the post author id.
	Dislike(ctx context.Context, postID, userID string) (authorID string, err error)
}

// FollowGraph toggles follow edges between users.
type FollowGraph interface {
	// Toggle follows target when not yet followed, otherwise unfollows.
	Toggle(ctx context.Context, followerID, targetID string) (followed bool, err error)
}

// ProfileDirectory resolves display info for a user.
type ProfileDirectory interface {
	Profile(ctx context.Context, userID string) (*UserDetails, error)
}
