package domain

import (
	"strings"
	"time"
)

// Pair is the normalized, order-independent key of a two-party conversation.
type Pair struct {
	Low  string
	High string
}

// NewPair normalizes two user ids so that NewPair(a, b) == NewPair(b, a).
func NewPair(a, b string) Pair {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// Participants returns both members, low id first.
func (p Pair) Participants() []string {
	return []string{p.Low, p.High}
}

func (p Pair) String() string {
	return p.Low + ":" + p.High
}

// Conversation is the single thread between exactly two users.
type Conversation struct {
	ID           string    `json:"_id"`
	Participants []string  `json:"participants"`
	Messages     []string  `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Message is an immutable direct message.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Body       string    `json:"message"` // sealed at rest when encryption is enabled
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NotificationType names the social action behind a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationDislike NotificationType = "dislike"
	NotificationFollow  NotificationType = "follow"
)

// UserDetails is the display info of the acting user.
type UserDetails struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// Notification is a transient event pushed to an online user. It is never persisted.
type Notification struct {
	Type        NotificationType `json:"type"`
	UserID      string           `json:"userId"`
	UserDetails UserDetails      `json:"userDetails"`
	PostID      string           `json:"postId,omitempty"`
	SubjectID   string           `json:"subjectId,omitempty"`
	Message     string           `json:"message"`
}
