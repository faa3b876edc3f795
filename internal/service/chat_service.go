package service

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// MessageDeliverer pushes a new message to its receiver if they are online.
type MessageDeliverer interface {
	DeliverMessage(userID string, msg *domain.Message) bool
}

// ChatService runs the send flow: persist the message, append it to the
// thread, then hand it to delivery.
type ChatService struct {
	conversations *ConversationService
	messages      *MessageService
	delivery      MessageDeliverer
	locks         pairLocks
}

func NewChatService(conversations *ConversationService, messages *MessageService, delivery MessageDeliverer) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		delivery:      delivery,
	}
}

// Send stores body as a message from senderID to receiverID. Delivery is best
// effort and never affects the result; an offline receiver is not an error.
// If the append fails after the message was created, the message is left
// orphaned and the error is returned without delivering.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, body string) (*domain.Message, error) {
	if err := s.messages.Validate(senderID, receiverID, body); err != nil {
		return nil, err
	}

	msg, err := s.persist(ctx, senderID, receiverID, body)
	if err != nil {
		return nil, err
	}

	s.delivery.DeliverMessage(receiverID, msg)
	return msg, nil
}

// persist holds the pair lock so timestamps and log order agree.
func (s *ChatService) persist(ctx context.Context, senderID, receiverID, body string) (*domain.Message, error) {
	unlock := s.locks.lock(domain.NewPair(senderID, receiverID))
	defer unlock()

	conv, err := s.conversations.FindOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	msg, err := s.messages.Create(ctx, senderID, receiverID, body)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.AppendMessage(ctx, conv.ID, msg.ID); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the thread between userID and otherID.
func (s *ChatService) History(ctx context.Context, userID, otherID string) ([]*domain.Message, error) {
	return s.conversations.GetMessages(ctx, userID, otherID)
}

const lockStripes = 64

// pairLocks serializes writers per conversation pair within this process.
type pairLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *pairLocks) lock(p domain.Pair) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(p.String()))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
