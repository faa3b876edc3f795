package service

import (
	"context"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	messages      *MessageService
}

func NewConversationService(conversations domain.ConversationRepository, messages *MessageService) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
	}
}

// FindOrCreate returns the one conversation between a and b regardless of
// argument order.
func (s *ConversationService) FindOrCreate(ctx context.Context, a, b string) (*domain.Conversation, error) {
	if a == "" || b == "" {
		return nil, &domain.ValidationError{Field: "participants", Message: "both participants are required"}
	}
	if a == b {
		return nil, &domain.ValidationError{Field: "participants", Message: "a conversation needs two distinct users"}
	}
	return s.conversations.FindOrCreate(ctx, domain.NewPair(a, b))
}

// AppendMessage adds an already persisted message to the conversation log.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID, messageID string) error {
	return s.conversations.AppendMessage(ctx, conversationID, messageID)
}

// GetMessages returns the thread between a and b in creation order. A pair
// that never exchanged messages yields an empty slice.
func (s *ConversationService) GetMessages(ctx context.Context, a, b string) ([]*domain.Message, error) {
	conv, err := s.conversations.FindByPair(ctx, domain.NewPair(a, b))
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []*domain.Message{}, nil
	}

	msgs, err := s.conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return s.messages.Reveal(msgs), nil
}
