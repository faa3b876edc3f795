package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

// Cipher seals message bodies at rest. *security.Encryptor satisfies it.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(enc string) (string, error)
}

type MessageService struct {
	messages  domain.MessageRepository
	cipher    Cipher
	maxLength int
	now       func() time.Time
}

// NewMessageService builds the message store. cipher may be nil, in which
// case bodies are stored as plain text. maxLength <= 0 disables the cap.
func NewMessageService(messages domain.MessageRepository, cipher Cipher, maxLength int) *MessageService {
	return &MessageService{
		messages:  messages,
		cipher:    cipher,
		maxLength: maxLength,
		now:       time.Now,
	}
}

// Validate checks a message before anything is written.
func (s *MessageService) Validate(senderID, receiverID, body string) error {
	if senderID == "" {
		return &domain.ValidationError{Field: "senderId", Message: "sender is required"}
	}
	if receiverID == "" {
		return &domain.ValidationError{Field: "receiverId", Message: "receiver is required"}
	}
	if senderID == receiverID {
		return &domain.ValidationError{Field: "receiverId", Message: "cannot send a message to yourself"}
	}
	if strings.TrimSpace(body) == "" {
		return &domain.ValidationError{Field: "message", Message: "message body cannot be empty"}
	}
	if s.maxLength > 0 && utf8.RuneCountInString(body) > s.maxLength {
		return &domain.ValidationError{Field: "message", Message: "message body is too long"}
	}
	return nil
}

// Create persists a new immutable message. The returned record carries the
// plain body, a generated id and the creation timestamp.
func (s *MessageService) Create(ctx context.Context, senderID, receiverID, body string) (*domain.Message, error) {
	if err := s.Validate(senderID, receiverID, body); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored := *msg
	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(body)
		if err != nil {
			return nil, err
		}
		stored.Body = sealed
	}
	if err := s.messages.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return msg, nil
}

// Reveal opens sealed bodies in place. Bodies that do not decrypt are left as
// stored, which covers rows written before encryption was enabled.
func (s *MessageService) Reveal(msgs []*domain.Message) []*domain.Message {
	for i, m := range msgs {
		msgs[i] = s.reveal(m)
	}
	return msgs
}

func (s *MessageService) reveal(m *domain.Message) *domain.Message {
	if s.cipher == nil {
		return m
	}
	if plain, err := s.cipher.Decrypt(m.Body); err == nil {
		m.Body = plain
	}
	return m
}
