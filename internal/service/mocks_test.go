package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pdlsagar677/Social-Media/internal/domain"
)

type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) FindOrCreate(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	args := m.Called(ctx, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) FindByPair(ctx context.Context, pair domain.Pair) (*domain.Conversation, error) {
	args := m.Called(ctx, pair)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) AppendMessage(ctx context.Context, conversationID, messageID string) error {
	args := m.Called(ctx, conversationID, messageID)
	return args.Error(0)
}

func (m *MockConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) DeliverMessage(userID string, msg *domain.Message) bool {
	args := m.Called(userID, msg)
	return args.Bool(0)
}

func (m *MockDeliverer) DeliverNotification(userID string, n *domain.Notification) bool {
	args := m.Called(userID, n)
	return args.Bool(0)
}

type MockSocialGraph struct {
	mock.Mock
}

func (m *MockSocialGraph) Like(ctx context.Context, postID, userID string) (string, error) {
	args := m.Called(ctx, postID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSocialGraph) Dislike(ctx context.Context, postID, userID string) (string, error) {
	args := m.Called(ctx, postID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSocialGraph) Toggle(ctx context.Context, followerID, targetID string) (bool, error) {
	args := m.Called(ctx, followerID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialGraph) Profile(ctx context.Context, userID string) (*domain.UserDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserDetails), args.Error(1)
}
