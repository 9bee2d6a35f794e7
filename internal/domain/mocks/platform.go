// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// MockRealtimeSession implements RealtimeSession for testing
type MockRealtimeSession struct {
	mock.Mock
}

func (m *MockRealtimeSession) UpdateInstructions(ctx context.Context, instructions string) error {
	args := m.Called(ctx, instructions)
	return args.Error(0)
}

func (m *MockRealtimeSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockVideoProvider implements VideoProvider for testing
type MockVideoProvider struct {
	mock.Mock
}

func (m *MockVideoProvider) ConnectAgent(ctx context.Context, agent *models.Agent, callID string) (domain.RealtimeSession, error) {
	args := m.Called(ctx, agent, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RealtimeSession), args.Error(1)
}

func (m *MockVideoProvider) EndCall(ctx context.Context, callID string) error {
	args := m.Called(ctx, callID)
	return args.Error(0)
}

// MockChatProvider implements ChatProvider for testing
type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) UpsertUser(ctx context.Context, user *models.ChatUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockChatProvider) RecentMessages(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockChatProvider) SendMessage(ctx context.Context, channelID string, senderUID string, text string) error {
	args := m.Called(ctx, channelID, senderUID, text)
	return args.Error(0)
}

// MockSummarizer implements Summarizer for testing
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Complete(ctx context.Context, system string, messages []models.CompletionMessage) (string, error) {
	args := m.Called(ctx, system, messages)
	return args.String(0), args.Error(1)
}

// MockTranscriptFetcher implements TranscriptFetcher for testing
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) FetchTranscript(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockWebhookValidator implements WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

func (m *MockWebhookValidator) ValidateAPIKey(apiKey string) error {
	args := m.Called(apiKey)
	return args.Error(0)
}
