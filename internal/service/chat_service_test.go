// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/utils"
)

type chatFixture struct {
	meetingRepo  *mocks.MockMeetingRepository
	agentRepo    *mocks.MockAgentRepository
	chatProvider *mocks.MockChatProvider
	summarizer   *mocks.MockSummarizer
	service      *ChatMessageService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		meetingRepo:  &mocks.MockMeetingRepository{},
		agentRepo:    &mocks.MockAgentRepository{},
		chatProvider: &mocks.MockChatProvider{},
		summarizer:   &mocks.MockSummarizer{},
	}
	f.service = NewChatMessageService(f.meetingRepo, f.agentRepo, f.chatProvider, f.summarizer)
	return f
}

func messageNewPayload(channelID, userID, text string) *models.MessageNewPayload {
	payload := &models.MessageNewPayload{ChannelID: channelID, ChannelType: "messaging"}
	payload.User.ID = userID
	payload.Message.Text = text
	return payload
}

func TestHandleMessageNew(t *testing.T) {
	ctx := context.Background()

	completedMeeting := func() *models.Meeting {
		return &models.Meeting{
			UID:      "m1",
			AgentUID: "agent-1",
			Status:   models.MeetingStatusCompleted,
			Summary:  utils.StringPtr("### Overview\nWe discussed roadmaps."),
		}
	}
	agent := &models.Agent{UID: "agent-1", Name: "Coach", Instructions: "be concise"}

	t.Run("replies as the agent with history context", func(t *testing.T) {
		f := newChatFixture()
		f.meetingRepo.On("GetMeeting", mock.Anything, "m1").Return(completedMeeting(), nil)
		f.agentRepo.On("GetAgent", mock.Anything, "agent-1").Return(agent, nil)
		f.chatProvider.On("UpsertUser", mock.Anything, &models.ChatUser{ID: "agent-1", Name: "Coach"}).Return(nil)
		f.chatProvider.On("RecentMessages", mock.Anything, "m1", chatHistoryLimit).Return([]models.ChatMessage{
			{UserID: "user-1", Text: "What did we decide?"},
			{UserID: "agent-1", Text: "We agreed on the Q3 plan."},
		}, nil)
		f.summarizer.On("Complete", mock.Anything,
			mock.MatchedBy(func(system string) bool {
				return containsAll(system, "We discussed roadmaps.", "be concise", "Respond as Coach")
			}),
			mock.MatchedBy(func(conversation []models.CompletionMessage) bool {
				if len(conversation) != 3 {
					return false
				}
				return conversation[0].Role == models.CompletionRoleUser &&
					conversation[1].Role == models.CompletionRoleAssistant &&
					conversation[2] == models.CompletionMessage{Role: models.CompletionRoleUser, Content: "And the budget?"}
			}),
		).Return("The budget was approved.", nil)
		f.chatProvider.On("SendMessage", mock.Anything, "m1", "agent-1", "The budget was approved.").Return(nil)

		err := f.service.HandleMessageNew(ctx, messageNewPayload("m1", "user-1", "And the budget?"))
		require.NoError(t, err)
		f.chatProvider.AssertNumberOfCalls(t, "SendMessage", 1)
	})

	t.Run("meeting not completed is ignored with not found", func(t *testing.T) {
		f := newChatFixture()
		meeting := completedMeeting()
		meeting.Status = models.MeetingStatusActive
		f.meetingRepo.On("GetMeeting", mock.Anything, "m1").Return(meeting, nil)

		err := f.service.HandleMessageNew(ctx, messageNewPayload("m1", "user-1", "hi"))
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
		f.chatProvider.AssertNotCalled(t, "SendMessage")
	})

	t.Run("agent's own message is a no-op", func(t *testing.T) {
		f := newChatFixture()
		f.meetingRepo.On("GetMeeting", mock.Anything, "m1").Return(completedMeeting(), nil)
		f.agentRepo.On("GetAgent", mock.Anything, "agent-1").Return(agent, nil)

		err := f.service.HandleMessageNew(ctx, messageNewPayload("m1", "agent-1", "my own reply"))
		require.NoError(t, err)
		f.chatProvider.AssertNotCalled(t, "RecentMessages")
		f.chatProvider.AssertNotCalled(t, "SendMessage")
	})

	t.Run("missing channel id is a validation error", func(t *testing.T) {
		f := newChatFixture()
		err := f.service.HandleMessageNew(ctx, messageNewPayload("", "user-1", "hi"))
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("missing user id is a validation error", func(t *testing.T) {
		f := newChatFixture()
		err := f.service.HandleMessageNew(ctx, messageNewPayload("m1", "", "hi"))
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("summarizer failure is an internal error", func(t *testing.T) {
		f := newChatFixture()
		f.meetingRepo.On("GetMeeting", mock.Anything, "m1").Return(completedMeeting(), nil)
		f.agentRepo.On("GetAgent", mock.Anything, "agent-1").Return(agent, nil)
		f.chatProvider.On("UpsertUser", mock.Anything, mock.Anything).Return(nil)
		f.chatProvider.On("RecentMessages", mock.Anything, "m1", chatHistoryLimit).
			Return([]models.ChatMessage{}, nil)
		f.summarizer.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", assert.AnError)

		err := f.service.HandleMessageNew(ctx, messageNewPayload("m1", "user-1", "hi"))
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
		f.chatProvider.AssertNotCalled(t, "SendMessage")
	})
}

func TestBuildConversation(t *testing.T) {
	t.Run("keeps only trailing non-empty messages", func(t *testing.T) {
		history := []models.ChatMessage{
			{UserID: "u1", Text: "one"},
			{UserID: "u1", Text: "   "},
			{UserID: "u1", Text: "two"},
			{UserID: "u1", Text: "three"},
			{UserID: "a1", Text: "four"},
			{UserID: "u1", Text: "five"},
			{UserID: "u1", Text: "six"},
		}

		conversation := buildConversation(history, "latest", "a1")
		require.Len(t, conversation, chatHistoryLimit+1)
		assert.Equal(t, "two", conversation[0].Content)
		assert.Equal(t, models.CompletionRoleAssistant, conversation[3].Role)
		assert.Equal(t, "latest", conversation[len(conversation)-1].Content)
	})

	t.Run("does not duplicate the triggering message", func(t *testing.T) {
		history := []models.ChatMessage{
			{UserID: "u1", Text: "hello"},
		}
		conversation := buildConversation(history, "hello", "a1")
		require.Len(t, conversation, 1)
	})

	t.Run("empty history yields only the latest message", func(t *testing.T) {
		conversation := buildConversation(nil, "hello", "a1")
		require.Len(t, conversation, 1)
		assert.Equal(t, models.CompletionRoleUser, conversation[0].Role)
	})
}

func containsAll(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
