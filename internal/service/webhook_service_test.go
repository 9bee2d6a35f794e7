// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

type webhookFixture struct {
	validator   *mocks.MockWebhookValidator
	meetingRepo *mocks.MockMeetingRepository
	service     *WebhookService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		validator:   &mocks.MockWebhookValidator{},
		meetingRepo: &mocks.MockMeetingRepository{},
	}
	agentRepo := &mocks.MockAgentRepository{}
	outboxRepo := &mocks.MockOutboxRepository{}
	videoProvider := &mocks.MockVideoProvider{}
	messageBuilder := &mocks.MockMessageBuilder{}
	chatProvider := &mocks.MockChatProvider{}
	summarizer := &mocks.MockSummarizer{}

	dispatcher := NewOutboxDispatcherService(outboxRepo, f.meetingRepo, agentRepo, videoProvider)
	lifecycle := NewMeetingLifecycleService(f.meetingRepo, outboxRepo, videoProvider, messageBuilder, dispatcher)
	chat := NewChatMessageService(f.meetingRepo, agentRepo, chatProvider, summarizer)
	f.service = NewWebhookService(f.validator, lifecycle, chat)
	return f
}

func TestHandleWebhookAuthentication(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"type":"call.session_ended"}`)

	t.Run("missing signature rejected before any validation", func(t *testing.T) {
		f := newWebhookFixture()

		err := f.service.HandleWebhook(ctx, body, "", "key")
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
		f.validator.AssertNotCalled(t, "ValidateSignature")
		f.validator.AssertNotCalled(t, "ValidateAPIKey")
	})

	t.Run("missing api key rejected before any validation", func(t *testing.T) {
		f := newWebhookFixture()

		err := f.service.HandleWebhook(ctx, body, "sig", "")
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
		f.validator.AssertNotCalled(t, "ValidateSignature")
	})

	t.Run("invalid api key is unauthenticated", func(t *testing.T) {
		f := newWebhookFixture()
		f.validator.On("ValidateAPIKey", "bad-key").
			Return(domain.NewValidationError("api key mismatch"))

		err := f.service.HandleWebhook(ctx, body, "sig", "bad-key")
		assert.Equal(t, domain.ErrorTypeUnauthenticated, domain.GetErrorType(err))
		f.validator.AssertNotCalled(t, "ValidateSignature")
	})

	t.Run("invalid signature is unauthenticated", func(t *testing.T) {
		f := newWebhookFixture()
		f.validator.On("ValidateAPIKey", "key").Return(nil)
		f.validator.On("ValidateSignature", body, "bad-sig").
			Return(domain.NewValidationError("signature mismatch"))

		err := f.service.HandleWebhook(ctx, body, "bad-sig", "key")
		assert.Equal(t, domain.ErrorTypeUnauthenticated, domain.GetErrorType(err))
		f.meetingRepo.AssertNotCalled(t, "GetMeetingWithRevision")
	})

	t.Run("unparseable body after valid auth is a validation error", func(t *testing.T) {
		f := newWebhookFixture()
		garbage := []byte("not json")
		f.validator.On("ValidateAPIKey", "key").Return(nil)
		f.validator.On("ValidateSignature", garbage, "sig").Return(nil)

		err := f.service.HandleWebhook(ctx, garbage, "sig", "key")
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestHandleWebhookRouting(t *testing.T) {
	ctx := context.Background()

	authorize := func(f *webhookFixture, body []byte) {
		f.validator.On("ValidateAPIKey", "key").Return(nil)
		f.validator.On("ValidateSignature", body, "sig").Return(nil)
	}

	t.Run("unknown event type is acknowledged without side effects", func(t *testing.T) {
		f := newWebhookFixture()
		body := []byte(`{"type":"call.reaction_new","call_cid":"default:m1"}`)
		authorize(f, body)

		require.NoError(t, f.service.HandleWebhook(ctx, body, "sig", "key"))
		f.meetingRepo.AssertNotCalled(t, "GetMeetingWithRevision")
		f.meetingRepo.AssertNotCalled(t, "GetMeeting")
	})

	t.Run("session ended routes to the lifecycle handler", func(t *testing.T) {
		f := newWebhookFixture()
		body := []byte(`{"type":"call.session_ended","call":{"custom":{"meetingId":"m1"}}}`)
		authorize(f, body)

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}
		f.meetingRepo.On("GetMeetingWithRevision", mock.Anything, "m1").Return(meeting, uint64(2), nil)
		f.meetingRepo.On("UpdateMeeting", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Status == models.MeetingStatusProcessing
		}), uint64(2)).Return(nil)

		require.NoError(t, f.service.HandleWebhook(ctx, body, "sig", "key"))
		f.meetingRepo.AssertExpectations(t)
	})

	t.Run("handler errors propagate to the caller", func(t *testing.T) {
		f := newWebhookFixture()
		body := []byte(`{"type":"call.session_started","call":{"custom":{"meetingId":"m1"}}}`)
		authorize(f, body)

		f.meetingRepo.On("GetMeetingWithRevision", mock.Anything, "m1").
			Return(nil, uint64(0), domain.NewNotFoundError("meeting not found"))

		err := f.service.HandleWebhook(ctx, body, "sig", "key")
		assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
	})
}
