// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/service"
)

func newHandlerFixture() (*EnrichmentHandler, *mocks.MockTranscriptFetcher) {
	meetingRepo := &mocks.MockMeetingRepository{}
	agentRepo := &mocks.MockAgentRepository{}
	userRepo := &mocks.MockUserRepository{}
	fetcher := &mocks.MockTranscriptFetcher{}
	summarizer := &mocks.MockSummarizer{}

	enrichment := service.NewTranscriptEnrichmentService(meetingRepo, agentRepo, userRepo, fetcher, summarizer)
	return NewEnrichmentHandler(enrichment), fetcher
}

func TestEnrichmentHandlerHandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown subject is acked and dropped", func(t *testing.T) {
		handler, fetcher := newHandlerFixture()
		msg := &mocks.MockMessage{}
		msg.On("Subject").Return("lfx.agent-meeting.unknown")
		msg.On("Ack").Return(nil)

		handler.HandleMessage(ctx, msg)
		msg.AssertCalled(t, "Ack")
		msg.AssertNotCalled(t, "Nak")
		fetcher.AssertNotCalled(t, "FetchTranscript")
	})

	t.Run("malformed payload is acked and dropped", func(t *testing.T) {
		handler, fetcher := newHandlerFixture()
		msg := &mocks.MockMessage{}
		msg.On("Subject").Return(models.TranscriptEnrichmentSubject)
		msg.On("Data").Return([]byte("not json"))
		msg.On("Ack").Return(nil)

		handler.HandleMessage(ctx, msg)
		msg.AssertCalled(t, "Ack")
		msg.AssertNotCalled(t, "Nak")
		fetcher.AssertNotCalled(t, "FetchTranscript")
	})

	t.Run("unprocessable job is acked, not redelivered", func(t *testing.T) {
		handler, _ := newHandlerFixture()
		msg := &mocks.MockMessage{}
		msg.On("Subject").Return(models.TranscriptEnrichmentSubject)
		// Missing transcript URL makes the job permanently unprocessable.
		msg.On("Data").Return([]byte(`{"meeting_uid":"m1"}`))
		msg.On("Ack").Return(nil)

		handler.HandleMessage(ctx, msg)
		msg.AssertCalled(t, "Ack")
		msg.AssertNotCalled(t, "Nak")
	})

	t.Run("transient failure is naked for redelivery", func(t *testing.T) {
		handler, fetcher := newHandlerFixture()
		fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return(nil, assert.AnError)

		msg := &mocks.MockMessage{}
		msg.On("Subject").Return(models.TranscriptEnrichmentSubject)
		msg.On("Data").Return([]byte(`{"meeting_uid":"m1","transcript_url":"https://example.com/t.jsonl"}`))
		msg.On("Nak").Return(nil)

		handler.HandleMessage(ctx, msg)
		msg.AssertCalled(t, "Nak")
		msg.AssertNotCalled(t, "Ack")
	})
}

func TestEnrichmentHandlerReady(t *testing.T) {
	handler, _ := newHandlerFixture()
	assert.True(t, handler.HandlerReady())

	var empty EnrichmentHandler
	assert.False(t, empty.HandlerReady())
}
