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
)

type enrichmentFixture struct {
	meetingRepo *mocks.MockMeetingRepository
	agentRepo   *mocks.MockAgentRepository
	userRepo    *mocks.MockUserRepository
	fetcher     *mocks.MockTranscriptFetcher
	summarizer  *mocks.MockSummarizer
	service     *TranscriptEnrichmentService
}

func newEnrichmentFixture() *enrichmentFixture {
	f := &enrichmentFixture{
		meetingRepo: &mocks.MockMeetingRepository{},
		agentRepo:   &mocks.MockAgentRepository{},
		userRepo:    &mocks.MockUserRepository{},
		fetcher:     &mocks.MockTranscriptFetcher{},
		summarizer:  &mocks.MockSummarizer{},
	}
	f.service = NewTranscriptEnrichmentService(f.meetingRepo, f.agentRepo, f.userRepo, f.fetcher, f.summarizer)
	return f
}

const sampleTranscript = `{"speaker_id":"user-1","type":"speech","text":"Hello everyone","start_ts":0,"stop_ts":1200}
{"speaker_id":"agent-1","type":"speech","text":"Welcome to the session","start_ts":1300,"stop_ts":2400}
{"speaker_id":"ghost-9","type":"speech","text":"Can you hear me?","start_ts":2500,"stop_ts":3000}
`

func enrichmentJob() models.TranscriptEnrichmentMessage {
	return models.TranscriptEnrichmentMessage{
		MeetingUID:    "m1",
		TranscriptURL: "https://example.com/t.jsonl",
	}
}

func TestProcessEnrichment(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline persists summary and completes the meeting", func(t *testing.T) {
		f := newEnrichmentFixture()
		meeting := &models.Meeting{UID: "m1", AgentUID: "agent-1", Status: models.MeetingStatusProcessing}

		f.fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return([]byte(sampleTranscript), nil)
		f.userRepo.On("GetUsers", mock.Anything, []string{"user-1", "agent-1", "ghost-9"}).
			Return(map[string]*models.User{
				"user-1": {UID: "user-1", Name: "Alice"},
			}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "agent-1").
			Return(&models.Agent{UID: "agent-1", Name: "Coach"}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "ghost-9").
			Return(nil, domain.NewNotFoundError("agent not found"))
		f.summarizer.On("Complete", mock.Anything, summarizerSystemPrompt,
			mock.MatchedBy(func(messages []models.CompletionMessage) bool {
				if len(messages) != 1 || messages[0].Role != models.CompletionRoleUser {
					return false
				}
				content := messages[0].Content
				return strings.HasPrefix(content, "Summarize the following transcript: ") &&
					strings.Contains(content, `"Alice"`) &&
					strings.Contains(content, `"Coach"`) &&
					strings.Contains(content, `"Unknown"`)
			}),
		).Return("### Overview\nA good session.", nil)
		f.meetingRepo.On("GetMeetingWithRevision", mock.Anything, "m1").Return(meeting, uint64(4), nil)
		f.meetingRepo.On("UpdateMeeting", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Status == models.MeetingStatusCompleted &&
				m.Summary != nil && *m.Summary == "### Overview\nA good session."
		}), uint64(4)).Return(nil)

		require.NoError(t, f.service.ProcessEnrichment(ctx, enrichmentJob()))
		f.meetingRepo.AssertExpectations(t)
		f.summarizer.AssertNumberOfCalls(t, "Complete", 1)
	})

	t.Run("missing job fields are a validation error", func(t *testing.T) {
		f := newEnrichmentFixture()

		err := f.service.ProcessEnrichment(ctx, models.TranscriptEnrichmentMessage{MeetingUID: "m1"})
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
		f.fetcher.AssertNotCalled(t, "FetchTranscript")
	})

	t.Run("transient fetch failure is retried", func(t *testing.T) {
		f := newEnrichmentFixture()
		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusProcessing}

		f.fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return(nil, assert.AnError).Once()
		f.fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return([]byte(`{"speaker_id":"user-1","type":"speech","text":"hi","start_ts":0,"stop_ts":1}`+"\n"), nil).Once()
		f.userRepo.On("GetUsers", mock.Anything, []string{"user-1"}).
			Return(map[string]*models.User{"user-1": {UID: "user-1", Name: "Alice"}}, nil)
		f.summarizer.On("Complete", mock.Anything, summarizerSystemPrompt, mock.Anything).
			Return("summary", nil)
		f.meetingRepo.On("GetMeetingWithRevision", mock.Anything, "m1").Return(meeting, uint64(1), nil)
		f.meetingRepo.On("UpdateMeeting", mock.Anything, mock.Anything, uint64(1)).Return(nil)

		require.NoError(t, f.service.ProcessEnrichment(ctx, enrichmentJob()))
		f.fetcher.AssertNumberOfCalls(t, "FetchTranscript", 2)
	})

	t.Run("malformed transcript fails without retrying the parse", func(t *testing.T) {
		f := newEnrichmentFixture()
		f.fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return([]byte("{not json}\n"), nil)

		err := f.service.ProcessEnrichment(ctx, enrichmentJob())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse-transcript")
		f.userRepo.AssertNotCalled(t, "GetUsers")
		f.summarizer.AssertNotCalled(t, "Complete")
	})

	t.Run("summarizer failure surfaces after retries without saving", func(t *testing.T) {
		f := newEnrichmentFixture()
		f.fetcher.On("FetchTranscript", mock.Anything, "https://example.com/t.jsonl").
			Return([]byte(`{"speaker_id":"user-1","type":"speech","text":"hi","start_ts":0,"stop_ts":1}`+"\n"), nil)
		f.userRepo.On("GetUsers", mock.Anything, []string{"user-1"}).
			Return(map[string]*models.User{}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "user-1").
			Return(nil, domain.NewNotFoundError("agent not found"))
		f.summarizer.On("Complete", mock.Anything, summarizerSystemPrompt, mock.Anything).
			Return("", assert.AnError)

		err := f.service.ProcessEnrichment(ctx, enrichmentJob())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "summarize")
		f.meetingRepo.AssertNotCalled(t, "UpdateMeeting")
		f.summarizer.AssertNumberOfCalls(t, "Complete", stepMaxTries)
	})
}

func TestResolveSpeakers(t *testing.T) {
	ctx := context.Background()

	t.Run("users win over agents, unresolved fall back to Unknown", func(t *testing.T) {
		f := newEnrichmentFixture()
		items := []models.TranscriptItem{
			{SpeakerID: "user-1", Text: "a"},
			{SpeakerID: "agent-1", Text: "b"},
			{SpeakerID: "ghost-9", Text: "c"},
			{SpeakerID: "user-1", Text: "d"},
		}

		f.userRepo.On("GetUsers", mock.Anything, []string{"user-1", "agent-1", "ghost-9"}).
			Return(map[string]*models.User{"user-1": {UID: "user-1", Name: "Alice"}}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "agent-1").
			Return(&models.Agent{UID: "agent-1", Name: "Coach"}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "ghost-9").
			Return(nil, domain.NewNotFoundError("agent not found"))

		enriched, err := f.service.resolveSpeakers(ctx, items)
		require.NoError(t, err)
		require.Len(t, enriched, 4)
		assert.Equal(t, "Alice", enriched[0].User.Name)
		assert.Equal(t, "Coach", enriched[1].User.Name)
		assert.Equal(t, "Unknown", enriched[2].User.Name)
		assert.Equal(t, "Alice", enriched[3].User.Name)
	})

	t.Run("empty user name falls back to Unknown", func(t *testing.T) {
		f := newEnrichmentFixture()
		items := []models.TranscriptItem{{SpeakerID: "user-1", Text: "a"}}

		f.userRepo.On("GetUsers", mock.Anything, []string{"user-1"}).
			Return(map[string]*models.User{"user-1": {UID: "user-1", Name: ""}}, nil)

		enriched, err := f.service.resolveSpeakers(ctx, items)
		require.NoError(t, err)
		assert.Equal(t, "Unknown", enriched[0].User.Name)
	})

	t.Run("agent lookup hard failure aborts resolution", func(t *testing.T) {
		f := newEnrichmentFixture()
		items := []models.TranscriptItem{{SpeakerID: "a1", Text: "a"}}

		f.userRepo.On("GetUsers", mock.Anything, []string{"a1"}).
			Return(map[string]*models.User{}, nil)
		f.agentRepo.On("GetAgent", mock.Anything, "a1").
			Return(nil, domain.NewUnavailableError("store unavailable"))

		_, err := f.service.resolveSpeakers(ctx, items)
		require.Error(t, err)
	})
}
