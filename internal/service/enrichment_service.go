// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/concurrent"
)

const (
	// stepMaxTries is how many times each enrichment step is attempted
	// before the job is handed back to the stream for redelivery.
	stepMaxTries = 4

	// unknownSpeakerName is the display name attached to transcript items
	// whose speaker resolves to neither a user nor an agent.
	unknownSpeakerName = "Unknown"

	// speakerWorkerCount bounds concurrent speaker lookups.
	speakerWorkerCount = 4
)

// summarizerSystemPrompt is the fixed structural prompt for transcript
// summaries. Changing the section layout breaks consumers that render the
// Overview and Notes sections.
const summarizerSystemPrompt = `You are an expert summarizer. You write readable, concise, simple content. You are given a transcript of a meeting and you need to summarize it.

Use the following markdown structure for every output:

### Overview
Provide a detailed, engaging summary of the session's content. Focus on major features, user workflows, and any key takeaways. Write in a narrative style, using full sentences. Highlight unique or powerful aspects of the product, platform, or discussion.

### Notes
Break down key content into thematic sections with timestamp ranges. Each section should summarize key points, actions, or demos in bullet format.

Example:
#### Section Name
- Main point or demo shown here
- Another key insight or interaction
- Follow-up tool or explanation provided

#### Next Section
- Feature X automatically does Y
- Mention of integration with Z`

// TranscriptEnrichmentService runs the asynchronous enrichment job: fetch
// the transcript artifact, parse it, resolve speakers, summarize, and
// persist the result. Each step retries independently so a flaky summarizer
// does not redo a successful fetch.
type TranscriptEnrichmentService struct {
	meetingRepo domain.MeetingRepository
	agentRepo   domain.AgentRepository
	userRepo    domain.UserRepository
	fetcher     domain.TranscriptFetcher
	summarizer  domain.Summarizer
	pool        *concurrent.WorkerPool
}

// NewTranscriptEnrichmentService creates a new transcript enrichment service.
func NewTranscriptEnrichmentService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	userRepo domain.UserRepository,
	fetcher domain.TranscriptFetcher,
	summarizer domain.Summarizer,
) *TranscriptEnrichmentService {
	return &TranscriptEnrichmentService{
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		userRepo:    userRepo,
		fetcher:     fetcher,
		summarizer:  summarizer,
		pool:        concurrent.NewWorkerPool(speakerWorkerCount),
	}
}

// ServiceReady checks if the service is ready to process jobs.
func (s *TranscriptEnrichmentService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.userRepo != nil &&
		s.fetcher != nil &&
		s.summarizer != nil
}

// ProcessEnrichment runs the full enrichment job for one meeting. The job
// is idempotent per meeting, re-running it regenerates and overwrites the
// summary.
func (s *TranscriptEnrichmentService) ProcessEnrichment(ctx context.Context, job models.TranscriptEnrichmentMessage) error {
	if job.MeetingUID == "" || job.TranscriptURL == "" {
		return domain.NewValidationError("enrichment job missing meeting UID or transcript URL")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", job.MeetingUID))
	start := time.Now()

	raw, err := retryStep(ctx, "fetch-transcript", func() ([]byte, error) {
		return s.fetcher.FetchTranscript(ctx, job.TranscriptURL)
	})
	if err != nil {
		return err
	}

	items, err := retryStep(ctx, "parse-transcript", func() ([]models.TranscriptItem, error) {
		parsed, parseErr := models.ParseTranscript(raw)
		if parseErr != nil {
			// A malformed artifact will not fix itself on retry.
			return nil, backoff.Permanent(parseErr)
		}
		return parsed, nil
	})
	if err != nil {
		return err
	}

	enriched, err := retryStep(ctx, "add-speakers", func() ([]models.EnrichedTranscriptItem, error) {
		return s.resolveSpeakers(ctx, items)
	})
	if err != nil {
		return err
	}

	summary, err := retryStep(ctx, "summarize", func() (string, error) {
		return s.summarize(ctx, enriched)
	})
	if err != nil {
		return err
	}

	_, err = retryStep(ctx, "save-summary", func() (struct{}, error) {
		return struct{}{}, s.saveSummary(ctx, job.MeetingUID, summary)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transcript enrichment completed",
		"items", len(items),
		"duration", time.Since(start).String(),
	)
	return nil
}

// retryStep wraps one enrichment step in an exponential backoff retry.
func retryStep[T any](ctx context.Context, step string, operation func() (T, error)) (T, error) {
	result, err := backoff.Retry(ctx, func() (T, error) {
		value, opErr := operation()
		if opErr != nil {
			slog.WarnContext(ctx, "enrichment step failed",
				"step", step, logging.ErrKey, opErr)
		}
		return value, opErr
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(stepMaxTries),
	)
	if err != nil {
		slog.ErrorContext(ctx, "enrichment step exhausted retries",
			"step", step, logging.ErrKey, err, logging.PriorityCritical())
		return result, fmt.Errorf("enrichment step %s: %w", step, err)
	}
	return result, nil
}

// resolveSpeakers attaches a display name to every transcript item. Speaker
// identifiers are matched against users first, then agents, concurrently
// per speaker. Anything unresolved falls back to "Unknown".
func (s *TranscriptEnrichmentService) resolveSpeakers(ctx context.Context, items []models.TranscriptItem) ([]models.EnrichedTranscriptItem, error) {
	speakerIDs := models.SpeakerIDs(items)

	users, err := s.userRepo.GetUsers(ctx, speakerIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving user speakers: %w", err)
	}

	names := make(map[string]string, len(speakerIDs))
	for uid, user := range users {
		names[uid] = user.Name
	}

	// Remaining identifiers may be agents.
	var unresolved []string
	for _, id := range speakerIDs {
		if _, ok := names[id]; !ok {
			unresolved = append(unresolved, id)
		}
	}

	var mu sync.Mutex
	functions := make([]func() error, 0, len(unresolved))
	for _, id := range unresolved {
		functions = append(functions, func() error {
			agent, agentErr := s.agentRepo.GetAgent(ctx, id)
			if agentErr != nil {
				if domain.GetErrorType(agentErr) == domain.ErrorTypeNotFound {
					return nil
				}
				return agentErr
			}
			mu.Lock()
			names[id] = agent.Name
			mu.Unlock()
			return nil
		})
	}
	if err := s.pool.Run(ctx, functions...); err != nil {
		return nil, fmt.Errorf("resolving agent speakers: %w", err)
	}

	enriched := make([]models.EnrichedTranscriptItem, 0, len(items))
	for _, item := range items {
		e := models.EnrichedTranscriptItem{TranscriptItem: item}
		if name, ok := names[item.SpeakerID]; ok && name != "" {
			e.User.Name = name
		} else {
			e.User.Name = unknownSpeakerName
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

// summarize submits the enriched transcript as one prompt to the model.
func (s *TranscriptEnrichmentService) summarize(ctx context.Context, enriched []models.EnrichedTranscriptItem) (string, error) {
	var b strings.Builder
	b.WriteString("Summarize the following transcript: ")
	for _, item := range enriched {
		line, err := json.Marshal(item)
		if err != nil {
			return "", backoff.Permanent(fmt.Errorf("encoding transcript item: %w", err))
		}
		b.Write(line)
		b.WriteString("\n")
	}

	return s.summarizer.Complete(ctx, summarizerSystemPrompt, []models.CompletionMessage{
		{Role: models.CompletionRoleUser, Content: b.String()},
	})
}

// saveSummary persists the generated summary and completes the meeting.
func (s *TranscriptEnrichmentService) saveSummary(ctx context.Context, meetingUID, summary string) error {
	meeting, revision, err := s.meetingRepo.GetMeetingWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	meeting.Summary = &summary
	meeting.Status = models.MeetingStatusCompleted
	meeting.UpdatedAt = &now

	if err := s.meetingRepo.UpdateMeeting(ctx, meeting, revision); err != nil {
		return err
	}

	slog.InfoContext(ctx, "meeting transitioned to completed")
	return nil
}
