// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service contains the business logic for the agent meeting service.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/utils"
)

// updateMaxAttempts bounds how often an unconditional field update retries
// after losing a revision race to a concurrent writer.
const updateMaxAttempts = 3

// MeetingLifecycleService executes guarded state transitions in response to
// provider call events and dispatches the side effects tied to them.
type MeetingLifecycleService struct {
	meetingRepo    domain.MeetingRepository
	outboxRepo     domain.OutboxRepository
	videoProvider  domain.VideoProvider
	messageBuilder domain.MessageBuilder
	outbox         *OutboxDispatcherService
}

// NewMeetingLifecycleService creates a new meeting lifecycle service.
func NewMeetingLifecycleService(
	meetingRepo domain.MeetingRepository,
	outboxRepo domain.OutboxRepository,
	videoProvider domain.VideoProvider,
	messageBuilder domain.MessageBuilder,
	outbox *OutboxDispatcherService,
) *MeetingLifecycleService {
	return &MeetingLifecycleService{
		meetingRepo:    meetingRepo,
		outboxRepo:     outboxRepo,
		videoProvider:  videoProvider,
		messageBuilder: messageBuilder,
		outbox:         outbox,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *MeetingLifecycleService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.outboxRepo != nil &&
		s.videoProvider != nil &&
		s.messageBuilder != nil &&
		s.outbox != nil
}

// HandleSessionStarted transitions an upcoming meeting to active and owes
// the agent-connect side effect. The compare-and-swap update is the guard:
// a duplicate delivery or a lost race observes a changed revision and is
// reported as not found, never as a second side effect.
func (s *MeetingLifecycleService) HandleSessionStarted(ctx context.Context, payload *models.CallSessionStartedPayload) error {
	meetingUID := payload.Call.Custom.MeetingID
	if meetingUID == "" {
		return domain.NewValidationError("missing meetingId in call custom data")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, revision, err := s.meetingRepo.GetMeetingWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if !meeting.CanStart() {
		slog.InfoContext(ctx, "ignoring session_started for meeting past upcoming",
			"status", meeting.Status)
		return domain.NewNotFoundError("meeting not found in startable state")
	}

	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusActive
	meeting.StartedAt = utils.TimePtr(now)
	meeting.UpdatedAt = utils.TimePtr(now)

	if err := s.meetingRepo.UpdateMeeting(ctx, meeting, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			// A concurrent delivery won the race. Treat like the guard
			// failing so the side effect fires exactly once.
			slog.InfoContext(ctx, "lost session_started race, skipping side effect")
			return domain.NewNotFoundError("meeting not found in startable state", err)
		}
		return err
	}

	slog.InfoContext(ctx, "meeting transitioned to active")

	// The transition committed, so the agent connection is now owed. Record
	// it durably before attempting it, a crash here must not lose it.
	entry := &models.OutboxEntry{
		Kind:       models.OutboxKindConnectAgent,
		MeetingUID: meetingUID,
		CallID:     meetingUID,
		CreatedAt:  now,
	}
	if err := s.outboxRepo.CreateEntry(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to record connect_agent outbox entry",
			logging.ErrKey, err, logging.PriorityCritical())
		return domain.NewInternalError("failed to record agent connection", err)
	}

	return s.outbox.DispatchEntry(ctx, entry)
}

// HandleSessionEnded transitions an active meeting to processing. A guard
// mismatch is an idempotent no-op, redelivery and out-of-order events are
// expected from the provider.
func (s *MeetingLifecycleService) HandleSessionEnded(ctx context.Context, payload *models.CallSessionEndedPayload) error {
	meetingUID := payload.Call.Custom.MeetingID
	if meetingUID == "" {
		return domain.NewValidationError("missing meetingId in call custom data")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, revision, err := s.meetingRepo.GetMeetingWithRevision(ctx, meetingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "session_ended for unknown meeting, ignoring")
			return nil
		}
		return err
	}

	if !meeting.CanEnd() {
		slog.InfoContext(ctx, "ignoring session_ended for meeting not active",
			"status", meeting.Status)
		return nil
	}

	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusProcessing
	meeting.EndedAt = utils.TimePtr(now)
	meeting.UpdatedAt = utils.TimePtr(now)

	if err := s.meetingRepo.UpdateMeeting(ctx, meeting, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.InfoContext(ctx, "lost session_ended race, treating as no-op")
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "meeting transitioned to processing")
	return nil
}

// HandleParticipantLeft ends the call immediately. No state transition is
// tied to this event.
func (s *MeetingLifecycleService) HandleParticipantLeft(ctx context.Context, payload *models.CallSessionParticipantLeftPayload) error {
	meetingUID, err := models.ParseCallCID(payload.CallCID)
	if err != nil {
		return domain.NewValidationError("missing meetingId in call_cid", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	if err := s.videoProvider.EndCall(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "failed to end call", logging.ErrKey, err)
		return domain.NewInternalError("failed to end call", err)
	}

	slog.InfoContext(ctx, "ended call after participant left")
	return nil
}

// HandleTranscriptionReady records the transcript URL regardless of the
// meeting's current status and enqueues exactly one enrichment job for this
// delivery.
func (s *MeetingLifecycleService) HandleTranscriptionReady(ctx context.Context, payload *models.CallTranscriptionReadyPayload) error {
	meetingUID, err := models.ParseCallCID(payload.CallCID)
	if err != nil {
		return domain.NewValidationError("missing meetingId in call_cid", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))
	transcriptURL := payload.CallTranscription.URL

	if err := s.applyFieldUpdate(ctx, meetingUID, func(meeting *models.Meeting) {
		meeting.TranscriptURL = utils.StringPtr(transcriptURL)
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "recorded transcript URL", "transcript_url", transcriptURL)

	err = s.messageBuilder.SendTranscriptEnrichment(ctx, models.TranscriptEnrichmentMessage{
		MeetingUID:    meetingUID,
		TranscriptURL: transcriptURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to enqueue transcript enrichment job",
			logging.ErrKey, err, logging.PriorityCritical())
		return domain.NewInternalError("failed to enqueue transcript enrichment job", err)
	}

	slog.InfoContext(ctx, "enqueued transcript enrichment job")
	return nil
}

// HandleRecordingReady records the recording URL regardless of the meeting's
// current status. An unknown meeting is ignored, the provider keeps
// recordings for calls this service never tracked.
func (s *MeetingLifecycleService) HandleRecordingReady(ctx context.Context, payload *models.CallRecordingReadyPayload) error {
	meetingUID, err := models.ParseCallCID(payload.CallCID)
	if err != nil {
		return domain.NewValidationError("missing meetingId in call_cid", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	err = s.applyFieldUpdate(ctx, meetingUID, func(meeting *models.Meeting) {
		meeting.RecordingURL = utils.StringPtr(payload.CallRecording.URL)
	})
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "recording_ready for unknown meeting, ignoring")
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "recorded recording URL", "recording_url", payload.CallRecording.URL)
	return nil
}

// applyFieldUpdate performs an unguarded read-modify-write of meeting fields,
// retrying a bounded number of times when a concurrent writer bumps the
// revision in between.
func (s *MeetingLifecycleService) applyFieldUpdate(ctx context.Context, meetingUID string, mutate func(*models.Meeting)) error {
	var lastErr error
	for attempt := 0; attempt < updateMaxAttempts; attempt++ {
		meeting, revision, err := s.meetingRepo.GetMeetingWithRevision(ctx, meetingUID)
		if err != nil {
			return err
		}

		mutate(meeting)
		meeting.UpdatedAt = utils.TimePtr(time.Now().UTC())

		err = s.meetingRepo.UpdateMeeting(ctx, meeting, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "meeting update kept conflicting, giving up",
		"meeting_uid", meetingUID, logging.ErrKey, lastErr)
	return lastErr
}
