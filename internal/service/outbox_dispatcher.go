// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/utils"
)

// DefaultDrainInterval is how often the background dispatcher retries
// pending outbox entries.
const DefaultDrainInterval = 30 * time.Second

// drainWorkerCount bounds concurrent side-effect dispatches during a drain.
const drainWorkerCount = 4

// OutboxDispatcherService drains durable side-effect entries. Entries are
// written by the lifecycle service in the same logical step as the state
// transition, then dispatched inline; anything that fails or is orphaned by
// a crash is retried here with at-least-once semantics.
type OutboxDispatcherService struct {
	outboxRepo    domain.OutboxRepository
	meetingRepo   domain.MeetingRepository
	agentRepo     domain.AgentRepository
	videoProvider domain.VideoProvider
	pool          *concurrent.WorkerPool
}

// NewOutboxDispatcherService creates a new outbox dispatcher service.
func NewOutboxDispatcherService(
	outboxRepo domain.OutboxRepository,
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	videoProvider domain.VideoProvider,
) *OutboxDispatcherService {
	return &OutboxDispatcherService{
		outboxRepo:    outboxRepo,
		meetingRepo:   meetingRepo,
		agentRepo:     agentRepo,
		videoProvider: videoProvider,
		pool:          concurrent.NewWorkerPool(drainWorkerCount),
	}
}

// ServiceReady checks if the service is ready to dispatch side effects.
func (s *OutboxDispatcherService) ServiceReady() bool {
	return s.outboxRepo != nil &&
		s.meetingRepo != nil &&
		s.agentRepo != nil &&
		s.videoProvider != nil
}

// DispatchEntry attempts one side effect and deletes the entry on success.
// A missing agent is permanent, the entry is removed and not found is
// surfaced to the caller. Transient failures leave the entry pending for
// the background drain.
func (s *OutboxDispatcherService) DispatchEntry(ctx context.Context, entry *models.OutboxEntry) error {
	ctx = logging.AppendCtx(ctx, slog.String("outbox_key", entry.Key()))

	switch entry.Kind {
	case models.OutboxKindConnectAgent:
		return s.dispatchConnectAgent(ctx, entry)
	default:
		slog.WarnContext(ctx, "unknown outbox entry kind, removing", "kind", entry.Kind)
		s.removeEntry(ctx, entry)
		return nil
	}
}

func (s *OutboxDispatcherService) dispatchConnectAgent(ctx context.Context, entry *models.OutboxEntry) error {
	meeting, err := s.meetingRepo.GetMeeting(ctx, entry.MeetingUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			s.removeEntry(ctx, entry)
		}
		return err
	}

	agent, err := s.agentRepo.GetAgent(ctx, meeting.AgentUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			// The meeting is already active with no agent to join. Operator
			// intervention is needed, retrying will not make the agent exist.
			slog.ErrorContext(ctx, "agent bound to meeting does not exist",
				"agent_uid", meeting.AgentUID, logging.ErrKey, err, logging.PriorityCritical())
			s.removeEntry(ctx, entry)
			return domain.NewNotFoundError("agent not found", err)
		}
		return err
	}

	session, err := s.videoProvider.ConnectAgent(ctx, agent, entry.CallID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect agent to call", logging.ErrKey, err)
		s.recordAttempt(ctx, entry)
		return domain.NewInternalError("failed to connect agent to call", err)
	}
	defer func() { _ = session.Close() }()

	if err := session.UpdateInstructions(ctx, agent.Instructions); err != nil {
		// The agent is on the call. Log and continue rather than retrying
		// the whole connection.
		slog.ErrorContext(ctx, "failed to update realtime session instructions",
			logging.ErrKey, err)
	}

	s.removeEntry(ctx, entry)
	slog.InfoContext(ctx, "dispatched connect_agent side effect",
		"agent_uid", agent.UID, "call_id", entry.CallID)
	return nil
}

// DispatchPending drains all pending entries, oldest first failures do not
// stop the rest.
func (s *OutboxDispatcherService) DispatchPending(ctx context.Context) error {
	entries, err := s.outboxRepo.ListPendingEntries(ctx)
	if err != nil {
		return fmt.Errorf("listing pending outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	slog.DebugContext(ctx, "draining outbox", "pending", len(entries))

	functions := make([]func() error, 0, len(entries))
	for _, entry := range entries {
		functions = append(functions, func() error {
			return s.DispatchEntry(ctx, entry)
		})
	}

	errs := s.pool.RunAll(ctx, functions...)
	for _, err := range errs {
		slog.WarnContext(ctx, "outbox entry dispatch failed, will retry",
			logging.ErrKey, err)
	}
	return nil
}

// Run drains the outbox on the given interval until the context is done.
func (s *OutboxDispatcherService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "outbox dispatcher started", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := s.DispatchPending(ctx); err != nil {
				slog.ErrorContext(ctx, "outbox drain failed", logging.ErrKey, err)
			}
		}
	}
}

// removeEntry deletes a finished entry, tolerating concurrent removal.
func (s *OutboxDispatcherService) removeEntry(ctx context.Context, entry *models.OutboxEntry) {
	current, revision, err := s.outboxRepo.GetEntryWithRevision(ctx, entry.Key())
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.WarnContext(ctx, "failed to load outbox entry for removal", logging.ErrKey, err)
		}
		return
	}
	if err := s.outboxRepo.DeleteEntry(ctx, current.Key(), revision); err != nil &&
		domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		slog.WarnContext(ctx, "failed to delete outbox entry", logging.ErrKey, err)
	}
}

// recordAttempt bumps the entry's attempt counter for observability.
func (s *OutboxDispatcherService) recordAttempt(ctx context.Context, entry *models.OutboxEntry) {
	current, revision, err := s.outboxRepo.GetEntryWithRevision(ctx, entry.Key())
	if err != nil {
		return
	}
	current.Attempts++
	current.LastTryAt = utils.TimePtr(time.Now().UTC())

	if err := s.outboxRepo.UpdateEntry(ctx, current, revision); err != nil &&
		domain.GetErrorType(err) != domain.ErrorTypeConflict {
		slog.WarnContext(ctx, "failed to record outbox attempt", logging.ErrKey, err)
	}
}
