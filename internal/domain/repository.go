// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error
	MeetingExists(ctx context.Context, meetingUID string) (bool, error)
	GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetMeetingWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	UpdateMeeting(ctx context.Context, meeting *models.Meeting, revision uint64) error
	ListAllMeetings(ctx context.Context) ([]*models.Meeting, error)
}

// AgentRepository defines the interface for agent storage operations.
type AgentRepository interface {
	GetAgent(ctx context.Context, agentUID string) (*models.Agent, error)
	AgentExists(ctx context.Context, agentUID string) (bool, error)
}

// UserRepository defines the interface for user storage operations.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUsers(ctx context.Context, userUIDs []string) (map[string]*models.User, error)
}

// OutboxRepository defines the interface for durable side-effect entries.
// Entries are keyed by kind and meeting so redelivered webhooks collapse
// onto the same pending entry.
type OutboxRepository interface {
	CreateEntry(ctx context.Context, entry *models.OutboxEntry) error
	GetEntryWithRevision(ctx context.Context, key string) (*models.OutboxEntry, uint64, error)
	UpdateEntry(ctx context.Context, entry *models.OutboxEntry, revision uint64) error
	DeleteEntry(ctx context.Context, key string, revision uint64) error
	ListPendingEntries(ctx context.Context) ([]*models.OutboxEntry, error)
}
