// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package models contains the domain models for the agent meeting service.
package models

import (
	"time"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

// Meeting statuses, ordered along the lifecycle path. Cancelled is only
// reachable from Upcoming and only through the scheduling API, never from
// provider webhooks.
const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusProcessing,
		MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	}
	return false
}

// Meeting represents a scheduled, ongoing, or completed video session with an
// agent bound to it. The lifecycle coordinator is the only writer of Status,
// StartedAt, EndedAt, TranscriptURL, RecordingURL and Summary.
type Meeting struct {
	UID           string        `json:"uid"`
	Name          string        `json:"name"`
	UserUID       string        `json:"user_uid"`
	AgentUID      string        `json:"agent_uid"`
	Status        MeetingStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	TranscriptURL *string       `json:"transcript_url,omitempty"`
	RecordingURL  *string       `json:"recording_url,omitempty"`
	Summary       *string       `json:"summary,omitempty"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
}

// CanStart reports whether a session_started event may transition the
// meeting to active. Only meetings still in upcoming qualify.
func (m *Meeting) CanStart() bool {
	if m == nil {
		return false
	}
	switch m.Status {
	case MeetingStatusCompleted, MeetingStatusActive, MeetingStatusCancelled, MeetingStatusProcessing:
		return false
	}
	return true
}

// CanEnd reports whether a session_ended event may transition the meeting
// to processing.
func (m *Meeting) CanEnd() bool {
	return m != nil && m.Status == MeetingStatusActive
}
