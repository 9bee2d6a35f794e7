// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// OutboxKind identifies the side effect an outbox entry carries.
type OutboxKind string

const (
	// OutboxKindConnectAgent joins the bound agent into an active call.
	OutboxKindConnectAgent OutboxKind = "connect_agent"
)

// OutboxEntry is a durable record of a side effect owed after a state
// transition committed. Entries are written before the side effect is
// attempted and deleted once it succeeds, so a crash in between leaves the
// entry for the background dispatcher to retry.
type OutboxEntry struct {
	Kind       OutboxKind `json:"kind"`
	MeetingUID string     `json:"meeting_uid"`
	CallID     string     `json:"call_id"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
	LastTryAt  *time.Time `json:"last_try_at,omitempty"`
}

// Key returns the storage key for the entry. Keying on kind and meeting
// collapses redelivered webhooks onto one pending side effect.
func (e *OutboxEntry) Key() string {
	return string(e.Kind) + "." + e.MeetingUID
}
