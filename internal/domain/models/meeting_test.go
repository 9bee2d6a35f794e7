// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeetingStatusIsValid(t *testing.T) {
	valid := []MeetingStatus{
		MeetingStatusUpcoming,
		MeetingStatusActive,
		MeetingStatusProcessing,
		MeetingStatusCompleted,
		MeetingStatusCancelled,
	}
	for _, status := range valid {
		assert.True(t, status.IsValid(), "expected %q to be valid", status)
	}

	assert.False(t, MeetingStatus("").IsValid())
	assert.False(t, MeetingStatus("archived").IsValid())
}

func TestMeetingCanStart(t *testing.T) {
	tests := []struct {
		status MeetingStatus
		want   bool
	}{
		{MeetingStatusUpcoming, true},
		{MeetingStatusActive, false},
		{MeetingStatusProcessing, false},
		{MeetingStatusCompleted, false},
		{MeetingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			m := &Meeting{UID: "m1", Status: tt.status}
			assert.Equal(t, tt.want, m.CanStart())
		})
	}

	var nilMeeting *Meeting
	assert.False(t, nilMeeting.CanStart())
}

func TestMeetingCanEnd(t *testing.T) {
	assert.True(t, (&Meeting{Status: MeetingStatusActive}).CanEnd())
	assert.False(t, (&Meeting{Status: MeetingStatusUpcoming}).CanEnd())
	assert.False(t, (&Meeting{Status: MeetingStatusProcessing}).CanEnd())

	var nilMeeting *Meeting
	assert.False(t, nilMeeting.CanEnd())
}

func TestOutboxEntryKey(t *testing.T) {
	entry := &OutboxEntry{Kind: OutboxKindConnectAgent, MeetingUID: "meeting-1"}
	assert.Equal(t, "connect_agent.meeting-1", entry.Key())
}
