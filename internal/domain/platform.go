// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// RealtimeSession represents an agent's live presence on a call. It is the
// handle returned when the agent joins and is used to adjust the agent's
// behavior mid-call.
type RealtimeSession interface {
	// UpdateInstructions replaces the agent's realtime instructions for the
	// remainder of the session.
	UpdateInstructions(ctx context.Context, instructions string) error

	// Close releases the session handle.
	Close() error
}

// VideoProvider defines the interface for the external video platform.
type VideoProvider interface {
	// ConnectAgent joins the agent into the given call and returns the
	// realtime session handle.
	ConnectAgent(ctx context.Context, agent *models.Agent, callID string) (RealtimeSession, error)

	// EndCall terminates the call for all participants.
	EndCall(ctx context.Context, callID string) error
}

// ChatProvider defines the interface for the chat channel attached to a meeting.
type ChatProvider interface {
	// UpsertUser ensures the agent identity exists on the chat platform.
	UpsertUser(ctx context.Context, user *models.ChatUser) error

	// RecentMessages returns up to limit of the latest messages on the
	// meeting's channel, oldest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error)

	// SendMessage posts a message to the meeting's channel as the given user.
	SendMessage(ctx context.Context, channelID string, senderUID string, text string) error
}

// Summarizer defines the interface for LLM completion used by transcript
// summarization and chat replies.
type Summarizer interface {
	Complete(ctx context.Context, system string, messages []models.CompletionMessage) (string, error)
}

// TranscriptFetcher retrieves raw transcript artifacts by URL.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, url string) ([]byte, error)
}

// WebhookValidator validates webhook authenticity before any payload is parsed.
type WebhookValidator interface {
	ValidateSignature(body []byte, signature string) error
	ValidateAPIKey(apiKey string) error
}
