// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Ack() error
	Nak() error
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// TranscriptJobSender enqueues transcript enrichment jobs for asynchronous
// processing. Publishing must be durable so an accepted webhook never loses
// its job.
type TranscriptJobSender interface {
	SendTranscriptEnrichment(ctx context.Context, data models.TranscriptEnrichmentMessage) error
}

// MessageBuilder is the main interface that composes all messaging capabilities.
type MessageBuilder interface {
	TranscriptJobSender
}
