// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package messaging publishes and consumes NATS JetStream messages.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

// IJetStream is the JetStream publishing interface needed by the MessageBuilder.
// It allows for mocking in tests.
type IJetStream interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// MessageBuilder builds messages and publishes them to the NATS server.
// Jobs go through JetStream so an accepted webhook never loses its work on
// a crash, the stream persists the message until a consumer acknowledges it.
type MessageBuilder struct {
	JetStream IJetStream
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(js IJetStream) *MessageBuilder {
	return &MessageBuilder{
		JetStream: js,
	}
}

// sendMessage publishes the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	ack, err := m.JetStream.Publish(ctx, subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject, "stream", ack.Stream, "sequence", ack.Sequence)
	return nil
}

// SendTranscriptEnrichment publishes one transcript enrichment job.
func (m *MessageBuilder) SendTranscriptEnrichment(ctx context.Context, data models.TranscriptEnrichmentMessage) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err)
		return err
	}

	return m.sendMessage(ctx, models.TranscriptEnrichmentSubject, dataBytes)
}
