// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package handlers consumes NATS messages and invokes the service layer.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/service"
)

// EnrichmentHandler consumes transcript enrichment jobs from the jobs
// stream. Acknowledgment drives redelivery: a job that fails is NAKed so
// the stream hands it to another attempt.
type EnrichmentHandler struct {
	enrichmentService *service.TranscriptEnrichmentService
}

// NewEnrichmentHandler creates a new enrichment job handler.
func NewEnrichmentHandler(enrichmentService *service.TranscriptEnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
	}
}

// HandlerReady implements [domain.MessageHandler] interface
func (h *EnrichmentHandler) HandlerReady() bool {
	return h.enrichmentService != nil && h.enrichmentService.ServiceReady()
}

// HandleMessage implements [domain.MessageHandler] interface
func (h *EnrichmentHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	if subject != models.TranscriptEnrichmentSubject {
		slog.WarnContext(ctx, "unknown subject, dropping message")
		h.ack(ctx, msg)
		return
	}

	var job models.TranscriptEnrichmentMessage
	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		slog.ErrorContext(ctx, "invalid enrichment job payload, dropping message",
			logging.ErrKey, err)
		// Redelivering a malformed payload can never succeed.
		h.ack(ctx, msg)
		return
	}

	if err := h.enrichmentService.ProcessEnrichment(ctx, job); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeValidation {
			slog.ErrorContext(ctx, "unprocessable enrichment job, dropping message",
				logging.ErrKey, err)
			h.ack(ctx, msg)
			return
		}

		slog.ErrorContext(ctx, "enrichment job failed, requesting redelivery",
			logging.ErrKey, err)
		if nakErr := msg.Nak(); nakErr != nil {
			slog.ErrorContext(ctx, "error naking NATS message", logging.ErrKey, nakErr)
		}
		return
	}

	h.ack(ctx, msg)
}

func (h *EnrichmentHandler) ack(ctx context.Context, msg domain.Message) {
	if err := msg.Ack(); err != nil {
		slog.ErrorContext(ctx, "error acking NATS message", logging.ErrKey, err)
	}
}
