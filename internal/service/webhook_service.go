// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

// WebhookService is the ingress gate and router for provider webhook
// deliveries. Authentication happens against the raw body bytes before any
// parsing or storage access.
type WebhookService struct {
	validator domain.WebhookValidator
	lifecycle *MeetingLifecycleService
	chat      *ChatMessageService
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	validator domain.WebhookValidator,
	lifecycle *MeetingLifecycleService,
	chat *ChatMessageService,
) *WebhookService {
	return &WebhookService{
		validator: validator,
		lifecycle: lifecycle,
		chat:      chat,
	}
}

// ServiceReady checks if the service is ready to serve requests.
func (s *WebhookService) ServiceReady() bool {
	return s.validator != nil &&
		s.lifecycle != nil && s.lifecycle.ServiceReady() &&
		s.chat != nil && s.chat.ServiceReady()
}

// HandleWebhook validates, parses, and routes one webhook delivery.
// The body must be the exact raw request bytes.
func (s *WebhookService) HandleWebhook(ctx context.Context, body []byte, signature, apiKey string) error {
	// Header presence is checked before anything touches the body.
	if signature == "" || apiKey == "" {
		return domain.NewValidationError("missing signature or apikey")
	}

	if err := s.validator.ValidateAPIKey(apiKey); err != nil {
		return domain.NewUnauthenticatedError("invalid API key", err)
	}
	if err := s.validator.ValidateSignature(body, signature); err != nil {
		return domain.NewUnauthenticatedError("invalid signature", err)
	}

	event, err := models.ParseWebhookEvent(body)
	if err != nil {
		return domain.NewValidationError("invalid payload", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", event.Type))
	slog.DebugContext(ctx, "routing webhook event")

	return s.routeEvent(ctx, event)
}

// routeEvent dispatches on the event type discriminator. Exactly one handler
// runs per delivery. Unknown types are deliberate no-ops, the provider
// stops redelivering only on a success response.
func (s *WebhookService) routeEvent(ctx context.Context, event *models.WebhookEvent) error {
	switch event.Type {
	case models.EventTypeCallSessionStarted:
		var payload models.CallSessionStartedPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.lifecycle.HandleSessionStarted(ctx, &payload)

	case models.EventTypeCallSessionParticipantLeft:
		var payload models.CallSessionParticipantLeftPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.lifecycle.HandleParticipantLeft(ctx, &payload)

	case models.EventTypeCallSessionEnded:
		var payload models.CallSessionEndedPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.lifecycle.HandleSessionEnded(ctx, &payload)

	case models.EventTypeCallTranscriptionReady:
		var payload models.CallTranscriptionReadyPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.lifecycle.HandleTranscriptionReady(ctx, &payload)

	case models.EventTypeCallRecordingReady:
		var payload models.CallRecordingReadyPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.lifecycle.HandleRecordingReady(ctx, &payload)

	case models.EventTypeMessageNew:
		var payload models.MessageNewPayload
		if err := event.To(&payload); err != nil {
			return domain.NewValidationError("invalid payload", err)
		}
		return s.chat.HandleMessageNew(ctx, &payload)

	default:
		slog.DebugContext(ctx, "ignoring unhandled webhook event type")
		return nil
	}
}
