// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/constants"
)

// AgentMeetingAPI is the HTTP surface of the service: the webhook ingress
// endpoint plus health probes.
type AgentMeetingAPI struct {
	webhookService    *service.WebhookService
	enrichmentHandler *handlers.EnrichmentHandler
}

// NewAgentMeetingAPI creates a new API with the given services.
func NewAgentMeetingAPI(
	webhookService *service.WebhookService,
	enrichmentHandler *handlers.EnrichmentHandler,
) *AgentMeetingAPI {
	return &AgentMeetingAPI{
		webhookService:    webhookService,
		enrichmentHandler: enrichmentHandler,
	}
}

// HandleCallWebhook handles POST /webhooks/call. The raw body captured by the
// middleware is validated before any parsing happens.
func (a *AgentMeetingAPI) HandleCallWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			slog.ErrorContext(ctx, "error reading webhook body", logging.ErrKey, err)
			writeError(w, domain.NewValidationError("failed to read request body", err))
			return
		}
	}

	signature := r.Header.Get(constants.SignatureHeader)
	apiKey := r.Header.Get(constants.APIKeyHeader)

	if err := a.webhookService.HandleWebhook(ctx, body, signature, apiKey); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Livez handles GET /livez.
func (a *AgentMeetingAPI) Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz handles GET /readyz. The service is ready once every dependency of
// the webhook path and the enrichment consumer is wired.
func (a *AgentMeetingAPI) Readyz(w http.ResponseWriter, _ *http.Request) {
	if a.webhookService == nil || !a.webhookService.ServiceReady() ||
		a.enrichmentHandler == nil || !a.enrichmentHandler.HandlerReady() {
		http.Error(w, "service not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeError maps a domain error onto an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeUnauthenticated:
		status = http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("error encoding HTTP response", logging.ErrKey, err)
	}
}
