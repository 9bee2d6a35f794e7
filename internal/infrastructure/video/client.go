// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package video integrates with the external video call provider.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

const (
	// DefaultCallType is the provider call type used for agent meetings.
	DefaultCallType = "default"
	// DefaultClientTimeout is the default HTTP client timeout for provider requests
	DefaultClientTimeout = 30 * time.Second
)

// ClientAPI defines the interface for video provider operations.
// This allows for easy mocking and testing of the video client.
type ClientAPI interface {
	ConnectAgent(ctx context.Context, agent *models.Agent, callID string) (domain.RealtimeSession, error)
	EndCall(ctx context.Context, callID string) error
}

// Config holds the configuration for the video client
type Config struct {
	APIKey    string
	APISecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client represents a video provider API client
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new video provider API client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// connectAgentRequest is the request body for joining an agent into a call.
type connectAgentRequest struct {
	AgentUserID  string `json:"agent_user_id"`
	Instructions string `json:"instructions"`
}

// connectAgentResponse is the provider's handle for the realtime session.
type connectAgentResponse struct {
	SessionID string `json:"session_id"`
}

// updateSessionRequest updates the realtime session instructions.
type updateSessionRequest struct {
	Instructions string `json:"instructions"`
}

// ConnectAgent joins the agent into the call and seeds the realtime session
// with the agent's instructions.
func (c *Client) ConnectAgent(ctx context.Context, agent *models.Agent, callID string) (domain.RealtimeSession, error) {
	path := fmt.Sprintf("/calls/%s/%s/agent", DefaultCallType, callID)

	var resp connectAgentResponse
	err := c.doRequest(ctx, http.MethodPost, path, &connectAgentRequest{
		AgentUserID:  agent.UID,
		Instructions: agent.Instructions,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("connecting agent to call %s: %w", callID, err)
	}

	slog.InfoContext(ctx, "connected agent to call",
		"call_id", callID,
		"agent_uid", agent.UID,
		"session_id", resp.SessionID,
	)

	return &realtimeSession{
		client:    c,
		callID:    callID,
		sessionID: resp.SessionID,
	}, nil
}

// EndCall terminates the call for all participants.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	path := fmt.Sprintf("/calls/%s/%s/mark_ended", DefaultCallType, callID)

	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("ending call %s: %w", callID, err)
	}

	slog.InfoContext(ctx, "ended call", "call_id", callID)
	return nil
}

// doRequest performs an authenticated HTTP request against the provider API.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.config.APISecret)
	req.Header.Set("X-Api-Key", c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "video provider request failed",
			"method", method, "path", path, logging.ErrKey, err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	slog.DebugContext(ctx, "video provider request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseErrorResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// parseErrorResponse attempts to parse a provider API error response
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("video provider error (HTTP %d, code %d): %s", statusCode, errResp.Code, errResp.Message)
	}
	return fmt.Errorf("video provider error (HTTP %d): %s", statusCode, string(body))
}

// realtimeSession is the live agent session handle returned by ConnectAgent.
type realtimeSession struct {
	client    *Client
	callID    string
	sessionID string
}

func (s *realtimeSession) UpdateInstructions(ctx context.Context, instructions string) error {
	path := fmt.Sprintf("/calls/%s/%s/agent/%s", DefaultCallType, s.callID, s.sessionID)

	err := s.client.doRequest(ctx, http.MethodPatch, path, &updateSessionRequest{
		Instructions: instructions,
	}, nil)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", s.sessionID, err)
	}
	return nil
}

func (s *realtimeSession) Close() error {
	// The provider tears the session down with the call. Nothing to release
	// client side.
	return nil
}
