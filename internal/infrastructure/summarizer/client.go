// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package summarizer calls the hosted completion model.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-4o"
	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 4096
	// DefaultClientTimeout is the default HTTP client timeout for completion requests.
	// Summarizing a long transcript can take a while.
	DefaultClientTimeout = 120 * time.Second
)

// ClientAPI defines the interface for completion operations.
// This allows for easy mocking and testing of the summarizer client.
type ClientAPI interface {
	Complete(ctx context.Context, system string, messages []models.CompletionMessage) (string, error)
}

// Config holds the configuration for the summarizer client
type Config struct {
	APIKey string
	// Optional: override model
	Model string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override max completion tokens
	MaxTokens int
}

// Client represents a completion model API client
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new summarizer client
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

type completionRequest struct {
	Model     string                     `json:"model"`
	MaxTokens int                        `json:"max_tokens"`
	Messages  []models.CompletionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete submits a role-tagged conversation to the completion model and
// returns the generated text. The system block is prepended as the first
// message.
func (c *Client) Complete(ctx context.Context, system string, messages []models.CompletionMessage) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("completion API key not configured")
	}

	request := completionRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
	}
	if system != "" {
		request.Messages = append(request.Messages, models.CompletionMessage{
			Role:    models.CompletionRoleSystem,
			Content: system,
		})
	}
	request.Messages = append(request.Messages, messages...)

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "completion request failed", logging.ErrKey, err)
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	slog.DebugContext(ctx, "completion request completed",
		"model", c.config.Model,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp completionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("completion API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from completion API")
	}

	return apiResp.Choices[0].Message.Content, nil
}
