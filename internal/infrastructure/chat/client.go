// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package chat integrates with the external chat channel provider.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

const (
	// DefaultChannelType is the provider channel type used for meeting chats.
	DefaultChannelType = "messaging"
	// DefaultClientTimeout is the default HTTP client timeout for provider requests
	DefaultClientTimeout = 30 * time.Second
)

// ClientAPI defines the interface for chat provider operations.
// This allows for easy mocking and testing of the chat client.
type ClientAPI interface {
	UpsertUser(ctx context.Context, user *models.ChatUser) error
	RecentMessages(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, channelID string, senderUID string, text string) error
}

// Config holds the configuration for the chat client
type Config struct {
	APIKey    string
	APISecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client represents a chat provider API client
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new chat provider API client
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

// UpsertUser ensures the identity exists on the chat platform so messages
// can be authored as it.
func (c *Client) UpsertUser(ctx context.Context, user *models.ChatUser) error {
	body := map[string]any{
		"users": map[string]any{
			user.ID: user,
		},
	}

	if err := c.doRequest(ctx, http.MethodPost, "/users", body, nil); err != nil {
		return fmt.Errorf("upserting chat user %s: %w", user.ID, err)
	}
	return nil
}

// RecentMessages returns up to limit of the channel's latest messages,
// oldest first.
func (c *Client) RecentMessages(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error) {
	path := fmt.Sprintf("/channels/%s/%s/messages?%s",
		DefaultChannelType, url.PathEscape(channelID),
		url.Values{"limit": []string{strconv.Itoa(limit)}}.Encode())

	var resp struct {
		Messages []struct {
			Text string `json:"text"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"messages"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing messages for channel %s: %w", channelID, err)
	}

	messages := make([]models.ChatMessage, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		messages = append(messages, models.ChatMessage{
			UserID:    msg.User.ID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		})
	}
	return messages, nil
}

// SendMessage posts a message to the channel authored as the given user.
func (c *Client) SendMessage(ctx context.Context, channelID string, senderUID string, text string) error {
	path := fmt.Sprintf("/channels/%s/%s/message", DefaultChannelType, url.PathEscape(channelID))

	body := map[string]any{
		"message": map[string]any{
			"text":    text,
			"user_id": senderUID,
		},
	}
	if err := c.doRequest(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("sending message to channel %s: %w", channelID, err)
	}

	slog.InfoContext(ctx, "sent chat message", "channel_id", channelID, "sender_uid", senderUID)
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
		slog.ErrorContext(ctx, "chat provider request failed",
			"method", method, "path", path, logging.ErrKey, err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	slog.DebugContext(ctx, "chat provider request completed",
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
		var errResp struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("chat provider error (HTTP %d, code %d): %s", resp.StatusCode, errResp.Code, errResp.Message)
		}
		return fmt.Errorf("chat provider error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}
