// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

func TestComplete(t *testing.T) {
	var gotRequest completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "### Overview\nA productive session."}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	text, err := client.Complete(context.Background(), "You are a summarizer.", []models.CompletionMessage{
		{Role: models.CompletionRoleUser, Content: "Summarize this."},
	})
	require.NoError(t, err)
	assert.Equal(t, "### Overview\nA productive session.", text)

	require.Len(t, gotRequest.Messages, 2)
	assert.Equal(t, models.CompletionRoleSystem, gotRequest.Messages[0].Role)
	assert.Equal(t, "You are a summarizer.", gotRequest.Messages[0].Content)
	assert.Equal(t, models.CompletionRoleUser, gotRequest.Messages[1].Role)
	assert.Equal(t, DefaultModel, gotRequest.Model)
}

func TestCompleteErrors(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		client := NewClient(Config{})
		_, err := client.Complete(context.Background(), "", nil)
		assert.ErrorContains(t, err, "not configured")
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "", nil)
		assert.ErrorContains(t, err, "HTTP 429")
	})

	t.Run("empty completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), "", nil)
		assert.ErrorContains(t, err, "empty response")
	})
}
