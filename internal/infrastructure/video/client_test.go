// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package video

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

func TestConnectAgent(t *testing.T) {
	var gotConnect connectAgentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/calls/default/meeting-1/agent":
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotConnect))
			_, _ = w.Write([]byte(`{"session_id":"sess-42"}`))
		case "/calls/default/meeting-1/agent/sess-42":
			assert.Equal(t, http.MethodPatch, r.Method)
			var update updateSessionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
			assert.Equal(t, "be brief", update.Instructions)
			_, _ = w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", APISecret: "s", BaseURL: server.URL})

	agent := &models.Agent{UID: "agent-1", Instructions: "be helpful"}
	session, err := client.ConnectAgent(context.Background(), agent, "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", gotConnect.AgentUserID)
	assert.Equal(t, "be helpful", gotConnect.Instructions)

	require.NoError(t, session.UpdateInstructions(context.Background(), "be brief"))
	assert.NoError(t, session.Close())
}

func TestEndCall(t *testing.T) {
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls/default/meeting-1/mark_ended", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		called = true
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", APISecret: "s", BaseURL: server.URL})

	require.NoError(t, client.EndCall(context.Background(), "meeting-1"))
	assert.True(t, called)
}

func TestEndCallProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":16,"message":"call not found"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", APISecret: "s", BaseURL: server.URL})

	err := client.EndCall(context.Background(), "meeting-9")
	assert.ErrorContains(t, err, "call not found")
}
