// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// ChatUser is the provider-side identity a message is authored as.
type ChatUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatMessage is one message of a meeting's chat channel.
type ChatMessage struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Completion message roles.
const (
	CompletionRoleSystem    = "system"
	CompletionRoleUser      = "user"
	CompletionRoleAssistant = "assistant"
)

// CompletionMessage is one role-tagged turn submitted to the completion model.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
