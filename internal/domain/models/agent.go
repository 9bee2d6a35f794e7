// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// Agent represents an AI persona that joins meetings on behalf of a user.
// The coordinator reads agents to seed realtime sessions and summaries but
// never mutates them.
type Agent struct {
	UID          string     `json:"uid"`
	UserUID      string     `json:"user_uid"`
	Name         string     `json:"name"`
	Instructions string     `json:"instructions"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// User represents the human owner of meetings and agents.
type User struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
