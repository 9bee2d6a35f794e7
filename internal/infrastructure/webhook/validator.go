// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package webhook validates inbound provider webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Validator checks provider webhook authenticity. The provider signs the raw
// request body with HMAC-SHA256 using the shared API secret and sends the
// hex digest in the signature header alongside the account API key.
type Validator struct {
	apiKey    string
	apiSecret string
}

// NewValidator creates a new webhook validator.
func NewValidator(apiKey, apiSecret string) *Validator {
	return &Validator{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// ValidateSignature verifies the signature against the exact raw body bytes.
// The body must not be re-serialized before verification.
func (v *Validator) ValidateSignature(body []byte, signature string) error {
	if v.apiSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))

	// Constant-time comparison.
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("invalid webhook signature")
	}

	return nil
}

// ValidateAPIKey verifies the API key header matches the configured account key.
func (v *Validator) ValidateAPIKey(apiKey string) error {
	if v.apiKey == "" {
		return fmt.Errorf("webhook API key not configured")
	}

	if apiKey == "" {
		return fmt.Errorf("missing webhook API key")
	}

	if !hmac.Equal([]byte(apiKey), []byte(v.apiKey)) {
		return fmt.Errorf("invalid webhook API key")
	}

	return nil
}

// IsValidEvent checks if the event type is supported
func (v *Validator) IsValidEvent(eventType string) bool {
	validEvents := map[string]bool{
		"call.session_started":          true,
		"call.session_participant_left": true,
		"call.session_ended":            true,
		"call.transcription_ready":      true,
		"call.recording_ready":          true,
		"message.new":                   true,
	}

	return validEvents[eventType]
}
