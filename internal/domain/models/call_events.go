// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Webhook event types delivered by the video/chat provider.
const (
	EventTypeCallSessionStarted         = "call.session_started"
	EventTypeCallSessionParticipantLeft = "call.session_participant_left"
	EventTypeCallSessionEnded           = "call.session_ended"
	EventTypeCallTranscriptionReady     = "call.transcription_ready"
	EventTypeCallRecordingReady         = "call.recording_ready"
	EventTypeMessageNew                 = "message.new"
)

// WebhookEvent is the envelope for all inbound provider events. The payload
// is kept raw until the type discriminator selects a concrete shape.
type WebhookEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"-"`
}

// ParseWebhookEvent decodes the event envelope from the raw body. The raw
// bytes are retained so the typed payload can be decoded after routing.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return &WebhookEvent{Type: envelope.Type, Payload: body}, nil
}

// CallObject is the provider's call resource embedded in session events.
// The meeting UID travels in the custom metadata bag set at call creation.
type CallObject struct {
	CID    string `json:"cid"`
	Custom struct {
		MeetingID string `json:"meetingId"`
	} `json:"custom"`
}

// CallSessionStartedPayload represents the payload for call.session_started events
type CallSessionStartedPayload struct {
	Call CallObject `json:"call"`
}

// CallSessionEndedPayload represents the payload for call.session_ended events
type CallSessionEndedPayload struct {
	Call CallObject `json:"call"`
}

// CallSessionParticipantLeftPayload represents the payload for
// call.session_participant_left events. The meeting UID must be recovered
// from the composite call_cid token, there is no structured field for it.
type CallSessionParticipantLeftPayload struct {
	CallCID string `json:"call_cid"`
}

// CallTranscriptionReadyPayload represents the payload for call.transcription_ready events
type CallTranscriptionReadyPayload struct {
	CallCID           string `json:"call_cid"`
	CallTranscription struct {
		URL string `json:"url"`
	} `json:"call_transcription"`
}

// CallRecordingReadyPayload represents the payload for call.recording_ready events
type CallRecordingReadyPayload struct {
	CallCID       string `json:"call_cid"`
	CallRecording struct {
		URL string `json:"url"`
	} `json:"call_recording"`
}

// MessageNewPayload represents the payload for message.new chat events.
// The channel ID is the meeting UID of the channel's meeting.
type MessageNewPayload struct {
	ChannelID   string `json:"channel_id"`
	ChannelType string `json:"channel_type"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// To decodes the raw payload into the given typed shape.
func (e *WebhookEvent) To(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// ParseCallCID extracts the meeting UID from a composite "type:id" call CID
// token. The provider formats every call CID this way, so the second segment
// is taken verbatim.
func ParseCallCID(callCID string) (string, error) {
	parts := strings.SplitN(callCID, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("malformed call_cid %q: expected \"type:id\"", callCID)
	}
	return parts[1], nil
}
