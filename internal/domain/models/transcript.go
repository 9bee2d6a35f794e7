// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// TranscriptItem is one timestamped speech segment of a provider transcript
// artifact. Items are ephemeral, only the derived summary is persisted.
type TranscriptItem struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	StartTs   int64  `json:"start_ts"`
	StopTs    int64  `json:"stop_ts"`
}

// EnrichedTranscriptItem is a transcript item annotated with the resolved
// speaker display name.
type EnrichedTranscriptItem struct {
	TranscriptItem
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// ParseTranscript decodes a newline-delimited JSON transcript artifact.
// Blank lines are skipped. A line that fails to decode fails the whole
// parse, partial transcripts are worse than a retried fetch.
func ParseTranscript(data []byte) ([]TranscriptItem, error) {
	var items []TranscriptItem

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var item TranscriptItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parsing transcript line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return items, nil
}

// SpeakerIDs returns the distinct speaker identifiers across the items, in
// order of first appearance.
func SpeakerIDs(items []TranscriptItem) []string {
	seen := make(map[string]bool, len(items))
	var ids []string
	for _, item := range items {
		if item.SpeakerID == "" || seen[item.SpeakerID] {
			continue
		}
		seen[item.SpeakerID] = true
		ids = append(ids, item.SpeakerID)
	}
	return ids
}
