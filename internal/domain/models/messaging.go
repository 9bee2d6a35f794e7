// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects and streams used by the service.
const (
	// TranscriptEnrichmentSubject is the subject transcript enrichment jobs
	// are published on.
	TranscriptEnrichmentSubject = "lfx.agent-meeting.transcript_enrichment"

	// TranscriptEnrichmentQueue is the queue group for the enrichment
	// consumer so jobs are load balanced across service instances.
	TranscriptEnrichmentQueue = "lfx.agent-meeting-service.enrichment"

	// JobsStreamName is the JetStream stream holding enrichment jobs.
	JobsStreamName = "AGENT_MEETING_JOBS"
)

// TranscriptEnrichmentMessage is the payload of one enrichment job. The job
// is idempotent per meeting UID, re-running it regenerates the summary.
type TranscriptEnrichmentMessage struct {
	MeetingUID    string `json:"meeting_uid"`
	TranscriptURL string `json:"transcript_url"`
}
