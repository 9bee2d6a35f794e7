// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package transcript retrieves transcript artifacts from provider storage.
package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

const (
	// DefaultClientTimeout is the default HTTP client timeout for artifact downloads
	DefaultClientTimeout = 60 * time.Second

	// maxArtifactSize bounds how much transcript data is read into memory.
	maxArtifactSize = 64 << 20 // 64 MiB
)

// Fetcher downloads transcript artifacts over HTTP. Artifact URLs come from
// the provider's webhook payloads and are pre-signed.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a new transcript artifact fetcher.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = DefaultClientTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTranscript returns the exact bytes of the artifact at the given URL.
func (f *Fetcher) FetchTranscript(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "transcript fetch failed", logging.ErrKey, err, "url", url)
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript fetch returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize))
	if err != nil {
		return nil, fmt.Errorf("reading transcript body: %w", err)
	}

	slog.DebugContext(ctx, "fetched transcript artifact",
		"url", url,
		"bytes", len(data),
		"duration", time.Since(start).String(),
	)

	return data, nil
}
