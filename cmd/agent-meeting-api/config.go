// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/pkg/utils"
)

// flags are the command line flags for the agent meeting service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the agent meeting service.
type environment struct {
	Port                string
	NatsURL             string
	WebhookConfig       webhookConfig
	VideoConfig         providerConfig
	ChatConfig          providerConfig
	SummarizerConfig    summarizerConfig
	OutboxDrainInterval time.Duration
}

// webhookConfig holds the credentials webhook deliveries are validated against.
type webhookConfig struct {
	APIKey    string
	APISecret string
}

// providerConfig holds credentials for one provider REST API.
type providerConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// summarizerConfig holds the completion model API configuration.
type summarizerConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// parseFlags parses command line flags for the agent meeting service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the agent meeting service
func parseEnv() environment {
	port := utils.CoalesceString(os.Getenv("PORT"), "8080")

	natsURL := utils.CoalesceString(
		os.Getenv("NATS_URL"),
		"nats://lfx-platform-nats.lfx.svc.cluster.local:4222",
	)

	drainInterval := service.DefaultDrainInterval
	if raw := os.Getenv("OUTBOX_DRAIN_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			slog.With(logging.ErrKey, err, "value", raw).
				Error("invalid OUTBOX_DRAIN_INTERVAL provided, using default")
		} else {
			drainInterval = parsed
		}
	}

	return environment{
		Port:                port,
		NatsURL:             natsURL,
		WebhookConfig:       parseWebhookConfig(),
		VideoConfig:         parseProviderConfig("VIDEO"),
		ChatConfig:          parseProviderConfig("CHAT"),
		SummarizerConfig:    parseSummarizerConfig(),
		OutboxDrainInterval: drainInterval,
	}
}

// parseWebhookConfig parses the webhook validation credentials. Both values
// are required, without them every delivery would be rejected.
func parseWebhookConfig() webhookConfig {
	apiKey := os.Getenv("WEBHOOK_API_KEY")
	if apiKey == "" {
		slog.Error("WEBHOOK_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	apiSecret := os.Getenv("WEBHOOK_API_SECRET")
	if apiSecret == "" {
		slog.Error("WEBHOOK_API_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return webhookConfig{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
}

// parseProviderConfig parses credentials for one provider API from
// environment variables sharing the given prefix.
func parseProviderConfig(prefix string) providerConfig {
	apiKey := os.Getenv(prefix + "_API_KEY")
	if apiKey == "" {
		slog.Error(prefix + "_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	apiSecret := os.Getenv(prefix + "_API_SECRET")
	if apiSecret == "" {
		slog.Error(prefix + "_API_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return providerConfig{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   os.Getenv(prefix + "_BASE_URL"),
	}
}

// parseSummarizerConfig parses the completion model API configuration
func parseSummarizerConfig() summarizerConfig {
	apiKey := os.Getenv("SUMMARIZER_API_KEY")
	if apiKey == "" {
		slog.Error("SUMMARIZER_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	return summarizerConfig{
		APIKey:  apiKey,
		Model:   os.Getenv("SUMMARIZER_MODEL"),
		BaseURL: os.Getenv("SUMMARIZER_BASE_URL"),
	}
}
