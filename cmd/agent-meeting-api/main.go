// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the agent meeting service API that validates and routes
// provider webhooks, coordinates the meeting lifecycle, and runs the
// transcript enrichment consumer.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/chat"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/summarizer"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/transcript"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/video"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/webhook"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/service"
)

func main() {
	// Load a local .env when present, real deployments set the environment.
	_ = godotenv.Load()

	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JetStream")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, js)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize provider clients
	webhookValidator := webhook.NewValidator(env.WebhookConfig.APIKey, env.WebhookConfig.APISecret)
	videoClient := video.NewClient(video.Config{
		APIKey:    env.VideoConfig.APIKey,
		APISecret: env.VideoConfig.APISecret,
		BaseURL:   env.VideoConfig.BaseURL,
	})
	chatClient := chat.NewClient(chat.Config{
		APIKey:    env.ChatConfig.APIKey,
		APISecret: env.ChatConfig.APISecret,
		BaseURL:   env.ChatConfig.BaseURL,
	})
	summarizerClient := summarizer.NewClient(summarizer.Config{
		APIKey:  env.SummarizerConfig.APIKey,
		Model:   env.SummarizerConfig.Model,
		BaseURL: env.SummarizerConfig.BaseURL,
	})
	transcriptFetcher := transcript.NewFetcher(0)

	// Initialize services
	messageBuilder := messaging.NewMessageBuilder(js)
	outboxDispatcher := service.NewOutboxDispatcherService(
		repos.Outbox,
		repos.Meeting,
		repos.Agent,
		videoClient,
	)
	lifecycleService := service.NewMeetingLifecycleService(
		repos.Meeting,
		repos.Outbox,
		videoClient,
		messageBuilder,
		outboxDispatcher,
	)
	chatService := service.NewChatMessageService(
		repos.Meeting,
		repos.Agent,
		chatClient,
		summarizerClient,
	)
	webhookService := service.NewWebhookService(
		webhookValidator,
		lifecycleService,
		chatService,
	)
	enrichmentService := service.NewTranscriptEnrichmentService(
		repos.Meeting,
		repos.Agent,
		repos.User,
		transcriptFetcher,
		summarizerClient,
	)

	// Initialize handlers
	enrichmentHandler := handlers.NewEnrichmentHandler(enrichmentService)

	api := NewAgentMeetingAPI(webhookService, enrichmentHandler)

	httpServer := setupHTTPServer(flags, api, &gracefulCloseWG)

	// Create the jobs stream and start consuming enrichment jobs.
	consumer, err := setupJobsStream(ctx, js)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up jobs stream")
		return
	}
	consumeCtx, err := startEnrichmentConsumer(ctx, consumer, enrichmentHandler)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error starting enrichment consumer")
		return
	}

	// Retry pending side effects in the background.
	go outboxDispatcher.Run(ctx, env.OutboxDrainInterval)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, consumeCtx, &gracefulCloseWG, cancel)
}

// gracefulShutdown stops the HTTP server, the enrichment consumer, and the
// NATS connection, waiting for in-flight work to finish.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	consumeCtx jetstream.ConsumeContext,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("shutting down")

	// Stop delivering new jobs before the services wind down.
	consumeCtx.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	// Stop the outbox dispatcher loop.
	cancel()

	// Drain flushes pending publishes and triggers the ClosedHandler.
	if err := natsConn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
