// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/logging"
)

// natsConnectTimeout bounds the initial NATS connection attempt.
const natsConnectTimeout = 10 * time.Second

// keyValueStores bundles the repositories backed by NATS KV buckets.
type keyValueStores struct {
	Meeting *store.NatsMeetingRepository
	Agent   *store.NatsAgentRepository
	User    *store.NatsUserRepository
	Outbox  *store.NatsOutboxRepository
}

// setupNATS establishes the NATS connection used for both the KV stores and
// the JetStream jobs stream.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established", "url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.ErrorContext(ctx, "NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection closed")
			gracefulCloseWG.Done()
			// If the connection closes outside of a shutdown, stop the service.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Balanced by the ClosedHandler above.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// getKeyValueStores binds the repositories to their KV buckets. Buckets are
// created when missing so a fresh environment comes up without manual setup.
func getKeyValueStores(ctx context.Context, js jetstream.JetStream) (*keyValueStores, error) {
	buckets := map[string]jetstream.KeyValue{}
	for _, name := range []string{
		store.KVStoreNameMeetings,
		store.KVStoreNameAgents,
		store.KVStoreNameUsers,
		store.KVStoreNameOutbox,
	} {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket: name,
		})
		if err != nil {
			slog.ErrorContext(ctx, "error binding NATS KV bucket", logging.ErrKey, err, "bucket", name)
			return nil, err
		}
		buckets[name] = kv
	}

	return &keyValueStores{
		Meeting: store.NewNatsMeetingRepository(buckets[store.KVStoreNameMeetings]),
		Agent:   store.NewNatsAgentRepository(buckets[store.KVStoreNameAgents]),
		User:    store.NewNatsUserRepository(buckets[store.KVStoreNameUsers]),
		Outbox:  store.NewNatsOutboxRepository(buckets[store.KVStoreNameOutbox]),
	}, nil
}

// setupJobsStream creates the JetStream stream and durable consumer for
// transcript enrichment jobs.
func setupJobsStream(ctx context.Context, js jetstream.JetStream) (jetstream.Consumer, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      models.JobsStreamName,
		Subjects:  []string{models.TranscriptEnrichmentSubject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating jobs stream", logging.ErrKey, err)
		return nil, err
	}

	// Durable names cannot contain subject token separators.
	durable := strings.ReplaceAll(models.TranscriptEnrichmentQueue, ".", "-")

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: models.TranscriptEnrichmentSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       5 * time.Minute,
	})
	if err != nil {
		slog.ErrorContext(ctx, "error creating enrichment consumer", logging.ErrKey, err)
		return nil, err
	}

	return consumer, nil
}

// startEnrichmentConsumer starts consuming enrichment jobs and feeds them to
// the handler. The returned ConsumeContext must be stopped on shutdown.
func startEnrichmentConsumer(ctx context.Context, consumer jetstream.Consumer, handler *handlers.EnrichmentHandler) (jetstream.ConsumeContext, error) {
	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		handler.HandleMessage(ctx, messaging.NewJetStreamMsg(msg))
	})
	if err != nil {
		slog.ErrorContext(ctx, "error starting enrichment consumer", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "enrichment consumer started",
		"stream", models.JobsStreamName, "subject", models.TranscriptEnrichmentSubject)
	return consumeCtx, nil
}
