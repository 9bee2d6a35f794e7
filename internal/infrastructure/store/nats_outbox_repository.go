// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// NatsOutboxRepository is the NATS KV store repository for pending
// side-effect entries.
type NatsOutboxRepository struct {
	*NatsBaseRepository[models.OutboxEntry]
}

// NewNatsOutboxRepository creates a new NATS KV store repository for outbox entries.
func NewNatsOutboxRepository(kvStore INatsKeyValue) *NatsOutboxRepository {
	return &NatsOutboxRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.OutboxEntry](kvStore, "outbox entry"),
	}
}

func (s *NatsOutboxRepository) CreateEntry(ctx context.Context, entry *models.OutboxEntry) error {
	return s.Create(ctx, entry.Key(), entry)
}

func (s *NatsOutboxRepository) GetEntryWithRevision(ctx context.Context, key string) (*models.OutboxEntry, uint64, error) {
	return s.GetWithRevision(ctx, key)
}

func (s *NatsOutboxRepository) UpdateEntry(ctx context.Context, entry *models.OutboxEntry, revision uint64) error {
	return s.Update(ctx, entry.Key(), entry, revision)
}

func (s *NatsOutboxRepository) DeleteEntry(ctx context.Context, key string, revision uint64) error {
	return s.Delete(ctx, key, revision)
}

func (s *NatsOutboxRepository) ListPendingEntries(ctx context.Context) ([]*models.OutboxEntry, error) {
	return s.ListEntities(ctx)
}
