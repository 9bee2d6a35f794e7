// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// MockOutboxRepository implements OutboxRepository for testing
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) CreateEntry(ctx context.Context, entry *models.OutboxEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetEntryWithRevision(ctx context.Context, key string) (*models.OutboxEntry, uint64, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.OutboxEntry), args.Get(1).(uint64), args.Error(2)
}

func (m *MockOutboxRepository) UpdateEntry(ctx context.Context, entry *models.OutboxEntry, revision uint64) error {
	args := m.Called(ctx, entry, revision)
	return args.Error(0)
}

func (m *MockOutboxRepository) DeleteEntry(ctx context.Context, key string, revision uint64) error {
	args := m.Called(ctx, key, revision)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListPendingEntries(ctx context.Context) ([]*models.OutboxEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutboxEntry), args.Error(1)
}
