// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-agent-meeting-service/internal/domain/models"
)

// NatsUserRepository is the NATS KV store repository for users.
type NatsUserRepository struct {
	*NatsBaseRepository[models.User]
}

// NewNatsUserRepository creates a new NATS KV store repository for users.
func NewNatsUserRepository(kvStore INatsKeyValue) *NatsUserRepository {
	return &NatsUserRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.User](kvStore, "user"),
	}
}

func (s *NatsUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.Get(ctx, userUID)
}

// GetUsers resolves a batch of user UIDs. UIDs with no matching record are
// simply absent from the result, speaker resolution treats them as unknown.
func (s *NatsUserRepository) GetUsers(ctx context.Context, userUIDs []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(userUIDs))
	for _, uid := range userUIDs {
		user, err := s.Get(ctx, uid)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				continue
			}
			return nil, err
		}
		users[uid] = user
	}
	return users, nil
}
