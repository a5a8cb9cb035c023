package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hari13172/alumni-portal-api/internal/models"
	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
)

const draftKeyPrefix = "draft:"

// DraftRepository stores in-progress registration drafts in Redis.
// Drafts expire with a TTL so abandoned registrations clean themselves up.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDraftRepository constructs a draft repository.
func NewDraftRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DraftRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftRepository{client: client, ttl: ttl, logger: logger}
}

// Get retrieves a draft by ID. A missing or expired draft returns
// ErrDraftNotFound.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.Draft, error) {
	raw, err := r.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get draft %s: %w", id, err)
	}
	var draft models.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Save stores the draft, refreshing its TTL.
func (r *DraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	draft.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	if err := r.client.Set(ctx, draftKeyPrefix+draft.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.ID, err)
	}
	return nil
}

// Delete removes a draft. Deleting an absent draft is not an error.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", id, err)
	}
	return nil
}
