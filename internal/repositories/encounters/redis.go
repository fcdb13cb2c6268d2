package encounters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chronica-rpg/chronica/internal/domain/combat"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// activeKey indexes the single encounter currently being fought. Starting a
// new encounter while one is active is rejected at the service layer.
const activeKey = "encounter:active"

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds the dependencies of the Redis encounter repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a Redis-backed encounter repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	return &redisRepo{client: cfg.Client}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("encounter:%s", id)
}

// Create stores a new encounter
func (r *redisRepo) Create(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return apperrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(enc.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check encounter existence: %w", err)
	}
	if exists > 0 {
		return apperrors.AlreadyExistsf("encounter with ID '%s' already exists", enc.ID).
			WithMeta("encounter_id", enc.ID)
	}

	return r.store(ctx, enc)
}

// Get retrieves an encounter by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("encounter ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, apperrors.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get encounter: %w", err)
	}

	var enc combat.Encounter
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &enc); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal encounter: %w", unmarshalErr)
	}
	return &enc, nil
}

// GetActive retrieves the encounter currently being fought
func (r *redisRepo) GetActive(ctx context.Context) (*combat.Encounter, error) {
	id, err := r.client.Get(ctx, activeKey).Result()
	if err == redis.Nil {
		return nil, apperrors.NotFound("no active encounter")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active encounter ID: %w", err)
	}
	return r.Get(ctx, id)
}

// Update overwrites an existing encounter
func (r *redisRepo) Update(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return apperrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(enc.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check encounter existence: %w", err)
	}
	if exists == 0 {
		return apperrors.NotFoundf("encounter with ID '%s' not found", enc.ID).
			WithMeta("encounter_id", enc.ID)
	}

	return r.store(ctx, enc)
}

// store writes the encounter document and maintains the active index
func (r *redisRepo) store(ctx context.Context, enc *combat.Encounter) error {
	jsonData, err := json.Marshal(enc)
	if err != nil {
		return fmt.Errorf("failed to marshal encounter: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(enc.ID), string(jsonData), 0)
	if enc.Status == combat.StatusActive || enc.Status == combat.StatusRolling || enc.Status == combat.StatusSetup {
		pipe.Set(ctx, activeKey, enc.ID, 0)
	} else {
		pipe.Del(ctx, activeKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store encounter: %w", err)
	}
	return nil
}

// Delete removes an encounter
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("encounter ID is required")
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.Del(ctx, activeKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete encounter: %w", err)
	}
	return nil
}
