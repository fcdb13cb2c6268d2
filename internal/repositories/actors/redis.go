package actors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chronica-rpg/chronica/internal/domain/actor"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

// actorDocument is the serialized form of an actor in Redis
type actorDocument struct {
	Actor     *actor.Actor `json:"actor"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds the dependencies of the Redis actor repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a Redis-backed actor repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	return &redisRepo{client: cfg.Client}
}

// key generates the Redis key for an actor
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("actor:%s", id)
}

// ownerActorsKey generates the Redis key for a participant's actor list
func (r *redisRepo) ownerActorsKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:actors", ownerID)
}

// Create stores a new actor
func (r *redisRepo) Create(ctx context.Context, a *actor.Actor) error {
	if a == nil {
		return apperrors.InvalidArgument("actor cannot be nil")
	}
	if a.ID == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}
	if a.OwnerID == "" {
		return apperrors.InvalidArgument("actor owner ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(a.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check actor existence: %w", err)
	}
	if exists > 0 {
		return apperrors.AlreadyExistsf("actor with ID '%s' already exists", a.ID).
			WithMeta("actor_id", a.ID)
	}

	now := time.Now().UTC()
	jsonData, err := json.Marshal(&actorDocument{Actor: a, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(a.ID), string(jsonData), 0)
	pipe.SAdd(ctx, r.ownerActorsKey(a.OwnerID), a.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}
	return nil
}

// Get retrieves an actor by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*actor.Actor, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("actor ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, apperrors.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	var doc actorDocument
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", unmarshalErr)
	}
	return doc.Actor, nil
}

// GetByOwner retrieves all actors belonging to a participant
func (r *redisRepo) GetByOwner(ctx context.Context, ownerID string) ([]*actor.Actor, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerActorsKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list actor IDs: %w", err)
	}

	result := make([]*actor.Actor, 0, len(ids))
	for _, id := range ids {
		a, err := r.Get(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				// stale index entry
				continue
			}
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// Update overwrites an existing actor
func (r *redisRepo) Update(ctx context.Context, a *actor.Actor) error {
	if a == nil {
		return apperrors.InvalidArgument("actor cannot be nil")
	}
	if a.ID == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(a.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check actor existence: %w", err)
	}
	if exists == 0 {
		return apperrors.NotFoundf("actor with ID '%s' not found", a.ID).
			WithMeta("actor_id", a.ID)
	}

	jsonData, err := json.Marshal(&actorDocument{Actor: a, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}
	if err := r.client.Set(ctx, r.key(a.ID), string(jsonData), 0).Err(); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// Delete removes an actor and its owner index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("actor ID is required")
	}

	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.ownerActorsKey(a.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	return nil
}
