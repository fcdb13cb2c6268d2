package actors

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronica-rpg/chronica/internal/domain/actor"
	apperrors "github.com/chronica-rpg/chronica/internal/errors"
)

func testActor() *actor.Actor {
	a := actor.NewCharacter("char-1", "player-1", "Aldric")
	a.Level = 3
	return a
}

func marshalDocument(t *testing.T, a *actor.Actor) string {
	t.Helper()
	data, err := json.Marshal(&actorDocument{Actor: a, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()})
	require.NoError(t, err)
	return string(data)
}

func TestRedisRepo_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored actor", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		stored := testActor()
		mock.ExpectGet("actor:char-1").SetVal(marshalDocument(t, stored))

		got, err := repo.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, "char-1", got.ID)
		assert.Equal(t, "Aldric", got.Name)
		assert.Equal(t, 3, got.Level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing actor is a not-found error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		mock.ExpectGet("actor:ghost").RedisNil()

		_, err := repo.Get(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("empty ID is rejected", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidArgument(err))
	})
}

func TestRedisRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the document and indexes the owner", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		mock.ExpectExists("actor:char-1").SetVal(0)
		mock.Regexp().ExpectSet("actor:char-1", `.*"id":"char-1".*`, 0).SetVal("OK")
		mock.ExpectSAdd("owner:player-1:actors", "char-1").SetVal(1)

		err := repo.Create(ctx, testActor())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate ID is rejected", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		mock.ExpectExists("actor:char-1").SetVal(1)

		err := repo.Create(ctx, testActor())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyExists))
	})

	t.Run("missing owner is rejected", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		a := testActor()
		a.OwnerID = ""
		err := repo.Create(ctx, a)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidArgument(err))
	})
}

func TestRedisRepo_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites an existing document", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		mock.ExpectExists("actor:char-1").SetVal(1)
		mock.Regexp().ExpectSet("actor:char-1", `.*"id":"char-1".*`, 0).SetVal("OK")

		err := repo.Update(ctx, testActor())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown actor is a not-found error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := &redisRepo{client: client}

		mock.ExpectExists("actor:char-1").SetVal(0)

		err := repo.Update(ctx, testActor())
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRedisRepo_Delete(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	repo := &redisRepo{client: client}

	stored := testActor()
	mock.ExpectGet("actor:char-1").SetVal(marshalDocument(t, stored))
	mock.ExpectDel("actor:char-1").SetVal(1)
	mock.ExpectSRem("owner:player-1:actors", "char-1").SetVal(1)

	require.NoError(t, repo.Delete(ctx, "char-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepo_GetByOwner(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	repo := &redisRepo{client: client}

	stored := testActor()
	mock.ExpectSMembers("owner:player-1:actors").SetVal([]string{"char-1", "stale-id"})
	mock.ExpectGet("actor:char-1").SetVal(marshalDocument(t, stored))
	mock.ExpectGet("actor:stale-id").RedisNil()

	got, err := repo.GetByOwner(ctx, "player-1")
	require.NoError(t, err)
	require.Len(t, got, 1, "stale index entries are skipped")
	assert.Equal(t, "char-1", got[0].ID)
}
