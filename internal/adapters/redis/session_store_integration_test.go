package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/flowpos/pos-api/internal/adapters/redis"
	domain "github.com/flowpos/pos-api/internal/domain/session"
	"github.com/flowpos/pos-api/internal/testutil"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisadapter.NewSessionStore(client, "till-1")
	ctx := context.Background()

	t.Run("empty terminal has no record", func(t *testing.T) {
		_, ok, err := store.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save and load", func(t *testing.T) {
		rec := domain.PersistedSession{
			ActorClass:    domain.ActorOrgMemberPIN,
			Authenticated: true,
			Member: &domain.OrgMember{
				ID:   "m-1",
				Role: domain.MemberRoleStaff,
			},
			Store: &domain.StoreConfig{OrgID: "org-1", Slug: "acme-cafe"},
		}
		require.NoError(t, store.Save(ctx, rec))

		got, ok, err := store.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, rec, got)
	})

	t.Run("terminals are isolated", func(t *testing.T) {
		other := redisadapter.NewSessionStore(client, "till-2")
		_, ok, err := other.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear removes the record", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		_, ok, err := store.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupted record is an error, not a session", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "pos:session:till-1", "{not json", 0).Err())
		_, ok, err := store.Load(ctx)
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestSessionStoreRequiresTerminalID(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := redisadapter.NewSessionStore(client, "")
	ctx := context.Background()

	require.Error(t, store.Save(ctx, domain.PersistedSession{}))
	_, _, err := store.Load(ctx)
	require.Error(t, err)
	assert.NoError(t, store.Clear(ctx))
}
