package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tduarte/shorts-server/internal/model"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestUserStore_CRUD(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	u := model.User{ID: "alice", Password: "p1", Email: "alice@example.com", DisplayName: "Alice"}

	saved, err := b.Users().Insert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u, saved)

	_, err = b.Users().Insert(ctx, u)
	assert.ErrorIs(t, err, model.ErrConflict)

	got, err := b.Users().GetOne(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = b.Users().GetOne(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)

	updated, err := b.Users().UpdateOne(ctx, u.UpdateFrom(model.User{DisplayName: "Alice B."}))
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.DisplayName)

	_, err = b.Users().UpdateOne(ctx, model.User{ID: "nobody"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, b.Users().DeleteOne(ctx, "alice"))
	require.NoError(t, b.Users().DeleteOne(ctx, "alice"))

	_, err = b.Users().GetOne(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserStore_Search(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	for _, id := range []string{"alice", "alicia", "bob"} {
		_, err := b.Users().Insert(ctx, model.User{ID: id, Password: "x"})
		require.NoError(t, err)
	}

	hits, err := b.Users().Search(ctx, "ALIC")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	all, err := b.Users().Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserStore_ConcurrentInsertSameID(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	const racers = 8
	start := make(chan struct{})
	results := make(chan error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := b.Users().Insert(ctx, model.User{ID: "alice", Password: "p"})
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, racers-1, conflicts)
}

func TestShortStore_ConcurrentInsertSameID(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	const racers = 8
	start := make(chan struct{})
	results := make(chan error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := b.Shorts().Insert(ctx, model.Short{ID: "alice+1", OwnerID: "alice"})
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, model.ErrConflict)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestShortStore_ListByOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	for i, owner := range []string{"alice", "alice", "bob"} {
		s := model.Short{
			ID:        fmt.Sprintf("%s+%d", owner, i),
			OwnerID:   owner,
			Timestamp: int64(i),
		}
		_, err := b.Shorts().Insert(ctx, s)
		require.NoError(t, err)
	}

	owned, err := b.Shorts().ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	// Newest first.
	assert.Equal(t, "alice+1", owned[0].ID)

	// "ali" is a prefix of "alice" but owns nothing.
	none, err := b.Shorts().ListByOwner(ctx, "ali")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLikeStore_IdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	l := model.Like{UserID: "bob", ShortID: "alice+1", OwnerID: "alice"}
	require.NoError(t, b.Likes().Upsert(ctx, l))
	require.NoError(t, b.Likes().Upsert(ctx, l))

	count, err := b.Likes().CountByShort(ctx, "alice+1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byShort, err := b.Likes().ListByShort(ctx, "alice+1")
	require.NoError(t, err)
	require.Len(t, byShort, 1)
	assert.Equal(t, l, byShort[0])
}

func TestLikeStore_ListByUserBothSides(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	// bob likes alice's short; carol likes bob's short.
	require.NoError(t, b.Likes().Upsert(ctx, model.Like{UserID: "bob", ShortID: "alice+1", OwnerID: "alice"}))
	require.NoError(t, b.Likes().Upsert(ctx, model.Like{UserID: "carol", ShortID: "bob+1", OwnerID: "bob"}))

	edges, err := b.Likes().ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	edges, err = b.Likes().ListByUser(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestLikeStore_DeleteRemovesAllIndexes(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	l := model.Like{UserID: "bob", ShortID: "alice+1", OwnerID: "alice"}
	require.NoError(t, b.Likes().Upsert(ctx, l))
	require.NoError(t, b.Likes().DeleteOne(ctx, l))
	require.NoError(t, b.Likes().DeleteOne(ctx, l))

	count, err := b.Likes().CountByShort(ctx, "alice+1")
	require.NoError(t, err)
	assert.Zero(t, count)

	edges, err := b.Likes().ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, edges)

	edges, err = b.Likes().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestFollowStore_EdgesAndLookups(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	f := model.Following{Follower: "bob", Followee: "alice"}
	require.NoError(t, b.Follows().Upsert(ctx, f))
	require.NoError(t, b.Follows().Upsert(ctx, f))
	require.NoError(t, b.Follows().Upsert(ctx, model.Following{Follower: "carol", Followee: "alice"}))

	followers, err := b.Follows().Followers(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, followers)

	followees, err := b.Follows().Followees(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followees)

	edges, err := b.Follows().ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, edges, 2)

	require.NoError(t, b.Follows().DeleteOne(ctx, f))

	followers, err = b.Follows().Followers(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, followers)
}

func TestBackend_AtomicIsBestEffort(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	// A failing callback does not undo operations it already applied.
	err := b.Atomic(ctx, func(tx model.Backend) error {
		if _, err := tx.Users().Insert(ctx, model.User{ID: "alice"}); err != nil {
			return err
		}
		return fmt.Errorf("forced failure")
	})
	require.Error(t, err)

	_, err = b.Users().GetOne(ctx, "alice")
	assert.NoError(t, err)
}
