package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

// Shorts manages published shorts and their social edges. Every read goes
// through the cache, every write invalidates or overwrites the keys it
// touches before returning.
type Shorts struct {
	backend model.Backend
	aside   *cache.Aside
	cascade *Cascade
	codec   model.TokenCodec
	baseURL string
	logger  *logger.Logger
}

func NewShorts(
	backend model.Backend,
	aside *cache.Aside,
	cascade *Cascade,
	codec model.TokenCodec,
	baseURL string,
	logger *logger.Logger,
) *Shorts {
	return &Shorts{
		backend: backend,
		aside:   aside,
		cascade: cascade,
		codec:   codec,
		baseURL: baseURL,
		logger:  logger,
	}
}

// lastTimestamp backs a per-process monotonic millisecond clock. Creation
// timestamps never repeat and never go backwards within a process, even if
// the wall clock does.
var lastTimestamp atomic.Int64

func nextTimestamp() int64 {
	for {
		last := lastTimestamp.Load()
		now := time.Now().UnixMilli()
		if now <= last {
			now = last + 1
		}
		if lastTimestamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// CreateShort publishes a new short for the owner. The returned blob URL
// carries a capability token granting upload and download of the media.
func (s *Shorts) CreateShort(ctx context.Context, ownerID, password string) (model.Short, error) {
	if _, err := authenticate(ctx, s.backend, s.aside, ownerID, password); err != nil {
		return model.Short{}, err
	}

	id := model.NewShortID(ownerID)
	short := model.Short{
		ID:        id,
		OwnerID:   ownerID,
		BlobURL:   fmt.Sprintf("%s/blobs/%s?token=%s", s.baseURL, id, s.codec.Issue(model.BlobKeyFor(id))),
		Timestamp: nextTimestamp(),
	}

	created, err := s.backend.Shorts().Insert(ctx, short)
	if err != nil {
		return model.Short{}, fmt.Errorf("failed to insert short: %w", err)
	}

	s.aside.Put(ctx, cache.ShortKey(id), created)
	s.aside.Invalidate(ctx, cache.UserShortsKey(ownerID))
	return created, nil
}

// GetShort returns the short with its like count. The derived view is what
// gets cached, so like/unlike must invalidate the same key.
func (s *Shorts) GetShort(ctx context.Context, shortID string) (model.Short, error) {
	if shortID == "" {
		return model.Short{}, fmt.Errorf("%w: short id is required", model.ErrBadRequest)
	}

	return cache.GetOrLoad(ctx, s.aside, cache.ShortKey(shortID), func(ctx context.Context) (model.Short, error) {
		short, err := s.backend.Shorts().GetOne(ctx, shortID)
		if err != nil {
			return model.Short{}, err
		}
		count, err := s.backend.Likes().CountByShort(ctx, shortID)
		if err != nil {
			return model.Short{}, fmt.Errorf("failed to count likes: %w", err)
		}
		short.TotalLikes = count
		return short, nil
	})
}

// DeleteShort removes the short, its like edges and its media. Only the
// owner may delete it.
func (s *Shorts) DeleteShort(ctx context.Context, shortID, password string) error {
	short, err := s.backend.Shorts().GetOne(ctx, shortID)
	if err != nil {
		return fmt.Errorf("failed to get short: %w", err)
	}
	if _, err := authenticate(ctx, s.backend, s.aside, short.OwnerID, password); err != nil {
		return err
	}

	return s.cascade.DeleteShort(ctx, short)
}

// Like records that userID liked the short. Liking twice is a no-op.
func (s *Shorts) Like(ctx context.Context, shortID, userID, password string) error {
	return s.setLike(ctx, shortID, userID, password, true)
}

// Unlike removes userID's like from the short. Removing an absent like is a
// no-op.
func (s *Shorts) Unlike(ctx context.Context, shortID, userID, password string) error {
	return s.setLike(ctx, shortID, userID, password, false)
}

func (s *Shorts) setLike(ctx context.Context, shortID, userID, password string, liked bool) error {
	if _, err := authenticate(ctx, s.backend, s.aside, userID, password); err != nil {
		return err
	}
	short, err := s.backend.Shorts().GetOne(ctx, shortID)
	if err != nil {
		return fmt.Errorf("failed to get short: %w", err)
	}

	edge := model.Like{UserID: userID, ShortID: shortID, OwnerID: short.OwnerID}
	if liked {
		err = s.backend.Likes().Upsert(ctx, edge)
	} else {
		err = s.backend.Likes().DeleteOne(ctx, edge)
	}
	if err != nil {
		return fmt.Errorf("failed to write like: %w", err)
	}

	// The cached short view carries the like count.
	s.aside.Invalidate(ctx, cache.ShortKey(shortID), cache.LikesKey(shortID))
	return nil
}

// Likes returns the ids of users that liked the short. Only the short's
// owner may list them.
func (s *Shorts) Likes(ctx context.Context, shortID, password string) ([]string, error) {
	short, err := s.backend.Shorts().GetOne(ctx, shortID)
	if err != nil {
		return nil, fmt.Errorf("failed to get short: %w", err)
	}
	if _, err := authenticate(ctx, s.backend, s.aside, short.OwnerID, password); err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.aside, cache.LikesKey(shortID), func(ctx context.Context) ([]string, error) {
		likes, err := s.backend.Likes().ListByShort(ctx, shortID)
		if err != nil {
			return nil, fmt.Errorf("failed to list likes: %w", err)
		}
		ids := make([]string, 0, len(likes))
		for _, l := range likes {
			ids = append(ids, l.UserID)
		}
		return ids, nil
	})
}

// Follow subscribes follower to followee's shorts. Following twice is a
// no-op.
func (s *Shorts) Follow(ctx context.Context, follower, followee, password string) error {
	return s.setFollow(ctx, follower, followee, password, true)
}

// Unfollow removes the subscription. Removing an absent one is a no-op.
func (s *Shorts) Unfollow(ctx context.Context, follower, followee, password string) error {
	return s.setFollow(ctx, follower, followee, password, false)
}

func (s *Shorts) setFollow(ctx context.Context, follower, followee, password string, following bool) error {
	if _, err := authenticate(ctx, s.backend, s.aside, follower, password); err != nil {
		return err
	}
	if _, err := loadUser(ctx, s.backend, s.aside, followee); err != nil {
		return fmt.Errorf("failed to get followee: %w", err)
	}

	edge := model.Following{Follower: follower, Followee: followee}
	var err error
	if following {
		err = s.backend.Follows().Upsert(ctx, edge)
	} else {
		err = s.backend.Follows().DeleteOne(ctx, edge)
	}
	if err != nil {
		return fmt.Errorf("failed to write follow: %w", err)
	}

	s.aside.Invalidate(ctx, cache.FollowersKey(followee))
	return nil
}

// Followers returns the ids of users following userID. Only that user may
// list them.
func (s *Shorts) Followers(ctx context.Context, userID, password string) ([]string, error) {
	if _, err := authenticate(ctx, s.backend, s.aside, userID, password); err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.aside, cache.FollowersKey(userID), func(ctx context.Context) ([]string, error) {
		return s.backend.Follows().Followers(ctx, userID)
	})
}

// GetShorts returns the ids of the shorts owned by userID, newest first.
func (s *Shorts) GetShorts(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrBadRequest)
	}

	return cache.GetOrLoad(ctx, s.aside, cache.UserShortsKey(userID), func(ctx context.Context) ([]string, error) {
		shorts, err := s.backend.Shorts().ListByOwner(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list shorts: %w", err)
		}
		ids := make([]string, 0, len(shorts))
		for _, short := range shorts {
			ids = append(ids, short.ID)
		}
		return ids, nil
	})
}

// GetFeed merges the user's own shorts with the shorts of everyone they
// follow, newest first.
func (s *Shorts) GetFeed(ctx context.Context, userID, password string) ([]model.Short, error) {
	if _, err := authenticate(ctx, s.backend, s.aside, userID, password); err != nil {
		return nil, err
	}

	followees, err := s.backend.Follows().Followees(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followees: %w", err)
	}

	var feed []model.Short
	for _, owner := range append([]string{userID}, followees...) {
		shorts, err := s.backend.Shorts().ListByOwner(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to list shorts of %s: %w", owner, err)
		}
		feed = append(feed, shorts...)
	}

	sort.Slice(feed, func(i, j int) bool { return feed[i].Timestamp > feed[j].Timestamp })
	return feed, nil
}
