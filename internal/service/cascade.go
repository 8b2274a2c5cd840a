package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

// Cascade orchestrates destructive operations on users and shorts: it
// computes the closure of dependent records, deletes leaf associations
// first, then media, then the records, and invalidates every touched cache
// key regardless of outcome.
//
// Under the relational backend the record deletions run in one transaction.
// Under the document backend they apply independently: every step is
// idempotent, so a partially applied cascade is safe to retry.
//
// Callers authorize the root before handing it over; the cascade itself
// performs no password checks.
type Cascade struct {
	backend model.Backend
	aside   *cache.Aside
	storage model.BlobStorage
	logger  *logger.Logger
}

func NewCascade(
	backend model.Backend,
	aside *cache.Aside,
	storage model.BlobStorage,
	logger *logger.Logger,
) *Cascade {
	return &Cascade{
		backend: backend,
		aside:   aside,
		storage: storage,
		logger:  logger,
	}
}

// DeleteShort removes the short's like edges, its media and the record.
func (c *Cascade) DeleteShort(ctx context.Context, short model.Short) error {
	likes, err := c.backend.Likes().ListByShort(ctx, short.ID)
	if err != nil {
		return fmt.Errorf("failed to list likes of short: %w", err)
	}

	keys := []string{
		cache.ShortKey(short.ID),
		cache.LikesKey(short.ID),
		cache.UserShortsKey(short.OwnerID),
	}
	defer c.aside.Invalidate(ctx, keys...)

	var errs []error

	// Media and cache entries go before the record, so a partial failure
	// leaves at worst a retryable record, never a record pointing at media
	// that was silently kept.
	if err := c.storage.Delete(ctx, short.BlobKey()); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete media %s: %w", short.BlobKey(), err))
	}
	c.aside.Invalidate(ctx, cache.ShortKey(short.ID), cache.LikesKey(short.ID))

	errs = append(errs, c.backend.Atomic(ctx, func(b model.Backend) error {
		var errs []error
		for _, l := range likes {
			errs = append(errs, b.Likes().DeleteOne(ctx, l))
		}
		errs = append(errs, b.Shorts().DeleteOne(ctx, short.ID))
		return errors.Join(errs...)
	}))

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cascade delete of short %s: %w", short.ID, err)
	}
	return nil
}

// DeleteUser removes every like and follow edge referencing the user, every
// short the user owns together with its media, and finally the account.
func (c *Cascade) DeleteUser(ctx context.Context, user model.User) error {
	shorts, err := c.backend.Shorts().ListByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list shorts of user: %w", err)
	}
	likes, err := c.backend.Likes().ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list likes of user: %w", err)
	}
	follows, err := c.backend.Follows().ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list follows of user: %w", err)
	}

	keys := []string{
		cache.UserKey(user.ID),
		cache.UserShortsKey(user.ID),
		cache.FollowersKey(user.ID),
	}
	for _, short := range shorts {
		keys = append(keys, cache.ShortKey(short.ID))
	}
	for _, l := range likes {
		// Like counts of shorts the user liked change too.
		keys = append(keys, cache.ShortKey(l.ShortID), cache.LikesKey(l.ShortID))
	}
	for _, f := range follows {
		keys = append(keys, cache.FollowersKey(f.Followee))
	}
	defer c.aside.Invalidate(ctx, keys...)

	var errs []error

	// All of the user's media lives under one key prefix.
	if err := c.storage.DeleteAll(ctx, user.ID+"/"); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete media of %s: %w", user.ID, err))
	}

	errs = append(errs, c.backend.Atomic(ctx, func(b model.Backend) error {
		var errs []error
		for _, l := range likes {
			errs = append(errs, b.Likes().DeleteOne(ctx, l))
		}
		for _, f := range follows {
			errs = append(errs, b.Follows().DeleteOne(ctx, f))
		}
		for _, short := range shorts {
			errs = append(errs, b.Shorts().DeleteOne(ctx, short.ID))
		}
		errs = append(errs, b.Users().DeleteOne(ctx, user.ID))
		return errors.Join(errs...)
	}))

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cascade delete of user %s: %w", user.ID, err)
	}
	return nil
}
