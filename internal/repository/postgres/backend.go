package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tduarte/shorts-server/internal/model"
)

var _ model.Backend = (*Backend)(nil)

// Backend is the relational primary-store variant. Atomic runs the given
// function inside one ACID transaction, so multi-entity operations like the
// cascading delete are all-or-nothing here.
type Backend struct {
	conn    *Connection
	users   *UserRepository
	shorts  *ShortRepository
	likes   *LikeRepository
	follows *FollowRepository
}

// NewBackend creates a backend over an open connection pool.
func NewBackend(conn *Connection) *Backend {
	return &Backend{
		conn:    conn,
		users:   NewUserRepository(conn),
		shorts:  NewShortRepository(conn),
		likes:   NewLikeRepository(conn),
		follows: NewFollowRepository(conn),
	}
}

func (b *Backend) Users() model.UserStore     { return b.users }
func (b *Backend) Shorts() model.ShortStore   { return b.shorts }
func (b *Backend) Likes() model.LikeStore     { return b.likes }
func (b *Backend) Follows() model.FollowStore { return b.follows }

// Atomic executes fn with every store bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (b *Backend) Atomic(ctx context.Context, fn func(model.Backend) error) error {
	err := pgx.BeginFunc(ctx, b.conn.Pool, func(tx pgx.Tx) error {
		return fn(&txBackend{
			users:   NewUserRepository(tx),
			shorts:  NewShortRepository(tx),
			likes:   NewLikeRepository(tx),
			follows: NewFollowRepository(tx),
		})
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// txBackend is the transaction-scoped view handed to Atomic callbacks.
type txBackend struct {
	users   *UserRepository
	shorts  *ShortRepository
	likes   *LikeRepository
	follows *FollowRepository
}

func (b *txBackend) Users() model.UserStore     { return b.users }
func (b *txBackend) Shorts() model.ShortStore   { return b.shorts }
func (b *txBackend) Likes() model.LikeStore     { return b.likes }
func (b *txBackend) Follows() model.FollowStore { return b.follows }

// Atomic on an already-transactional view reuses the open transaction.
func (b *txBackend) Atomic(ctx context.Context, fn func(model.Backend) error) error {
	return fn(b)
}
