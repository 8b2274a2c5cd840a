package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tduarte/shorts-server/internal/cache"
	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

// Users manages accounts: registration, authenticated reads and updates,
// search, login sessions, and account deletion through the cascade.
type Users struct {
	backend model.Backend
	aside   *cache.Aside
	session model.SessionManager
	cascade *Cascade
	logger  *logger.Logger
}

func NewUsers(
	backend model.Backend,
	aside *cache.Aside,
	session model.SessionManager,
	cascade *Cascade,
	logger *logger.Logger,
) *Users {
	return &Users{
		backend: backend,
		aside:   aside,
		session: session,
		cascade: cascade,
		logger:  logger,
	}
}

// validateUserID rejects identifiers that would break the id-encoding
// scheme: short ids embed the owner before a '+', blob keys use '/', and
// cache keys use ':'.
func validateUserID(id string) error {
	if id == "" || strings.ContainsAny(id, "+:/") {
		return fmt.Errorf("%w: invalid user id", model.ErrBadRequest)
	}
	return nil
}

func (s *Users) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if err := validateUserID(user.ID); err != nil {
		return model.User{}, err
	}
	if user.Password == "" || user.Email == "" || user.DisplayName == "" {
		return model.User{}, fmt.Errorf("%w: missing user fields", model.ErrBadRequest)
	}

	created, err := s.backend.Users().Insert(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	s.aside.Put(ctx, cache.UserKey(created.ID), created)
	return created, nil
}

func (s *Users) GetUser(ctx context.Context, userID, password string) (model.User, error) {
	return authenticate(ctx, s.backend, s.aside, userID, password)
}

func (s *Users) UpdateUser(ctx context.Context, userID, password string, update model.User) (model.User, error) {
	user, err := authenticate(ctx, s.backend, s.aside, userID, password)
	if err != nil {
		return model.User{}, err
	}

	updated, err := s.backend.Users().UpdateOne(ctx, user.UpdateFrom(update))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	s.aside.Put(ctx, cache.UserKey(userID), updated)
	return updated, nil
}

func (s *Users) DeleteUser(ctx context.Context, userID, password string) (model.User, error) {
	user, err := authenticate(ctx, s.backend, s.aside, userID, password)
	if err != nil {
		return model.User{}, err
	}

	if err := s.cascade.DeleteUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// SearchUsers returns every user whose id contains the pattern, case
// insensitively. Passwords are stripped from the result.
func (s *Users) SearchUsers(ctx context.Context, pattern string) ([]model.User, error) {
	users, err := s.backend.Users().Search(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	for i := range users {
		users[i] = users[i].WithoutPassword()
	}
	return users, nil
}

// Login authenticates the user and returns a session access token.
func (s *Users) Login(ctx context.Context, userID, password string) (string, error) {
	if _, err := authenticate(ctx, s.backend, s.aside, userID, password); err != nil {
		return "", err
	}

	token, err := s.session.GenerateAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, nil
}

// GetProfile returns the user's profile without a password check: callers
// prove identity with a session token instead. The password never leaves.
func (s *Users) GetProfile(ctx context.Context, userID string) (model.User, error) {
	user, err := loadUser(ctx, s.backend, s.aside, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.WithoutPassword(), nil
}

// loadUser reads a user through the cache.
func loadUser(ctx context.Context, b model.Backend, a *cache.Aside, userID string) (model.User, error) {
	return cache.GetOrLoad(ctx, a, cache.UserKey(userID), func(ctx context.Context) (model.User, error) {
		return b.Users().GetOne(ctx, userID)
	})
}

// authenticate loads the user and checks the password. A wrong password is
// forbidden, not a lookup failure.
func authenticate(ctx context.Context, b model.Backend, a *cache.Aside, userID, password string) (model.User, error) {
	if userID == "" {
		return model.User{}, fmt.Errorf("%w: user id is required", model.ErrBadRequest)
	}

	user, err := loadUser(ctx, b, a, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Password != password {
		return model.User{}, fmt.Errorf("%w: wrong password", model.ErrForbidden)
	}
	return user, nil
}
