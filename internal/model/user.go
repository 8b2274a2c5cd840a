package model

import "context"

// UserStore defines persistence operations for users.
type UserStore interface {
	Insert(ctx context.Context, user User) (User, error)
	GetOne(ctx context.Context, id string) (User, error)
	UpdateOne(ctx context.Context, user User) (User, error)
	DeleteOne(ctx context.Context, id string) error
	Search(ctx context.Context, pattern string) ([]User, error)
}

// User represents a registered account. The ID is immutable after creation.
type User struct {
	ID          string `json:"userId"`
	Password    string `json:"pwd"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// WithoutPassword returns a copy safe to hand to callers.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}

// UpdateFrom returns a copy of u with the updatable fields overwritten by the
// non-empty fields of other. The ID is never changed.
func (u User) UpdateFrom(other User) User {
	if other.Password != "" {
		u.Password = other.Password
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.DisplayName != "" {
		u.DisplayName = other.DisplayName
	}
	return u
}
