package model

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ShortStore defines persistence operations for shorts.
type ShortStore interface {
	Insert(ctx context.Context, short Short) (Short, error)
	GetOne(ctx context.Context, id string) (Short, error)
	DeleteOne(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Short, error)
}

// Short represents a published short. The ID encodes the owner as
// "<ownerId>+<random>". TotalLikes is derived at read time, never stored.
type Short struct {
	ID         string `json:"shortId"`
	OwnerID    string `json:"ownerId"`
	BlobURL    string `json:"blobUrl"`
	Timestamp  int64  `json:"timestamp"`
	TotalLikes int64  `json:"totalLikes"`
}

// NewShortID builds a globally unique short identifier for the given owner.
func NewShortID(ownerID string) string {
	return ownerID + "+" + uuid.NewString()
}

// ShortOwner extracts the owner encoded in a short identifier.
func ShortOwner(shortID string) (string, bool) {
	owner, _, found := strings.Cut(shortID, "+")
	if !found || owner == "" {
		return "", false
	}
	return owner, true
}

// BlobKeyFor is the object-store locator for a short's media: the short id
// with its internal separator rewritten to a path separator.
func BlobKeyFor(shortID string) string {
	return strings.ReplaceAll(shortID, "+", "/")
}

// BlobKey is the object-store locator for the short's media.
func (s Short) BlobKey() string {
	return BlobKeyFor(s.ID)
}
