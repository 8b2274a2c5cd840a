package service

import (
	"context"
	"fmt"
	"io"

	"github.com/tduarte/shorts-server/internal/logger"
	"github.com/tduarte/shorts-server/internal/model"
)

// Blobs serves short media. Every operation is gated by a capability token
// bound to the blob key; nothing else about the caller is checked.
type Blobs struct {
	storage model.BlobStorage
	codec   model.TokenCodec
	logger  *logger.Logger
}

func NewBlobs(storage model.BlobStorage, codec model.TokenCodec, logger *logger.Logger) *Blobs {
	return &Blobs{
		storage: storage,
		codec:   codec,
		logger:  logger,
	}
}

func (s *Blobs) verify(token, resource string) error {
	if !s.codec.Verify(token, resource) {
		return fmt.Errorf("%w: invalid token for %s", model.ErrForbidden, resource)
	}
	return nil
}

func (s *Blobs) Upload(ctx context.Context, shortID, token string, reader io.Reader) error {
	key := model.BlobKeyFor(shortID)
	if err := s.verify(token, key); err != nil {
		return err
	}

	if err := s.storage.Upload(ctx, key, reader); err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}
	return nil
}

func (s *Blobs) Download(ctx context.Context, shortID, token string) (io.ReadCloser, error) {
	key := model.BlobKeyFor(shortID)
	if err := s.verify(token, key); err != nil {
		return nil, err
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return reader, nil
}

func (s *Blobs) Delete(ctx context.Context, shortID, token string) error {
	key := model.BlobKeyFor(shortID)
	if err := s.verify(token, key); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// DeleteAll removes every blob owned by the user. The token must be issued
// for the user id itself.
func (s *Blobs) DeleteAll(ctx context.Context, userID, token string) error {
	if err := s.verify(token, userID); err != nil {
		return err
	}

	if err := s.storage.DeleteAll(ctx, userID+"/"); err != nil {
		return fmt.Errorf("failed to delete blobs of %s: %w", userID, err)
	}
	return nil
}
