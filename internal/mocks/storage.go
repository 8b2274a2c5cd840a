package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type BlobStorage struct{ mock.Mock }

func (m *BlobStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	return m.Called(ctx, key, reader).Error(0)
}

func (m *BlobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	reader, _ := args.Get(0).(io.ReadCloser)
	return reader, args.Error(1)
}

func (m *BlobStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *BlobStorage) DeleteAll(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

func (m *BlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type SessionManager struct{ mock.Mock }

func (m *SessionManager) GenerateAccessToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *SessionManager) ParseAccessToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}
