package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tduarte/shorts-server/internal/model"
)

func TestNewBackend(t *testing.T) {
	conn := &Connection{}
	b := NewBackend(conn)

	assert.NotNil(t, b)
	assert.NotNil(t, b.Users())
	assert.NotNil(t, b.Shorts())
	assert.NotNil(t, b.Likes())
	assert.NotNil(t, b.Follows())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "no rows", in: pgx.ErrNoRows, want: model.ErrNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505"}, want: model.ErrConflict},
		{name: "other pg error", in: &pgconn.PgError{Code: "42P01"}},
		{name: "plain error", in: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			} else {
				assert.Equal(t, tt.in, got)
			}
		})
	}
}
