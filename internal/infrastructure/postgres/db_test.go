package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/kenfuse/kenfuse-api/internal/domain/repository"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrConflict)

	// invalid input syntax for type uuid
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "22P02"}), repository.ErrNotFound)

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, mapErr(other))
	boom := errors.New("boom")
	assert.Equal(t, boom, mapErr(boom))
}

func TestOrderByIDs(t *testing.T) {
	got := orderByIDs([]string{"a", "b", "c"}, []string{"c", "x", "a"}, func(s string) string { return s })
	assert.Equal(t, []string{"c", "a"}, got)
}
