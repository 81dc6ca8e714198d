package database

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		data, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}

	initial, err := fs.ReadFile(migrations, "migrations/00001_initial.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "products", "portfolio_items", "awards"} {
		assert.True(t, strings.Contains(string(initial), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom")))
}
