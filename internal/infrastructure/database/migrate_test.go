package database

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterblog/core/internal/infrastructure/config"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := src.ReadUp(first)
	require.NoError(t, err)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS posts")
	assert.Contains(t, string(body), "likes INTEGER NOT NULL DEFAULT 0")

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP TABLE IF EXISTS posts")

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	up, _, err = src.ReadUp(next)
	require.NoError(t, err)
	body, err = io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ADD COLUMN IF NOT EXISTS position INTEGER")
	assert.Contains(t, string(body), "SET position = id")

	down, _, err = src.ReadDown(next)
	require.NoError(t, err)
	body, err = io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP COLUMN IF EXISTS position")

	_, err = src.Next(next)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewMigrator_UnreachableDatabase(t *testing.T) {
	m, err := NewMigrator(config.DatabaseConfig{
		Host:    "127.0.0.1",
		Port:    1,
		User:    "blog",
		Name:    "masterblog",
		SSLMode: "disable",
	})
	assert.Nil(t, m)
	assert.ErrorContains(t, err, "failed to create migration instance")
}
