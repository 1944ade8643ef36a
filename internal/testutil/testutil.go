// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens a private in-memory SQLite database with the forum schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenGorm("sqlite", "file::memory:?_foreign_keys=on", 1, Logger())
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
