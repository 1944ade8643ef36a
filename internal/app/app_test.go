package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/testutil"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/anonto42/nano-forum/backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositorySelection(t *testing.T) {
	ctx := context.Background()
	db := &config.DB{SQL: testutil.NewDB(t)}

	repo, err := SessionRepository(ctx, &config.Config{SessionBackend: "sql"}, db)
	require.NoError(t, err)
	assert.IsType(t, &repositories.GormSessionRepository{}, repo)

	_, err = SessionRepository(ctx, &config.Config{SessionBackend: "redis"}, db)
	assert.Error(t, err)

	srv := miniredis.RunT(t)
	db.Redis = redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { db.Redis.Close() })
	repo, err = SessionRepository(ctx, &config.Config{SessionBackend: "redis"}, db)
	require.NoError(t, err)
	assert.IsType(t, &repositories.RedisSessionRepository{}, repo)

	_, err = SessionRepository(ctx, &config.Config{SessionBackend: "mongo"}, db)
	assert.Error(t, err)
	_, err = SessionRepository(ctx, &config.Config{SessionBackend: "memcached"}, db)
	assert.Error(t, err)
}

func TestUploadStoreSelection(t *testing.T) {
	dir := t.TempDir()
	store, localDir, err := UploadStore(context.Background(), &config.Config{UploadBackend: "disk", UploadDir: dir, MaxUploadSize: 1 << 20})
	require.NoError(t, err)
	assert.IsType(t, &uploads.DiskStore{}, store)
	assert.Equal(t, dir, localDir)

	_, _, err = UploadStore(context.Background(), &config.Config{UploadBackend: "ftp"})
	assert.Error(t, err)
}
