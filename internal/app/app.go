// Package app selects the storage backends named by the configuration.
package app

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/anonto42/nano-forum/backend/pkg/config"
)

// SessionRepository returns the session store for cfg.SessionBackend.
func SessionRepository(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.SessionRepository, error) {
	switch cfg.SessionBackend {
	case "", "sql":
		return repositories.NewGormSessionRepository(db.SQL), nil
	case "redis":
		if db.Redis == nil {
			return nil, fmt.Errorf("redis session backend selected but no redis connection")
		}
		return repositories.NewRedisSessionRepository(db.Redis), nil
	case "mongo":
		if db.Mongo == nil {
			return nil, fmt.Errorf("mongo session backend selected but no mongodb connection")
		}
		repo := repositories.NewMongoSessionRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("create session indexes: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.SessionBackend)
}

// UploadStore returns the upload store for cfg.UploadBackend. localDir is
// the directory to serve at /uploads, empty when files live elsewhere.
func UploadStore(ctx context.Context, cfg *config.Config) (store uploads.Store, localDir string, err error) {
	switch cfg.UploadBackend {
	case "", "disk":
		disk, err := uploads.NewDiskStore(cfg.UploadDir, cfg.MaxUploadSize)
		if err != nil {
			return nil, "", err
		}
		return disk, disk.Dir(), nil
	case "minio":
		store, err := uploads.NewMinioStore(ctx, uploads.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
			MaxSize:   cfg.MaxUploadSize,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}
	return nil, "", fmt.Errorf("unsupported UPLOAD_BACKEND %q", cfg.UploadBackend)
}
