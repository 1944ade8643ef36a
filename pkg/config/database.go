package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
	Redis *redis.Client
}

// InitDB opens the relational store and whichever session backend the
// configuration selects.
func InitDB(cfg *Config, log *slog.Logger) (*DB, error) {
	sqlDB, err := OpenGorm(cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}
	db := &DB{SQL: sqlDB}

	switch cfg.SessionBackend {
	case "redis":
		db.Redis, err = initRedis(cfg)
		if err != nil {
			db.CloseDB(log)
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("connected to redis", "addr", cfg.RedisAddr)
	case "mongo":
		if cfg.MongoURI == "" {
			db.CloseDB(log)
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		db.Mongo, err = initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB(log)
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		log.Info("connected to mongodb")
	}

	return db, nil
}

// OpenGorm opens a GORM connection for one of the supported drivers and
// caps the pool at maxOpen connections.
func OpenGorm(driver, dsn string, maxOpen int, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewSlogLogger(log, logger.Config{SlowThreshold: 200 * time.Millisecond, IgnoreRecordNotFoundError: true}),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; more connections only produce
	// "database is locked" errors and separate :memory: databases.
	if driver == "sqlite" {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Info("connected to database", "driver", driver, "max_open_conns", maxOpen)
	return db, nil
}

func initRedis(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB(log *slog.Logger) {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			log.Error("error getting sql.DB from GORM", "error", err)
		} else if err := sqlDB.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		} else {
			log.Info("database connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			log.Error("error closing redis connection", "error", err)
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Error("error closing mongodb connection", "error", err)
		} else {
			log.Info("mongodb connection closed")
		}
	}
}
