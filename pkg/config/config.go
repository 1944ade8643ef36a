package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	DBDriver       string `yaml:"db_driver"`
	DatabaseURL    string `yaml:"database_url"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns"`

	SessionBackend       string        `yaml:"session_backend"`
	SessionTTL           time.Duration `yaml:"session_ttl"`
	SessionPruneInterval time.Duration `yaml:"session_prune_interval"`
	SessionCookieSecure  bool          `yaml:"session_cookie_secure"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	UploadBackend  string `yaml:"upload_backend"`
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadSize  int64  `yaml:"max_upload_size"`
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`
	MinioPublicURL string `yaml:"minio_public_url"`

	FirebaseCredentialsPath string `yaml:"firebase_credentials_path"`

	AdminEmail    string `yaml:"admin_email"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

func defaults() *Config {
	return &Config{
		Port:                 "8080",
		Env:                  "development",
		DBDriver:             "postgres",
		DBMaxOpenConns:       10,
		SessionBackend:       "sql",
		SessionTTL:           24 * time.Hour,
		SessionPruneInterval: time.Hour,
		RedisAddr:            "localhost:6379",
		MongoDatabase:        "forum",
		UploadBackend:        "disk",
		UploadDir:            "uploads",
		MaxUploadSize:        10 << 20,
		MinioBucket:          "forum-uploads",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (if set), then lets environment variables override either source.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SessionBackend = getEnv("SESSION_BACKEND", cfg.SessionBackend)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.UploadBackend = getEnv("UPLOAD_BACKEND", cfg.UploadBackend)
	cfg.UploadDir = getEnv("UPLOAD_DIR", cfg.UploadDir)
	cfg.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getEnv("MINIO_BUCKET", cfg.MinioBucket)
	cfg.MinioPublicURL = getEnv("MINIO_PUBLIC_URL", cfg.MinioPublicURL)
	cfg.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.FirebaseCredentialsPath)
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)

	var err error
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_SIZE", int(cfg.MaxUploadSize))
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(maxUpload)
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.SessionPruneInterval, err = getEnvDuration("SESSION_PRUNE_INTERVAL", cfg.SessionPruneInterval); err != nil {
		return nil, err
	}
	if cfg.SessionCookieSecure, err = getEnvBool("SESSION_COOKIE_SECURE", cfg.Env == "production"); err != nil {
		return nil, err
	}
	if cfg.MinioUseSSL, err = getEnvBool("MINIO_USE_SSL", cfg.MinioUseSSL); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "sqlite" {
		cfg.DatabaseURL = "forum.db"
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return cfg, nil
}

// AdminBootstrap reports whether all ADMIN_* values are present.
func (c *Config) AdminBootstrap() bool {
	return c.AdminEmail != "" && c.AdminUsername != "" && c.AdminPassword != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
