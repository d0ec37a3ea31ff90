package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "change-me-in-production"

// Config is the application configuration, populated from the environment.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Catalog  CatalogConfig
	Worker   WorkerConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string

	// Per-caller budget for staff write routes, in requests per minute.
	// Zero disables the limit.
	WriteRateLimit int
	WriteBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int

	// Run pending goose migrations when the API starts.
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// CatalogConfig holds the business rules of the catalog hierarchy.
type CatalogConfig struct {
	// MaxCategoryDepth is the deepest allowed level; roots are level 1.
	MaxCategoryDepth int
	// TreeCacheTTL is how long GET /categories/tree stays in Redis.
	TreeCacheTTL time.Duration
	// ReconcileConcurrency bounds concurrent existence checks when a
	// per-id resolver is used.
	ReconcileConcurrency int
}

// StorageConfig points at the S3-compatible bucket holding product images.
// An empty Endpoint disables image uploads.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL prefixes object keys in stored image URLs, for setups where
	// a CDN sits in front of the bucket.
	PublicURL string
}

// WorkerConfig drives the catalog maintenance worker.
type WorkerConfig struct {
	Concurrency int
	HealthPort  string
	// Cron specs, evaluated in UTC. An empty spec disables the job.
	TreeAuditCron string
	CacheWarmCron string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", ""),

			WriteRateLimit: getEnvInt("APP_WRITE_RATE_LIMIT", 120),
			WriteBurst:     getEnvInt("APP_WRITE_BURST", 20),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "catalog"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		},
		Catalog: CatalogConfig{
			MaxCategoryDepth:     getEnvInt("CATALOG_MAX_CATEGORY_DEPTH", 3),
			TreeCacheTTL:         getEnvDuration("CATALOG_TREE_CACHE_TTL", 10*time.Minute),
			ReconcileConcurrency: getEnvInt("CATALOG_RECONCILE_CONCURRENCY", 8),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "catalog"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		Worker: WorkerConfig{
			Concurrency:   getEnvInt("WORKER_CONCURRENCY", 5),
			HealthPort:    getEnv("WORKER_HEALTH_PORT", "9999"),
			TreeAuditCron: os.Getenv("WORKER_TREE_AUDIT_CRON"),
			CacheWarmCron: os.Getenv("WORKER_CACHE_WARM_CRON"),
		},
	}
	if _, set := os.LookupEnv("WORKER_TREE_AUDIT_CRON"); !set {
		cfg.Worker.TreeAuditCron = "0 3 * * *"
	}
	if _, set := os.LookupEnv("WORKER_CACHE_WARM_CRON"); !set {
		cfg.Worker.CacheWarmCron = "*/30 * * * *"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Catalog.MaxCategoryDepth < 1 {
		return fmt.Errorf("CATALOG_MAX_CATEGORY_DEPTH must be at least 1 (got %d)", c.Catalog.MaxCategoryDepth)
	}
	if c.Catalog.ReconcileConcurrency < 1 {
		return fmt.Errorf("CATALOG_RECONCILE_CONCURRENCY must be at least 1 (got %d)", c.Catalog.ReconcileConcurrency)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1 (got %d)", c.Worker.Concurrency)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
