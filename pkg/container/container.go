package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"catalog-backend/internal/config"
	"catalog-backend/internal/domains/attribute"
	attributeHandler "catalog-backend/internal/domains/attribute/handler"
	attributeRepo "catalog-backend/internal/domains/attribute/repository"
	attributeService "catalog-backend/internal/domains/attribute/service"
	"catalog-backend/internal/domains/brand"
	brandHandler "catalog-backend/internal/domains/brand/handler"
	brandRepo "catalog-backend/internal/domains/brand/repository"
	brandService "catalog-backend/internal/domains/brand/service"
	"catalog-backend/internal/domains/category"
	categoryHandler "catalog-backend/internal/domains/category/handler"
	categoryRepo "catalog-backend/internal/domains/category/repository"
	categoryService "catalog-backend/internal/domains/category/service"
	"catalog-backend/internal/domains/product"
	productHandler "catalog-backend/internal/domains/product/handler"
	productRepo "catalog-backend/internal/domains/product/repository"
	productService "catalog-backend/internal/domains/product/service"
	infraCache "catalog-backend/internal/infrastructure/cache"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared/metrics"
	"catalog-backend/pkg/cache"
	"catalog-backend/pkg/jwt"
	"catalog-backend/pkg/logger"
)

const cacheKeyPrefix = "catalog:"

// Container holds every dependency of the API and worker processes.
//
// Initialization order matters: config, infrastructure (DB, cache),
// repositories, services, handlers.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient // nil when running on the in-memory cache
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Enqueuer   *queue.Enqueuer       // nil without Redis; background jobs are skipped
	Storage    *storage.MinIOStorage // nil when image uploads are disabled

	// Repositories
	CategoryRepo  category.CategoryRepository
	BrandRepo     brand.Repository
	AttributeRepo attribute.Repository
	ProductRepo   product.Repository

	// Services
	CategoryService  category.CategoryService
	BrandService     brand.Service
	AttributeService attribute.Service
	ProductService   product.Service

	// Handlers
	CategoryHandler  *categoryHandler.CategoryHandler
	BrandHandler     *brandHandler.BrandHandler
	AttributeHandler *attributeHandler.AttributeHandler
	ProductHandler   *productHandler.ProductHandler
}

// NewContainer builds the full dependency graph. The caller owns Cleanup.
func NewContainer(cfg *config.Config) (*Container, error) {
	logger.Info("initializing container", map[string]interface{}{"env": cfg.App.Environment})
	c := &Container{Config: cfg}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initCache()
	c.initStorage()
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container ready", nil)
	return c, nil
}

func (c *Container) initDatabase() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	if c.Config.Database.AutoMigrate {
		m := database.NewMigrator(db.Pool)
		defer m.Close()
		if err := m.Up(ctx); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	metrics.RegisterPoolGauges(prometheus.DefaultRegisterer, func() (int32, int32, int32, bool) {
		s, err := db.Stats()
		if err != nil {
			return 0, 0, 0, false
		}
		return s.AcquiredConns, s.IdleConns, s.TotalConns, true
	})
	return nil
}

// initCache connects to Redis. A Redis outage is not fatal: the API falls
// back to a per-process cache.
func (c *Container) initCache() {
	rc := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rc.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-memory cache", map[string]interface{}{"error": err.Error()})
		rc.Close()
		c.Cache = infraCache.NewMemoryCache()
		return
	}
	c.Redis = rc
	c.Cache = infraCache.NewRedisCache(rc.Client, cacheKeyPrefix)
	c.Enqueuer = queue.NewEnqueuer(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
}

// initStorage connects to the image bucket. Uploads stay disabled when no
// endpoint is configured or the bucket is unreachable.
func (c *Container) initStorage() {
	if c.Config.Storage.Endpoint == "" {
		logger.Info("image storage not configured, uploads disabled", nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := storage.NewMinIOStorage(ctx, c.Config.Storage)
	if err != nil {
		logger.Warn("image storage unavailable, uploads disabled", map[string]interface{}{"error": err.Error()})
		return
	}
	c.Storage = s
	logger.Info("image storage connected", map[string]interface{}{"bucket": c.Config.Storage.Bucket})
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool
	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool)
	c.BrandRepo = brandRepo.NewPostgresRepository(pool)
	c.AttributeRepo = attributeRepo.NewPostgresRepository(pool)
	c.ProductRepo = productRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	opts := categoryService.Options{
		MaxDepth:             c.Config.Catalog.MaxCategoryDepth,
		TreeCacheTTL:         c.Config.Catalog.TreeCacheTTL,
		ReconcileConcurrency: c.Config.Catalog.ReconcileConcurrency,
	}
	if c.Enqueuer != nil {
		opts.OnTreeChanged = c.Enqueuer.TreeChanged
	}
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo, c.Cache, opts)
	c.BrandService = brandService.NewBrandService(c.BrandRepo)
	c.AttributeService = attributeService.NewAttributeService(c.AttributeRepo)
	var productOpts []productService.Option
	if c.Storage != nil {
		productOpts = append(productOpts, productService.WithImageStore(c.Storage))
	}
	c.ProductService = productService.NewProductService(c.ProductRepo, c.Cache, productOpts...)
}

func (c *Container) initHandlers() {
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
	c.BrandHandler = brandHandler.NewBrandHandler(c.BrandService)
	c.AttributeHandler = attributeHandler.NewAttributeHandler(c.AttributeService)
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService)
}

// Cleanup releases the database pool, the Redis connection and the queue
// client.
func (c *Container) Cleanup() {
	logger.Info("cleaning up resources", nil)

	if c.Enqueuer != nil {
		if err := c.Enqueuer.Close(); err != nil {
			logger.Error("failed to close queue client", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}
}
