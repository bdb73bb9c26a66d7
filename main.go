package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/handlers"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/handler"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/database"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/oidc"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/sessions"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/snapshot"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/storage"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/tokens"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/users"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/metrics"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// deps holds everything the router needs. Optional backends are nil when
// not configured or unreachable.
type deps struct {
	store    *store.Store
	mongo    *mongo.Client
	redis    redis.UniversalClient
	objects  *storage.MinIOStorage
	exporter *snapshot.Exporter
	sessions sessions.Repository
	oidc     middleware.Verifier
	registry prometheus.Registerer
	gatherer prometheus.Gatherer
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Sync()
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v level=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Enabled(), logger.LevelString())

	ctx := context.Background()
	d := deps{registry: prometheus.DefaultRegisterer, gatherer: prometheus.DefaultGatherer}

	// Redis first so sessions and the rate limiter can use it
	if addr := cfg.Redis.Addr(); addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		} else {
			d.redis = rc
			defer rc.Close()
			logger.Infof("connected to Redis at %s", addr)
		}
	}

	repos := store.MemoryRepos()
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			logger.Warnf("MongoDB unavailable, content store stays in memory: %v", err)
		} else {
			d.mongo = client
			defer func() { _ = client.Disconnect(context.Background()) }()
			repos = store.MongoRepos(client.Database(cfg.MongoDB.Database))
			logger.Infof("content store backed by MongoDB database %q", cfg.MongoDB.Database)
		}
	}
	d.store = store.New(repos)

	if cfg.MinIO.Enabled() {
		objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, snapshots disabled: %v", err)
		} else {
			d.objects = objects
			d.exporter = snapshot.NewExporter(d.store, objects, cfg.MinIO.URLExpiry)
		}
	}

	if cfg.OIDC.Enabled() {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.AdminRole)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			d.oidc = ver
			logger.Infof("accepting ID tokens from %s", cfg.OIDC.Issuer)
		}
	}

	fx, err := loadFixtures(ctx, cfg.Seed, d.exporter)
	if err != nil {
		logger.Fatalf("failed to load seed data: %v", err)
	}
	disabled, err := users.SecureSeedUsers(fx.Users, cfg.Seed.AdminPassword)
	if err != nil {
		logger.Fatalf("failed to prepare seed accounts: %v", err)
	}
	if len(disabled) > 0 {
		logger.Warnf("ADMIN_PASSWORD is not set: login disabled for seeded accounts %v", disabled)
	}
	seeded, err := d.store.SeedIfEmpty(ctx, fx)
	if err != nil {
		logger.Fatalf("failed to seed content store: %v", err)
	}
	counts, _ := d.store.Counts(ctx)
	logger.Infow("content store ready", "seeded", seeded, "documents", counts.Documents, "tutorials", counts.Tutorials, "services", counts.Services, "users", counts.Users)

	switch {
	case d.redis != nil:
		d.sessions = sessions.NewRedisRepository(d.redis, "session:")
		logger.Infof("using Redis for session storage")
	case d.mongo != nil:
		repo := sessions.NewMongoRepository(d.mongo.Database(cfg.MongoDB.Database).Collection("sessions"))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("session indexes: %v", err)
		}
		d.sessions = repo
		logger.Infof("using MongoDB for session storage")
	default:
		d.sessions = sessions.NewMemoryRepository()
		logger.Warnf("no Redis or MongoDB configured: sessions are kept in memory")
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := buildRouter(cfg, d)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting homelab-docs API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
}

// loadFixtures picks the seed source: a MinIO snapshot, a file, or the
// embedded defaults. Snapshots carry no users, so the default accounts are
// added to them.
func loadFixtures(ctx context.Context, cfg config.SeedConfig, exporter *snapshot.Exporter) (*seed.Fixtures, error) {
	defaults, err := seed.Default()
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.SnapshotKey != "" && exporter != nil:
		fx, err := exporter.Fetch(ctx, cfg.SnapshotKey)
		if err != nil {
			return nil, err
		}
		if len(fx.Users) == 0 {
			fx.Users = defaults.Users
		}
		logger.Infof("seeding from snapshot %s", cfg.SnapshotKey)
		return fx, nil
	case cfg.SnapshotKey != "":
		logger.Warnf("SEED_SNAPSHOT_KEY set but MinIO is not available; using built-in fixtures")
	case cfg.File != "":
		logger.Infof("seeding from %s", cfg.File)
		return seed.LoadFile(cfg.File)
	}
	return defaults, nil
}

func buildRouter(cfg *config.Config, d deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins), middleware.RequestID(), middleware.RequestLogger(), gin.Recovery(), middleware.Metrics())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(cfg, d))

	metrics.RegisterCollectors(d.registry)
	metrics.RegisterContentGauges(d.registry, contentCounter(d.store))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{})))

	handlers.RegisterSwagger(r)

	// locally issued tokens first, then the external provider if any
	verifier := middleware.ChainVerifiers(tokens.NewVerifier(cfg.JWT), d.oidc)
	blacklist := sessions.NewBlacklist(d.redis)
	authMW := middleware.AuthMiddleware(verifier, middleware.WithRevocations(blacklist))
	adminOnly := middleware.RequireRole(content.RoleAdmin)

	handler.RegisterContentRoutes(r, d.store, handler.WithAdmin(authMW, adminOnly))

	api := r.Group("/api")
	auth := handlers.NewAuthHandler(cfg.JWT, users.NewService(d.store), sessions.NewService(d.sessions), blacklist, verifier)
	auth.Register(api, authMW)

	if d.exporter != nil {
		snapshot.RegisterRoutes(api, d.exporter, authMW, adminOnly)
	} else {
		logger.Infof("snapshot routes not registered: MinIO not configured")
	}
	return r
}

// readyHandler returns 200 only when every configured dependency answers.
func readyHandler(cfg *config.Config, d deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		depState := map[string]bool{}

		_, err := d.store.Counts(ctx)
		depState["store"] = err == nil
		ready = ready && err == nil

		if cfg.MongoDB.URI != "" {
			ok := d.mongo != nil && d.mongo.Ping(ctx, nil) == nil
			depState["mongo"] = ok
			ready = ready && ok
		}
		if cfg.Redis.Host != "" {
			ok := d.redis != nil && d.redis.Ping(ctx).Err() == nil
			depState["redis"] = ok
			ready = ready && ok
		}
		if cfg.OIDC.Enabled() {
			ok := d.oidc != nil
			depState["oidc"] = ok
			ready = ready && ok
		}
		if cfg.MinIO.Enabled() {
			// snapshots are optional, report without failing readiness
			depState["minio"] = d.objects != nil && d.objects.Ping(ctx) == nil
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": depState, "uptime": time.Since(startTime).String()})
	}
}

func contentCounter(st *store.Store) func(string) float64 {
	return func(collection string) float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c, err := st.Counts(ctx)
		if err != nil {
			return -1
		}
		switch collection {
		case "documents":
			return float64(c.Documents)
		case "tutorials":
			return float64(c.Tutorials)
		case "services":
			return float64(c.Services)
		case "users":
			return float64(c.Users)
		}
		return -1
	}
}
