// Command content serves the public, read-only catalog API and search. It
// has no auth and no Redis; writes go through the main API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/handler"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/database"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/users"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/logger"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer logger.Sync()

	ctx := context.Background()
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("content store: %v", err)
	}
	defer closeStore()

	r := gin.New()
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins), middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "healthy") })
	handler.RegisterContentRoutes(r, st)

	srv := &http.Server{Addr: ":" + cfg.Server.ContentPort, Handler: r}
	go func() {
		logger.Infof("content service listening on :%s", cfg.Server.ContentPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
}

// openStore prefers Mongo when MONGODB_URI is set and falls back to a
// seeded in-memory store when it is unreachable. The returned func releases
// the Mongo client, if any.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	noop := func() {}
	fx, err := seed.Default()
	if cfg.Seed.File != "" {
		fx, err = seed.LoadFile(cfg.Seed.File)
	}
	if err != nil {
		return nil, noop, err
	}
	if _, err := users.SecureSeedUsers(fx.Users, cfg.Seed.AdminPassword); err != nil {
		return nil, noop, err
	}
	if cfg.MongoDB.URI == "" {
		st, err := store.NewMemory(ctx, fx)
		return st, noop, err
	}
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Warnf("cannot connect to MongoDB (%v), using memory-backed store", err)
		st, err := store.NewMemory(ctx, fx)
		return st, noop, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	st := store.New(store.MongoRepos(client.Database(cfg.MongoDB.Database)))
	if _, err := st.SeedIfEmpty(ctx, fx); err != nil {
		disconnect()
		return nil, noop, err
	}
	return st, disconnect, nil
}
