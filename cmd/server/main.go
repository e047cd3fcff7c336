package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"subbrain/internal/auth"
	"subbrain/internal/bootstrap"
	"subbrain/internal/config"
	"subbrain/internal/handler"
	"subbrain/internal/middleware"
	"subbrain/internal/observability"
	brainService "subbrain/internal/service/brain"
	"subbrain/internal/storage"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"table_prefix", cfg.TablePrefix,
	)

	jwtVerifier, err := newVerifier(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx := context.Background()
	clk := clock.New()

	stores, err := bootstrap.OpenStores(ctx, cfg, clk, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stores.Close()

	// Schema and indexes are idempotent; the memory store needs neither
	if err := stores.Migrate(ctx, false); err != nil {
		log.Fatalf("Failed to migrate store: %v", err)
	}

	collector := observability.NewCollector("subbrain")
	var recorder brainService.Recorder
	if cfg.MetricsEnabled {
		recorder = collector
	}

	services := bootstrap.NewServices(
		stores,
		storage.NewNoopBlobStore(logger),
		recorder,
		cfg.CollectionCacheTTL,
		clk,
		logger,
	)

	handlers := &handler.Handlers{
		Health:      handler.NewHealthHandler(stores.Pinger, stores.Driver, clk),
		Collections: handler.NewCollectionHandler(services.Collections, logger),
		Content:     handler.NewContentHandler(services.Contents, logger),
		Search:      handler.NewSearchHandler(services.Search, logger),
		Share:       handler.NewShareHandler(services.Shares, logger),
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", collector.Handler())
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Metrics → Routes
	var h http.Handler = mux
	if cfg.MetricsEnabled {
		h = middleware.Metrics(collector)(h)
	}
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newVerifier prefers JWKS verification and falls back to a shared HS256 secret
func newVerifier(cfg *config.Config, logger *slog.Logger) (auth.JWTVerifier, error) {
	if cfg.SupabaseJWKSURL != "" {
		return auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	}
	if cfg.JWTSecret != "" {
		return auth.NewHMACVerifier(cfg.JWTSecret, logger)
	}
	return nil, errors.New("set SUPABASE_URL or JWT_SECRET")
}
