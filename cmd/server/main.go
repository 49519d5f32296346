package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/projectdesk/internal/events"
	"github.com/yourorg/projectdesk/internal/featureflags"
	"github.com/yourorg/projectdesk/internal/handler"
	"github.com/yourorg/projectdesk/internal/infrastructure/logger"
	"github.com/yourorg/projectdesk/internal/infrastructure/redis"
	"github.com/yourorg/projectdesk/internal/observability/metrics"
	"github.com/yourorg/projectdesk/internal/observability/tracing"
	"github.com/yourorg/projectdesk/internal/repository"
	"github.com/yourorg/projectdesk/internal/security"
	"github.com/yourorg/projectdesk/internal/security/audit"
	"github.com/yourorg/projectdesk/internal/security/auth"
	"github.com/yourorg/projectdesk/internal/security/middleware"
	"github.com/yourorg/projectdesk/internal/security/ratelimit"
	"github.com/yourorg/projectdesk/internal/service"
	"github.com/yourorg/projectdesk/internal/worker"
	"github.com/yourorg/projectdesk/pkg/cache"
	"github.com/yourorg/projectdesk/pkg/config"
	"github.com/yourorg/projectdesk/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting projectdesk server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, "projectdesk", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect the backing store
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Connect Redis (token revocation + readiness)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	db := pool.GetDB()
	profileRepo := repository.NewPostgresProfileRepository(db, log)
	projectRepo := repository.NewPostgresProjectRepository(db, log)
	membershipRepo := repository.NewPostgresMembershipRepository(db, log)

	// 7. Initialize services
	hub := events.NewHub(log)
	registry := service.NewRegistry()
	workspaces := service.NewWorkspaceService(
		profileRepo,
		projectRepo,
		membershipRepo,
		log,
		service.WithDirectoryCache(cache.New(), cfg.DirectoryTTL),
		service.WithPublisher(hub),
		service.WithUniqueMembership(featureflags.Enabled(featureflags.UniqueMembership)),
	)

	// 8. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "projectdesk")
	revoker := auth.NewRevoker(redisClient, log)
	authz := security.NewAuthorizationService(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 9. Handlers and routes
	projectsHandler := handler.NewProjectsHandler(workspaces, registry, log)
	createProjectHandler := handler.NewCreateProjectHandler(workspaces, registry, log)
	membersHandler := handler.NewMembersHandler(workspaces, registry, log)
	candidatesHandler := handler.NewCandidatesHandler(workspaces, registry, log)
	directoryHandler := handler.NewDirectoryHandler(workspaces, registry, log)
	meHandler := handler.NewMeHandler(authz, log)
	signOutHandler := handler.NewSignOutHandler(revoker, auditLogger, log)
	eventsHandler := handler.NewEventsHandler(hub, tokenManager, log, cfg.CORSAllowedOrigins)

	mux := http.NewServeMux()
	mux.Handle("GET /api/projects", projectsHandler)
	mux.Handle("POST /api/projects", createProjectHandler)
	mux.Handle("GET /api/projects/{id}/members", http.HandlerFunc(membersHandler.List))
	mux.Handle("POST /api/projects/{id}/members", http.HandlerFunc(membersHandler.Add))
	mux.Handle("DELETE /api/projects/{id}/members/{memberId}", http.HandlerFunc(membersHandler.Remove))
	mux.Handle("GET /api/projects/{id}/candidates", candidatesHandler)
	mux.Handle("GET /api/directory", directoryHandler)
	mux.Handle("GET /api/me", meHandler)
	mux.Handle("POST /api/auth/signout", signOutHandler)
	mux.Handle("GET /ws/events", eventsHandler)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database not ready"))
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("redis not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// CORS sits outermost so preflight requests never reach auth
	withCORS := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(cfg.CORSAllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if len(cfg.CORSAllowedOrigins) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	// Chain middleware: request ID -> metrics -> CORS -> JWT -> rate limit -> audit -> mux.
	// JWT runs before the rate limiter and audit log so both see the
	// authenticated organization.
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			withCORS(
				middleware.JWTMiddleware(tokenManager, revoker, log)(
					middleware.RateLimitMiddleware(rateLimiter, log)(
						middleware.AuditMiddleware(auditLogger)(mux),
					),
				),
			),
		),
		log,
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "projectdesk")

	// 10. Start janitor worker in background
	janitor := worker.NewJanitor(registry, log, cfg.JanitorInterval, cfg.WorkspaceIdleTTL)
	go janitor.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Bool("unique_membership", featureflags.Enabled(featureflags.UniqueMembership)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop janitor
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
