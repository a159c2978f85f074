package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"quiz-widget/internal/auth"
	"quiz-widget/internal/config"
	"quiz-widget/internal/frame"
	"quiz-widget/internal/logger"
	"quiz-widget/internal/quiz"
	"quiz-widget/internal/widget"
	"quiz-widget/pkg/cache"
	"quiz-widget/pkg/websocket"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCloser := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Stdout:     true,
	})
	defer logCloser.Close()

	if cfg.UsesDefaultSecret() {
		slog.Warn("SESSION_SECRET not set, using the development secret")
	}

	engine, err := quiz.NewDefaultEngine()
	if err != nil {
		return fmt.Errorf("invalid question set: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := frame.NewReadiness()

	// Session store
	var store quiz.Store
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedisCache(cfg.RedisAddr, cfg.SessionTTL)
		defer redisCache.Close()
		store = redisCache
	} else {
		slog.Info("REDIS_ADDR not set, keeping sessions in memory")
		store = quiz.NewMemoryRepository()
	}

	wsHub := websocket.NewHub(originChecker(cfg.AllowedOrigins))
	go wsHub.Run(ctx)

	authService := auth.NewService(cfg.SessionSecret, cfg.SessionTTL)
	quizService := quiz.NewService(engine, store, wsHub, readiness, widget.NewHeader(cfg.ProjectTitle))
	wsHub.SetCommands(quizService)

	renderer, err := widget.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	authHandler := auth.NewHandler(authService)
	quizHandler := quiz.NewHandler(quizService, authService, renderer, cfg.CookieSecure)
	sessionMW := auth.SessionMiddleware(authService)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	router.HandleFunc("/ready", readiness.Handler).Methods("GET")
	router.Handle("/api/session/refresh", sessionMW(http.HandlerFunc(authHandler.Refresh))).Methods("POST", "OPTIONS")
	router.Handle("/ws", sessionMW(http.HandlerFunc(wsHub.HandleWebSocket)))
	quizHandler.RegisterRoutes(router, sessionMW)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// The frame is ready once the session store answers.
	go func() {
		if redisCache != nil {
			if err := waitForRedis(ctx, redisCache); err != nil {
				return
			}
		}
		readiness.MarkReady()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server shutdown gracefully")
	return nil
}

func waitForRedis(ctx context.Context, c *cache.RedisCache) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		err := c.Ping(ctx)
		if err == nil {
			return nil
		}
		slog.Warn("waiting for redis", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return nil
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
			return true
		}
		for _, a := range allowed {
			if a == origin {
				return true
			}
		}
		return false
	}
}
