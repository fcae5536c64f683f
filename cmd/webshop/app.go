package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkovardin/webshop/internal/db"
	"github.com/mkovardin/webshop/internal/handlers"
	"github.com/mkovardin/webshop/internal/handlers/middleware"
	"github.com/mkovardin/webshop/internal/logger"
	"github.com/mkovardin/webshop/internal/repository/postgres"
	"github.com/mkovardin/webshop/internal/service/auth"
	"github.com/mkovardin/webshop/internal/service/auth/tokenmanager"
	"github.com/mkovardin/webshop/internal/service/product"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  time.Duration(c.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(c.RefreshTTLSeconds) * time.Second,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{InsecureCookie: c.CookieInsecure}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	productService := product.NewService(storage.Product())

	if c.Seed {
		if err := seed(ctx, logger, storage, productService); err != nil {
			return nil, fmt.Errorf("error while seeding initial data. Err: %w", err)
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuth(authService)
	productHandler := handlers.NewProduct(productService)

	mux := handlers.NewRouter(
		authHandler,
		productHandler,
		middleware.Authenticate(authService, "/api/auth/"),
		middleware.LoggerMiddleware(logger),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
