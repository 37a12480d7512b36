// Package server assembles the HTTP router and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/quorum/pkg/quorum/answers"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
	"github.com/mikepea/quorum/pkg/quorum/auth"
	"github.com/mikepea/quorum/pkg/quorum/logging"
	"github.com/mikepea/quorum/pkg/quorum/questions"
	"github.com/mikepea/quorum/pkg/quorum/repository"
	"github.com/mikepea/quorum/pkg/quorum/tags"
	"github.com/mikepea/quorum/pkg/quorum/users"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Options carries the dependencies of the router.
type Options struct {
	Store      *repository.Store
	Issuer     *auth.TokenIssuer
	BcryptCost int
	Logger     *slog.Logger
}

// NewRouter creates a Gin engine with all routes registered.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(logging.RequestLogger(logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		apierror.Abort(c, fmt.Errorf("panic: %v", recovered))
	}))
	r.NoRoute(func(c *gin.Context) {
		apierror.Abort(c, apierror.NotFound("Not Found"))
	})

	// Health check endpoint
	r.GET("/health", health(opts.Store))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireUser := auth.RequireUser(opts.Issuer, opts.Store)
	api := r.Group("")
	{
		users.NewHandler(opts.Store, opts.Issuer, opts.BcryptCost).RegisterRoutes(api, requireUser)
		questions.NewHandler(opts.Store).RegisterRoutes(api, requireUser)
		answers.NewHandler(opts.Store).RegisterRoutes(api, requireUser)
		tags.NewHandler(opts.Store).RegisterRoutes(api)
	}

	return r
}

// health reports whether the database answers.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func health(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
