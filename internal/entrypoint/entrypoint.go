package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/database"
	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	booksdb "github.com/mrudenko/bookcatalog/internal/database/books"
	http_controllers "github.com/mrudenko/bookcatalog/internal/http"
	"github.com/mrudenko/bookcatalog/internal/logger"
	"github.com/mrudenko/bookcatalog/internal/scheduler"
	"github.com/mrudenko/bookcatalog/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *zap.SugaredLogger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Infow("starting server", "host", cfg.HTTP.Host, "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down", "drain_timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server shutdown failed", "error", err)
	}

	log.Infow("server exiting")
}

func Run(cfg *config.Config, version string) {
	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("starting bookcatalog", "version", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorw("error closing database", "error", err)
		}
	}()
	log.Infow("database initialized", "path", cfg.Database.Path)

	booksRepo := booksdb.NewRepository(db.DB)
	authorsRepo := authorsdb.NewRepository(db.DB)

	bookService := services.NewBookService(db, booksRepo, authorsRepo, log, cfg.Pagination)
	authorService := services.NewAuthorService(db, authorsRepo, log, cfg.Pagination)

	integrity := scheduler.NewIntegrityScheduler(db, booksRepo, authorsRepo, log, cfg.Integrity)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := integrity.Start(schedulerCtx); err != nil {
		log.Fatalw("failed to start integrity scheduler", "error", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database: db,
		Books:    bookService,
		Authors:  authorService,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		integrity.Stop()
		schedulerCancel()
	}

	Serve(router, cfg, log, onShutdown)
}
