package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jaekwang-park/todo-list/internal/cache"
	"github.com/jaekwang-park/todo-list/internal/config"
	"github.com/jaekwang-park/todo-list/internal/middleware"
	todohttp "github.com/jaekwang-park/todo-list/internal/http"
	"github.com/jaekwang-park/todo-list/internal/repository"
	"github.com/jaekwang-park/todo-list/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(middleware.NewContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	})))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"store", cfg.StoreBackend,
		"db_driver", cfg.DB.Driver,
		"log_level", cfg.LogLevel,
	)

	if cfg.AppEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, closer, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	var opts []service.Option
	if rdb := openCache(ctx, cfg.Redis, logger); rdb != nil {
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewPageCache(rdb, cfg.Redis.TTL)))
	}

	todoSvc := service.NewTodoService(repo, logger, opts...)

	srv := todohttp.NewServer(todohttp.ServerOptions{
		Port:         cfg.ServerPort,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		AllowOrigins: cfg.HTTP.AllowOrigins,
	}, logger, todoSvc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.TodoRepository, io.Closer, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryTodo(), nopCloser{}, nil
	}

	db, err := repository.NewDB(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected", "driver", cfg.DB.Driver)

	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return repository.NewPostgresTodo(db), db, nil
}

// openCache returns nil when no Redis is configured. The cache is optional,
// so an unreachable Redis is logged and skipped.
func openCache(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	opts, ok, err := cfg.Options()
	if err != nil || !ok {
		logger.Info("page cache disabled")
		return nil
	}

	rdb, err := cache.NewRedisClient(ctx, opts)
	if err != nil {
		logger.Warn("page cache disabled", "error", err)
		return nil
	}
	logger.Info("page cache enabled", "addr", opts.Addr, "ttl", cfg.TTL.String())
	return rdb
}
