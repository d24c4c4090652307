package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/godilite/voting-tool/internal/config"
	handler "github.com/godilite/voting-tool/internal/grpc"
	"github.com/godilite/voting-tool/internal/httpapi"
	"github.com/godilite/voting-tool/internal/repository"
	"github.com/godilite/voting-tool/internal/repository/csvfile"
	"github.com/godilite/voting-tool/internal/repository/sheets"
	"github.com/godilite/voting-tool/internal/service"
	"github.com/godilite/voting-tool/internal/session"
	"github.com/godilite/voting-tool/pkg/cache"
	dbbuilder "github.com/godilite/voting-tool/pkg/database"
	grpcsrv "github.com/godilite/voting-tool/pkg/grpc/server"
	httpsrv "github.com/godilite/voting-tool/pkg/http/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      session.Cacher
	httpServer *httpsrv.Server
	grpcServer *grpcsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.closeResources()
		}
	}()

	store, err := a.newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := a.newCache(ctx, cfg); err != nil {
		return nil, err
	}

	votingService := service.NewVotingService(store, logger.Named("voting-service"))
	sessions := session.NewStore(a.cache, cfg.SessionTTL, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpHandlers := httpapi.NewHandlers(votingService, sessions, logger, cfg.SessionTTL, cfg.IsProduction())
	router := httpapi.NewRouter(httpHandlers, cfg.AdminTokenHash, logger)

	a.httpServer, err = httpsrv.New(
		httpsrv.WithPort(cfg.HTTPPort),
		httpsrv.WithLogger(logger),
		httpsrv.WithHandler(router),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		_ = a.httpServer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcHandlers := handler.NewGRPCHandlers(votingService, logger)
	handler.RegisterVotingToolServer(a.grpcServer, grpcHandlers)

	return a, nil
}

// newStore opens the configured voting store.
func (a *App) newStore(ctx context.Context, cfg *config.Config) (service.VotingStore, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		if !strings.Contains(cfg.DBPath, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("database dir: %w", err)
			}
		}
		dsn := cfg.DBPath
		if cfg.DBDriver == "sqlite3" && !strings.Contains(dsn, "?") {
			// Concurrent appends wait for the write lock instead of failing.
			dsn += "?_busy_timeout=5000&_journal_mode=WAL"
		}
		dbPool, err := dbbuilder.New(
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(dsn),
		)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		a.dbPool = dbPool

		repo := repository.NewVotingRepository(dbPool)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		a.logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))
		return repo, nil

	case config.BackendSheets:
		store, err := sheets.NewFromCredentialsFile(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, a.logger)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Sheets store initialized", zap.String("spreadsheet", cfg.SheetsSpreadsheetID))
		return store, nil

	default:
		store, err := csvfile.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.logger.Info("CSV store initialized", zap.String("dir", cfg.DataDir))
		return store, nil
	}
}

// newCache connects the session cache: redis when configured, otherwise an
// in-process map.
func (a *App) newCache(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		a.cache = cache.NewMemory()
		a.logger.Info("Using in-process session cache")
		return nil
	}

	cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
	if err != nil {
		return fmt.Errorf("cache init failed: %w", err)
	}
	a.cache = cacheClient
	a.logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	return nil
}

// HTTPAddr returns the HTTP listener address.
func (a *App) HTTPAddr() net.Addr {
	return a.httpServer.Addr()
}

// GRPCAddr returns the gRPC listener address.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// Run starts both servers and blocks until ctx is done or a shutdown signal
// is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.httpServer.Start()
	a.grpcServer.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Warn("shutdown completed with errors", zap.Error(err))
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return err
}

// Shutdown stops both servers concurrently, then releases the store and
// cache.
func (a *App) Shutdown(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.httpServer.Shutdown(gctx) })
	g.Go(func() error { return a.grpcServer.Shutdown(gctx) })
	err := g.Wait()

	a.closeResources()
	return err
}

func (a *App) closeResources() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
}
