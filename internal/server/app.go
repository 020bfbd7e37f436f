// Package server wires up and runs the FlixFlex backend: the identity
// provider over PostgreSQL and the profile document store over MongoDB,
// exposed through one HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flixflex/flixflex/internal/logging"
	"github.com/flixflex/flixflex/internal/server/accounts"
	"github.com/flixflex/flixflex/internal/server/config"
	"github.com/flixflex/flixflex/internal/server/docstore"
	"github.com/flixflex/flixflex/internal/server/httpapi"
	"github.com/flixflex/flixflex/internal/server/migrations"
	"github.com/flixflex/flixflex/internal/server/refreshtokens"
	"github.com/flixflex/flixflex/internal/server/sessions"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	mongo   *mongo.Client
	httpSrv *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo init error: %w", err)
	}

	secret := []byte(cfg.SecretKey)

	accountRepo, err := accounts.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("account repository init error: %w", err)
	}
	resetRepo, err := accounts.NewPostgresResetTokenRepository(db)
	if err != nil {
		return nil, fmt.Errorf("reset token repository init error: %w", err)
	}
	refreshRepo, err := refreshtokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("refresh token repository init error: %w", err)
	}

	accountSvc := accounts.NewService(accountRepo, resetRepo, accounts.NewLogMailer(logger), cfg.ResetTokenTTL, logger)
	sessionSvc := sessions.NewService(accountSvc, refreshRepo, secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	store := docstore.NewMongoStore(mc.Database(cfg.MongoDatabase))

	api := httpapi.NewServer(logger, accountSvc, sessionSvc, store, secret, prometheus.NewRegistry())

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		mongo:  mc,
		httpSrv: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: api.Handler(),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.ListenAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()
	app.shutdown()

	wg.Wait()
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app.logger.Info(ctx, "shutting down")

	if err := app.httpSrv.Shutdown(ctx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}
	if err := app.mongo.Disconnect(ctx); err != nil {
		app.logger.Error(ctx, "mongo disconnect error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
