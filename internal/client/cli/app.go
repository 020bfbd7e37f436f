package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/flixflex/flixflex/internal/client/cache"
	"github.com/flixflex/flixflex/internal/client/catalog"
	"github.com/flixflex/flixflex/internal/client/config"
	"github.com/flixflex/flixflex/internal/client/identity"
	"github.com/flixflex/flixflex/internal/client/profiles"
	"github.com/flixflex/flixflex/internal/client/session"
	"github.com/flixflex/flixflex/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	session  *session.Manager
	catalog  *catalog.Client
	provider *identity.Client
	log      logging.Logger

	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := cache.Open(ctx, c.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	store := cache.NewSQLiteCache(db)
	provider := identity.NewClient(c.ServerBaseURL, store, log)
	profileStore := profiles.NewClient(c.ServerBaseURL, provider)
	mgr := session.NewManager(provider, profileStore, store, log, c.RemoteTimeout)

	return &App{
		config:   c,
		session:  mgr,
		catalog:  catalog.NewClient(c.CatalogBaseURL, c.CatalogToken, log),
		provider: provider,
		log:      log,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run starts the session manager and enters the command loop. It returns
// when the user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	if err := a.session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	a.Root(ctx)
	return a.Close()
}

func (a *App) Close() error {
	err := a.provider.Close()
	if dbErr := a.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
