package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flixflex/flixflex/internal/client/cache/migrations"
	"github.com/flixflex/flixflex/internal/client/models"
	"github.com/flixflex/flixflex/internal/dbx"
	"github.com/pressly/goose/v3"
)

const (
	keyUser         = "user"
	keyRefreshToken = "refresh_token"
)

// SQLiteCache is the device-storage implementation of Cache and TokenStore,
// backed by a metadata key/value table.
type SQLiteCache struct {
	db dbx.DBTX
}

func NewSQLiteCache(db dbx.DBTX) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// Open opens (or creates) the cache database at path and applies migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate cache db: %w", err)
	}

	return db, nil
}

func (c *SQLiteCache) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (c *SQLiteCache) set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) ReadUser(ctx context.Context) (*models.User, error) {
	data, err := c.get(ctx, keyUser)
	if err != nil || data == nil {
		return nil, err
	}
	return models.UnmarshalUser(data)
}

func (c *SQLiteCache) WriteUser(ctx context.Context, user *models.User) error {
	data, err := user.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}
	return c.set(ctx, keyUser, data)
}

func (c *SQLiteCache) DeleteUser(ctx context.Context) error {
	return c.delete(ctx, keyUser)
}

func (c *SQLiteCache) ReadToken(ctx context.Context) (string, error) {
	data, err := c.get(ctx, keyRefreshToken)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *SQLiteCache) WriteToken(ctx context.Context, token string) error {
	return c.set(ctx, keyRefreshToken, []byte(token))
}

func (c *SQLiteCache) DeleteToken(ctx context.Context) error {
	return c.delete(ctx, keyRefreshToken)
}
