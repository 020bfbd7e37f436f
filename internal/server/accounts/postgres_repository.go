package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) (*Account, error) {

	query :=
		`INSERT INTO accounts (id, email, password_hash)
         VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash).Scan(&account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at FROM accounts
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at FROM accounts
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	return account, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	query := `UPDATE accounts SET password_hash = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// PostgresResetTokenRepository stores reset tokens in the reset_tokens table.
type PostgresResetTokenRepository struct {
	db *sql.DB
}

func NewPostgresResetTokenRepository(db *sql.DB) (*PostgresResetTokenRepository, error) {
	return &PostgresResetTokenRepository{db: db}, nil
}

func (r *PostgresResetTokenRepository) Create(ctx context.Context, accountID, token string, validity time.Duration) error {
	query :=
		`INSERT INTO reset_tokens (token, account_id, expires_at)
         VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, token, accountID, time.Now().Add(validity))
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	query :=
		`DELETE FROM reset_tokens
		 WHERE token = $1 AND expires_at > now()
		 RETURNING account_id
		 `

	var accountID string
	err := r.db.QueryRowContext(ctx, query, token).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("error performing sql request: %v", err)
	}
	return accountID, nil
}
