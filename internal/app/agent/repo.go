package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no agent matches the lookup.
var ErrNotFound = errors.New("agent not found")

// Repo provides agent persistence on top of a pgx connection pool.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a Repo over the given pool.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new agent account and returns the committed row. A unique
// violation on username surfaces as the raw pgx error for the caller to map.
func (r *Repo) Create(ctx context.Context, id, username, passwordHash, displayName string) (*Agent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO agents (id, username, password_hash, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, username, display_name, created_at, last_login_at`,
		id, username, passwordHash, displayName,
	)

	return scanAgent(row)
}

// GetByUsername returns the agent with the given sign-in name together with
// its password hash for credential verification.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*Agent, string, error) {
	var (
		a    Agent
		hash string
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id::text, username, display_name, created_at, last_login_at, password_hash
		FROM agents
		WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.DisplayName, &a.CreatedAt, &a.LastLoginAt, &hash)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get agent by username: %w", err)
	}

	return &a, hash, nil
}

// GetByID returns the agent with the given identity key.
func (r *Repo) GetByID(ctx context.Context, id string) (*Agent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, username, display_name, created_at, last_login_at
		FROM agents
		WHERE id = $1`,
		id,
	)

	return scanAgent(row)
}

// UpdateLastLogin stamps the agent's last successful sign-in time.
func (r *Repo) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE agents SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func scanAgent(row pgx.Row) (*Agent, error) {
	var a Agent

	err := row.Scan(&a.ID, &a.Username, &a.DisplayName, &a.CreatedAt, &a.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}

	return &a, nil
}
