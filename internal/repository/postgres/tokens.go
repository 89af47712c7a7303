package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// TokenRepo implements upload-token storage against PostgreSQL.
type TokenRepo struct{ db *sql.DB }

// NewTokenRepo creates a Postgres-backed token repository.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// AirlineForToken resolves an active upload token to its airline code.
// Returns ErrNotFound for unknown or deactivated tokens.
func (r *TokenRepo) AirlineForToken(ctx context.Context, token string) (string, error) {
	var airline string
	err := r.db.QueryRowContext(ctx,
		`SELECT airline_iata_code FROM tokens WHERE token = $1 AND is_active`,
		token,
	).Scan(&airline)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup token: %w", err)
	}
	return airline, nil
}

// Create stores a new active token for the airline.
func (r *TokenRepo) Create(ctx context.Context, token, airline string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (token, airline_iata_code) VALUES ($1, $2)`,
		token, airline,
	)
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// Deactivate marks a token inactive. Returns ErrNotFound if no such token
// exists.
func (r *TokenRepo) Deactivate(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET is_active = FALSE WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("deactivate token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate token result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
