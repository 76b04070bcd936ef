package identity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type pgstore struct {
	db *sql.DB
}

// NewPostgresStore opens a lib/pq backed store against the users table.
func NewPostgresStore(databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &pgstore{db: db}, nil
}

func (s *pgstore) Insert(ctx context.Context, ident *Identity) error {
	if ident == nil {
		return fmt.Errorf("nil identity payload")
	}
	const query = `
		INSERT INTO users (id, username, rating, wins, losses, draws, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		ident.ID, ident.Username, ident.Rating,
		ident.Wins, ident.Losses, ident.Draws, string(ident.Status),
	)
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateIdentity
	}
	return nil
}

func (s *pgstore) Get(ctx context.Context, id string) (*Identity, error) {
	const query = `
		SELECT id, username, rating, wins, losses, draws, status, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1`

	var ident Identity
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ident.ID, &ident.Username, &ident.Rating,
		&ident.Wins, &ident.Losses, &ident.Draws,
		&status, &ident.CreatedAt, &ident.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select identity: %w", err)
	}
	ident.Status = Status(status)
	return &ident, nil
}

func (s *pgstore) Update(ctx context.Context, ident *Identity) error {
	if ident == nil {
		return fmt.Errorf("nil identity payload")
	}
	const query = `
		UPDATE users
		SET username = $2, rating = $3, wins = $4, losses = $5, draws = $6,
		    status = $7, updated_at = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		ident.ID, ident.Username, ident.Rating,
		ident.Wins, ident.Losses, ident.Draws, string(ident.Status),
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update identity: unknown id %s", ident.ID)
	}
	return nil
}

func (s *pgstore) SetStatus(ctx context.Context, id string, status Status) error {
	const query = `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, id, string(status)); err != nil {
		return fmt.Errorf("update identity status: %w", err)
	}
	return nil
}

func (s *pgstore) Leaderboard(ctx context.Context, limit int) ([]*Identity, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
		SELECT id, username, rating, wins, losses, draws, status, created_at, updated_at
		FROM users
		ORDER BY rating DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]*Identity, 0, limit)
	for rows.Next() {
		var ident Identity
		var status string
		if err := rows.Scan(
			&ident.ID, &ident.Username, &ident.Rating,
			&ident.Wins, &ident.Losses, &ident.Draws,
			&status, &ident.CreatedAt, &ident.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		ident.Status = Status(status)
		out = append(out, &ident)
	}
	return out, rows.Err()
}

// Close releases the underlying pool. Exposed for shutdown wiring.
func (s *pgstore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
