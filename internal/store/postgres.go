package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/protein-plate-api/internal/session"
)

// sessionRow maps to the sessions table. state is read and written as text
// so the simple query protocol never has to guess a jsonb encoding.
type sessionRow struct {
	ID        uuid.UUID `db:"id"`
	Version   int       `db:"version"`
	State     string    `db:"state"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Postgres stores sessions in the sessions table.
type Postgres struct {
	pool *pgxpool.Pool
	opts session.Options
}

func NewPostgres(pool *pgxpool.Pool, opts session.Options) *Postgres {
	return &Postgres{pool: pool, opts: opts}
}

// Connect creates a connection pool for dbURL. We use a pool (not a single
// conn) because hosted Postgres closes idle connections after a few minutes.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

func (p *Postgres) Load(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row, err := queryOne[sessionRow](ctx, p.pool,
		"SELECT id, version, state::text AS state, updated_at FROM sessions WHERE id = @id",
		pgx.NamedArgs{"id": id.String()})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return decode(row.ID, row.Version, []byte(row.State), p.opts)
}

// Save upserts the session document.
func (p *Postgres) Save(ctx context.Context, s *session.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	_, err = queryOne[sessionRow](ctx, p.pool,
		`INSERT INTO sessions (id, version, state, updated_at)
		 VALUES (@id, @version, @state::jsonb, @updatedAt)
		 ON CONFLICT (id) DO UPDATE SET
			version    = EXCLUDED.version,
			state      = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
		 RETURNING id, version, state::text AS state, updated_at`,
		pgx.NamedArgs{
			"id":        s.ID.String(),
			"version":   s.Version,
			"state":     string(b),
			"updatedAt": s.UpdatedAt,
		})
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context) (*session.Session, error) {
	s := session.New(uuid.New(), p.opts)
	if err := p.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ResetConsumedProtein zeroes consumed_protein_g inside every stored
// document in one statement.
func (p *Postgres) ResetConsumedProtein(ctx context.Context) (int64, error) {
	result, err := p.pool.Exec(ctx,
		`UPDATE sessions SET
			state      = jsonb_set(state, '{consumed_protein_g}', '0'::jsonb),
			updated_at = now()
		 WHERE COALESCE((state->>'consumed_protein_g')::int, 0) <> 0`)
	if err != nil {
		return 0, fmt.Errorf("reset consumed protein: %w", err)
	}
	return result.RowsAffected(), nil
}
