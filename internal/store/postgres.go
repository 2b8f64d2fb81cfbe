package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/card-cli/internal/db"
	"github.com/sells-group/card-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects a pool and wraps it.
func NewPostgres(ctx context.Context, dsn string, cfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, dsn, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS card_values (
	id         TEXT PRIMARY KEY,
	card_key   TEXT NOT NULL UNIQUE,
	card       JSONB NOT NULL,
	result     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_card_values_updated_at ON card_values(updated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCmv(ctx context.Context, card model.CardRef) (*model.StoredCmv, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, card, result, updated_at FROM card_values WHERE card_key = $1`, card.Key())
	out, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cmv %s", card.Key())
	}
	return out, nil
}

func (s *PostgresStore) PutCmv(ctx context.Context, card model.CardRef, result model.CmvResult) (*model.StoredCmv, error) {
	cardJSON, resultJSON, err := encode(card, result)
	if err != nil {
		return nil, err
	}
	at := updatedAt(result)

	var id string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO card_values (id, card_key, card, result, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (card_key) DO UPDATE SET card = EXCLUDED.card, result = EXCLUDED.result, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.NewString(), card.Key(), cardJSON, resultJSON, at,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: put cmv %s", card.Key())
	}
	return &model.StoredCmv{ID: id, Card: card, Result: result, UpdatedAt: at}, nil
}

func (s *PostgresStore) ListCmv(ctx context.Context, filter CmvFilter) ([]model.StoredCmv, error) {
	q := `SELECT id, card, result, updated_at FROM card_values`
	var args []any
	if !filter.UpdatedBefore.IsZero() {
		args = append(args, filter.UpdatedBefore.UTC())
		q += fmt.Sprintf(" WHERE updated_at < $%d", len(args))
	}
	q += " ORDER BY updated_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cmv")
	}
	defer rows.Close()

	var out []model.StoredCmv
	for rows.Next() {
		v, err := scanPostgres(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan cmv")
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate cmv")
}

func scanPostgres(row pgx.Row) (*model.StoredCmv, error) {
	var (
		id                   string
		cardJSON, resultJSON []byte
		at                   time.Time
	)
	if err := row.Scan(&id, &cardJSON, &resultJSON, &at); err != nil {
		return nil, err
	}
	return decode(id, cardJSON, resultJSON, at)
}
