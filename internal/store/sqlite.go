package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/card-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "cards.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// tsLayout is fixed width so updated_at sorts lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS card_values (
	id         TEXT PRIMARY KEY,
	card_key   TEXT NOT NULL UNIQUE,
	card       TEXT NOT NULL,
	result     TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_card_values_updated_at ON card_values(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCmv(ctx context.Context, card model.CardRef) (*model.StoredCmv, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, card, result, updated_at FROM card_values WHERE card_key = ?`, card.Key())
	out, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cmv %s", card.Key())
	}
	return out, nil
}

func (s *SQLiteStore) PutCmv(ctx context.Context, card model.CardRef, result model.CmvResult) (*model.StoredCmv, error) {
	cardJSON, resultJSON, err := encode(card, result)
	if err != nil {
		return nil, err
	}
	at := updatedAt(result)

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO card_values (id, card_key, card, result, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (card_key) DO UPDATE SET card = excluded.card, result = excluded.result, updated_at = excluded.updated_at
		RETURNING id`,
		uuid.NewString(), card.Key(), string(cardJSON), string(resultJSON), at.UTC().Format(tsLayout),
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: put cmv %s", card.Key())
	}
	return &model.StoredCmv{ID: id, Card: card, Result: result, UpdatedAt: at}, nil
}

func (s *SQLiteStore) ListCmv(ctx context.Context, filter CmvFilter) ([]model.StoredCmv, error) {
	var (
		where []string
		args  []any
	)
	if !filter.UpdatedBefore.IsZero() {
		where = append(where, "updated_at < ?")
		args = append(args, filter.UpdatedBefore.UTC().Format(tsLayout))
	}

	q := `SELECT id, card, result, updated_at FROM card_values`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY updated_at ASC"
	if filter.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cmv")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.StoredCmv
	for rows.Next() {
		v, err := scanSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cmv")
		}
		out = append(out, *v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate cmv")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLite(row scannable) (*model.StoredCmv, error) {
	var id, cardJSON, resultJSON, ts string
	if err := row.Scan(&id, &cardJSON, &resultJSON, &ts); err != nil {
		return nil, err
	}
	at, err := time.Parse(tsLayout, ts)
	if err != nil {
		return nil, eris.Wrapf(err, "parse updated_at %q", ts)
	}
	return decode(id, []byte(cardJSON), []byte(resultJSON), at)
}
