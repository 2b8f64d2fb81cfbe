// Package store persists CMV results so repeat valuations and staleness
// refreshes can skip the listings collaborator.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/card-cli/internal/db"
	"github.com/sells-group/card-cli/internal/model"
)

// Store is the CMV cache.
type Store interface {
	// GetCmv returns nil, nil when the card has never been valued.
	GetCmv(ctx context.Context, card model.CardRef) (*model.StoredCmv, error)
	// PutCmv inserts or replaces the valuation for the card's key.
	PutCmv(ctx context.Context, card model.CardRef, result model.CmvResult) (*model.StoredCmv, error)
	ListCmv(ctx context.Context, filter CmvFilter) ([]model.StoredCmv, error)

	Migrate(ctx context.Context) error
	Close() error
}

// CmvFilter narrows ListCmv. Zero fields are ignored.
type CmvFilter struct {
	UpdatedBefore time.Time
	Limit         int
	Offset        int
}

// Config selects a backend.
type Config struct {
	Driver string        `yaml:"driver" mapstructure:"driver"`
	DSN    string        `yaml:"dsn" mapstructure:"dsn"`
	Pool   db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Open connects to the configured backend and runs migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		st, err = NewSQLite(cfg.DSN)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DSN, cfg.Pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// updatedAt is the valuation time, falling back to now for results without one.
func updatedAt(result model.CmvResult) time.Time {
	if result.CmvLastUpdated != nil && !result.CmvLastUpdated.IsZero() {
		return result.CmvLastUpdated.UTC()
	}
	return time.Now().UTC()
}

func encode(card model.CardRef, result model.CmvResult) (cardJSON, resultJSON []byte, err error) {
	cardJSON, err = json.Marshal(card)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal card")
	}
	resultJSON, err = json.Marshal(result)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal result")
	}
	return cardJSON, resultJSON, nil
}

func decode(id string, cardJSON, resultJSON []byte, at time.Time) (*model.StoredCmv, error) {
	out := &model.StoredCmv{ID: id, UpdatedAt: at.UTC()}
	if err := json.Unmarshal(cardJSON, &out.Card); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal card %s", id)
	}
	if err := json.Unmarshal(resultJSON, &out.Result); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal result %s", id)
	}
	return out, nil
}
