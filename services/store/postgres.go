package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	apperr "moneyhunter/dealworker/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS deals (
	id         BIGSERIAL PRIMARY KEY,
	source_id  VARCHAR(50)   NOT NULL,
	title      VARCHAR(500)  NOT NULL,
	url        VARCHAR(1000) NOT NULL UNIQUE,
	price      VARCHAR(100),
	notified   BOOLEAN       NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ   NOT NULL DEFAULT now()
)`

const insertDeal = `
	INSERT INTO deals (source_id, title, url, price, notified)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (url) DO NOTHING
	RETURNING id, created_at`

// PostgresStore implements DealStore on Postgres via sqlx
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new Postgres-backed deal store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the deals table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperr.NewStore("", "failed to create deals table", err)
	}
	return nil
}

// ExistsByURL reports whether a deal with the given url is already stored
func (s *PostgresStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM deals WHERE url = $1)", url)
	if err != nil {
		return false, apperr.NewStore("", "existence check failed", err)
	}
	return exists, nil
}

// InsertBatch commits the staged deals in one transaction. A url conflict
// (concurrent run or a race with the existence check) skips that record;
// any other error discards the whole batch.
func (s *PostgresStore) InsertBatch(ctx context.Context, deals []Deal) ([]Deal, error) {
	if len(deals) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.NewStore("", "failed to begin transaction", err)
	}

	var inserted []Deal
	for _, deal := range deals {
		row := tx.QueryRowContext(ctx, insertDeal,
			deal.SourceID,
			deal.Title,
			deal.URL,
			nullIfEmpty(deal.Price),
			deal.Notified,
		)

		err := row.Scan(&deal.ID, &deal.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			// Duplicate url; the constraint won the race
			continue
		}
		if err != nil {
			_ = tx.Rollback()
			return nil, apperr.NewStore(deal.SourceID, "batch insert failed", err)
		}

		inserted = append(inserted, deal)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.NewStore("", "batch commit failed", err)
	}

	return inserted, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
