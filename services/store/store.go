package store

import (
	"context"
	"time"
)

// Deal is the canonical, deduplicated record of a listing. URL is the sole
// identity key; the store enforces its uniqueness.
type Deal struct {
	ID        int64     `db:"id" json:"id"`
	SourceID  string    `db:"source_id" json:"source_id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	Price     string    `db:"price" json:"price,omitempty"`
	Notified  bool      `db:"notified" json:"notified"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DealStore represents the keyed record store for deals
type DealStore interface {
	// EnsureSchema creates the deals table if it does not exist
	EnsureSchema(ctx context.Context) error

	// ExistsByURL reports whether a deal with the given url is already stored.
	// This is an optimization to avoid needless notification attempts; the
	// unique constraint remains the authoritative dedup guard.
	ExistsByURL(ctx context.Context, url string) (bool, error)

	// InsertBatch commits a run's staged deals in one transaction and returns
	// the records actually inserted. A url conflict skips that record as a
	// duplicate; any other failure rolls back the entire batch.
	InsertBatch(ctx context.Context, deals []Deal) ([]Deal, error)
}
