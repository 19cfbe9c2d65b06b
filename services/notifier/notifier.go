package notifier

import (
	"context"

	"moneyhunter/dealworker/services/store"
)

// Notifier delivers an alert for a newly accepted deal. Delivery is
// attempted exactly once, at insert time, and never retried later.
type Notifier interface {
	// Notify formats and sends the alert. The returned bool reports whether
	// the delivery call acknowledged success; failures are swallowed so a
	// bad delivery never aborts the enclosing run.
	Notify(ctx context.Context, deal store.Deal, label string, tags []string) bool

	// Enabled reports whether delivery credentials are configured
	Enabled() bool
}

// Disabled is the Notifier used when no credentials are configured.
// Persistence continues; notified stays false.
type Disabled struct{}

func (Disabled) Notify(context.Context, store.Deal, string, []string) bool { return false }

func (Disabled) Enabled() bool { return false }
