package sale

import (
	"context"
)

// RecentLimit is how many sales the back-office listing returns.
const RecentLimit = 100

// Ledger serves the back-office read and status operations. New sales are
// written by the order processor only.
type Ledger struct {
	repo Repository
}

// NewLedger creates a Ledger backed by repo.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Recent returns the latest sales, newest first.
func (l *Ledger) Recent(ctx context.Context) ([]Sale, error) {
	return l.repo.ListRecent(ctx, RecentLimit)
}

// Get returns a single sale.
func (l *Ledger) Get(ctx context.Context, id string) (*Sale, error) {
	return l.repo.GetByID(ctx, id)
}

// SetStatus changes the status of a sale. Stock is not touched: cancelling
// a sale does not restock its items.
func (l *Ledger) SetStatus(ctx context.Context, id, label string) (*Sale, error) {
	status, err := ParseStatus(label)
	if err != nil {
		return nil, err
	}
	if err := l.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return l.repo.GetByID(ctx, id)
}
