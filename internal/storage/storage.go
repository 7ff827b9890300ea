// Package storage provides durable snapshot persistence for the ledger
// document: a JSON file for single-node deployments and a Postgres JSONB
// row for anything that needs a real database underneath.
package storage

import (
	"context"

	"github.com/huyndao/robux-exchange/internal/models"
)

// Persister stores and retrieves whole-document ledger snapshots. Save is
// called inside the store's write lock, so implementations never see
// concurrent calls.
type Persister interface {
	// Load returns the last saved snapshot, or (nil, nil) when nothing
	// has been saved yet.
	Load(ctx context.Context) (*models.Ledger, error)
	Save(ctx context.Context, ledger *models.Ledger) error
	Ping(ctx context.Context) error
	Close()
}
