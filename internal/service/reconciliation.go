package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
	"github.com/huyndao/robux-exchange/internal/observability"
)

// ReconciliationService verifies the core ledger invariant: every user's
// balance equals the sum of their successful deposit credits, minus
// successful withdraw debits, plus bonus grants. Drift means a balance
// was mutated outside the lifecycle engine.
type ReconciliationService struct {
	store *ledger.Store
}

func NewReconciliationService(store *ledger.Store) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Drift describes one user whose stored balance diverged from the
// derived total.
type Drift struct {
	User     string
	Stored   int64
	Expected int64
}

// Run recomputes derived balances against the committed snapshot and
// reports any drift. It never mutates the ledger.
func (s *ReconciliationService) Run(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	s.store.View(func(doc *models.Ledger) {
		expected := make(map[string]int64, len(doc.Users))
		for _, d := range doc.Deposits {
			if d.Status == domain.StatusSuccess {
				expected[d.User] += d.Robux
			}
		}
		for _, w := range doc.Withdraws {
			if w.Status == domain.StatusSuccess {
				expected[w.User] -= w.Robux
			}
		}
		for _, b := range doc.Bonuses {
			expected[b.User] += b.Amount
		}
		for name, user := range doc.Users {
			if user.Balance != expected[name] {
				drifts = append(drifts, Drift{
					User:     name,
					Stored:   user.Balance,
					Expected: expected[name],
				})
			}
		}
	})

	if len(drifts) == 0 {
		zap.L().Info("ledger balanced")
		return nil, nil
	}

	for _, d := range drifts {
		observability.IncrementLedgerDrift()
		zap.L().Error("CRITICAL: ledger drift detected",
			zap.String("user", d.User),
			zap.Int64("stored", d.Stored),
			zap.Int64("expected", d.Expected),
		)
	}
	return drifts, nil
}
