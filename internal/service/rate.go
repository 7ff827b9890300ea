package service

import (
	"context"
	"fmt"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
)

// RateService exposes the single global exchange rate.
type RateService struct {
	store *ledger.Store
}

func NewRateService(store *ledger.Store) *RateService {
	return &RateService{store: store}
}

// Rate returns the effective exchange rate, falling back to the default
// while the admin has not set one.
func (s *RateService) Rate(ctx context.Context) int64 {
	var rate int64
	s.store.View(func(doc *models.Ledger) {
		rate = doc.Rate
	})
	return domain.EffectiveRate(rate)
}

// SetRate stores a new exchange rate. Only future approvals are
// affected; already-approved orders keep their credited amounts.
func (s *RateService) SetRate(ctx context.Context, rate int64) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", rate)
	}
	return s.store.Update(ctx, func(doc *models.Ledger) error {
		doc.Rate = rate
		return nil
	})
}
