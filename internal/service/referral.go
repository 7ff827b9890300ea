package service

import (
	"context"
	"sort"
	"time"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
)

// applyReferralBonus credits the referrer when the just-approved deposit
// is the depositor's first successful one. It must run inside the same
// update as the approval, after the order was marked successful; the
// approved order itself is excluded from the "previous success" scan so
// it can never count as its own predecessor. A missing referrer account
// means no bonus and no error. Returns whether a bonus was granted.
func applyReferralBonus(doc *models.Ledger, approved *models.DepositOrder, now time.Time) bool {
	user := doc.Users[approved.User]
	if user == nil || user.ReferredBy == "" {
		return false
	}
	for _, d := range doc.Deposits {
		if d.ID != approved.ID && d.User == approved.User && d.Status == domain.StatusSuccess {
			return false
		}
	}
	referrer := doc.Users[user.ReferredBy]
	if referrer == nil {
		return false
	}

	referrer.Balance += domain.ReferralBonus
	doc.Bonuses = append(doc.Bonuses, &models.BonusGrant{
		ID:     doc.NextID(),
		User:   referrer.Username,
		Amount: domain.ReferralBonus,
		Source: "referral",
		Ref:    approved.User,
		Time:   now,
	})
	return true
}

// ReferralRecord is a derived view of one referral relationship.
type ReferralRecord struct {
	Referrer         string `json:"referrer"`
	Referred         string `json:"referred"`
	FirstDepositDone bool   `json:"first_deposit_done"`
	BonusPaid        bool   `json:"bonus_paid"`
}

// ReferralService answers admin queries about the referral program and
// applies manual bonus credits.
type ReferralService struct {
	store *ledger.Store
	now   func() time.Time
}

func NewReferralService(store *ledger.Store) *ReferralService {
	return &ReferralService{store: store, now: time.Now}
}

// ListReferrals derives the referral program state from the document:
// one record per referred user, ordered by referred username.
func (s *ReferralService) ListReferrals(ctx context.Context) []ReferralRecord {
	var records []ReferralRecord
	s.store.View(func(doc *models.Ledger) {
		for _, user := range doc.Users {
			if user.ReferredBy == "" {
				continue
			}
			rec := ReferralRecord{
				Referrer: user.ReferredBy,
				Referred: user.Username,
			}
			for _, d := range doc.Deposits {
				if d.User == user.Username && d.Status == domain.StatusSuccess {
					rec.FirstDepositDone = true
					break
				}
			}
			for _, b := range doc.Bonuses {
				if b.Source == "referral" && b.Ref == user.Username {
					rec.BonusPaid = true
					break
				}
			}
			records = append(records, rec)
		}
	})
	sort.Slice(records, func(i, j int) bool {
		return records[i].Referred < records[j].Referred
	})
	return records
}

// AddBonus credits a user by an admin-chosen amount, recorded as a bonus
// grant so the balance stays derivable from the document.
func (s *ReferralService) AddBonus(ctx context.Context, username string, amount int64) error {
	return s.store.Update(ctx, func(doc *models.Ledger) error {
		user, ok := doc.Users[username]
		if !ok {
			return models.ErrUserNotFound
		}
		user.Balance += amount
		doc.Bonuses = append(doc.Bonuses, &models.BonusGrant{
			ID:     doc.NextID(),
			User:   username,
			Amount: amount,
			Source: "admin",
			Time:   s.now().UTC(),
		})
		return nil
	})
}
