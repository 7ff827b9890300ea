package service

import (
	"context"
	"time"

	"github.com/huyndao/robux-exchange/internal/domain"
	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
)

// ComplaintService manages the complaint queue. Complaints never touch
// balances; resolution simply deletes the ticket.
type ComplaintService struct {
	store *ledger.Store
	now   func() time.Time
}

func NewComplaintService(store *ledger.Store) *ComplaintService {
	return &ComplaintService{store: store, now: time.Now}
}

func (s *ComplaintService) Submit(ctx context.Context, username, text string) (*models.Complaint, error) {
	var created models.Complaint
	err := s.store.Update(ctx, func(doc *models.Ledger) error {
		if _, ok := doc.Users[username]; !ok {
			return models.ErrUserNotFound
		}
		complaint := &models.Complaint{
			ID:     doc.NextID(),
			User:   username,
			Text:   text,
			Status: domain.StatusPending,
			Time:   s.now().UTC(),
		}
		doc.Complaints = append(doc.Complaints, complaint)
		created = *complaint
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ComplaintService) List(ctx context.Context) []models.Complaint {
	var complaints []models.Complaint
	s.store.View(func(doc *models.Ledger) {
		for _, c := range doc.Complaints {
			complaints = append(complaints, *c)
		}
	})
	return complaints
}

// Resolve deletes the complaint, which is how the shop marks it handled.
func (s *ComplaintService) Resolve(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(doc *models.Ledger) error {
		for i, c := range doc.Complaints {
			if c.ID == id {
				doc.Complaints = append(doc.Complaints[:i], doc.Complaints[i+1:]...)
				return nil
			}
		}
		return models.ErrComplaintNotFound
	})
}
