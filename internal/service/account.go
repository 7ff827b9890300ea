package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/huyndao/robux-exchange/internal/ledger"
	"github.com/huyndao/robux-exchange/internal/models"
)

// AccountService handles registration and login. Passwords are stored as
// bcrypt hashes only.
type AccountService struct {
	store *ledger.Store
	now   func() time.Time
}

func NewAccountService(store *ledger.Store) *AccountService {
	return &AccountService{store: store, now: time.Now}
}

// Register creates an account with a fresh referral code. A non-empty
// refCode that matches an existing user's code links the new account to
// that referrer; an unknown code is silently ignored.
func (s *AccountService) Register(ctx context.Context, username, password, refCode string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var created models.User
	err = s.store.Update(ctx, func(doc *models.Ledger) error {
		if _, ok := doc.Users[username]; ok {
			return models.ErrUsernameTaken
		}

		referredBy := ""
		if code := strings.TrimSpace(refCode); code != "" {
			for _, u := range doc.Users {
				if u.RefCode == code {
					referredBy = u.Username
					break
				}
			}
		}

		user := &models.User{
			Username:     username,
			PasswordHash: string(hash),
			ReferredBy:   referredBy,
			RefCode:      newRefCode(),
			CreatedAt:    s.now().UTC(),
		}
		doc.Users[username] = user
		created = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Login verifies the credentials and returns the account. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	var (
		user  models.User
		found bool
	)
	s.store.View(func(doc *models.Ledger) {
		if u, ok := doc.Users[username]; ok {
			user = *u
			found = true
		}
	})
	if !found {
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}

// Get returns the account without a credential check, for display use.
func (s *AccountService) Get(ctx context.Context, username string) (*models.User, error) {
	var (
		user  models.User
		found bool
	)
	s.store.View(func(doc *models.Ledger) {
		if u, ok := doc.Users[username]; ok {
			user = *u
			found = true
		}
	})
	if !found {
		return nil, models.ErrUserNotFound
	}
	return &user, nil
}

func newRefCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
