package models

import (
	"time"
)

// User is a shop account. Balance is only ever mutated by the order
// lifecycle engine (approvals, referral bonuses, manual admin bonuses).
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Balance      int64     `json:"balance"`
	ReferredBy   string    `json:"referred_by,omitempty"`
	RefCode      string    `json:"ref_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// DepositOrder is a request to convert real money into robux balance.
// Robux holds a quote at creation time and is overwritten with the
// recomputed amount when the order is approved.
type DepositOrder struct {
	ID       int64     `json:"id"`
	User     string    `json:"user"`
	Amount   int64     `json:"amount"`
	Robux    int64     `json:"robux"`
	Type     string    `json:"type"`   // "qr" or "card"
	Seri     string    `json:"seri,omitempty"`
	Code     string    `json:"code,omitempty"`
	CardType string    `json:"card_type,omitempty"`
	Status   string    `json:"status"` // "pending", "success", "failed"
	Time     time.Time `json:"time"`
}

// WithdrawOrder is a request to pay out robux balance to an external
// destination. The balance is debited only on admin approval.
type WithdrawOrder struct {
	ID     int64     `json:"id"`
	User   string    `json:"user"`
	Robux  int64     `json:"robux"`
	To     string    `json:"to"`
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Complaint is a user-submitted ticket. Resolution deletes it; there is
// no balance interaction.
type Complaint struct {
	ID     int64     `json:"id"`
	User   string    `json:"user"`
	Text   string    `json:"text"`
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// BonusGrant records every credit that did not come from an order, so a
// user's balance stays derivable from the document alone. Source is
// "referral" or "admin"; Ref names the referred user or the admin note.
type BonusGrant struct {
	ID     int64     `json:"id"`
	User   string    `json:"user"`
	Amount int64     `json:"amount"`
	Source string    `json:"source"`
	Ref    string    `json:"ref,omitempty"`
	Time   time.Time `json:"time"`
}

// Ledger is the whole-shop document: every aggregate the service owns.
// It is only ever mutated through ledger.Store.Update.
type Ledger struct {
	Users      map[string]*User `json:"users"`
	Deposits   []*DepositOrder  `json:"deposits"`
	Withdraws  []*WithdrawOrder `json:"withdraws"`
	Complaints []*Complaint     `json:"complaints"`
	Bonuses    []*BonusGrant    `json:"bonuses"`
	Rate       int64            `json:"rate"`
	Seq        int64            `json:"seq"`
}

// NewLedger returns an empty document. Rate 0 means "unset": readers fall
// back to the default exchange rate.
func NewLedger() *Ledger {
	return &Ledger{Users: make(map[string]*User)}
}

// NextID returns a fresh order/complaint id. Callers must hold the
// store's write lock (i.e. run inside Update).
func (l *Ledger) NextID() int64 {
	l.Seq++
	return l.Seq
}

// Clone deep-copies the document so an update can mutate a working copy
// without the committed snapshot ever observing a partial change.
func (l *Ledger) Clone() *Ledger {
	next := &Ledger{
		Users:      make(map[string]*User, len(l.Users)),
		Deposits:   make([]*DepositOrder, len(l.Deposits)),
		Withdraws:  make([]*WithdrawOrder, len(l.Withdraws)),
		Complaints: make([]*Complaint, len(l.Complaints)),
		Bonuses:    make([]*BonusGrant, len(l.Bonuses)),
		Rate:       l.Rate,
		Seq:        l.Seq,
	}
	for name, u := range l.Users {
		cp := *u
		next.Users[name] = &cp
	}
	for i, d := range l.Deposits {
		cp := *d
		next.Deposits[i] = &cp
	}
	for i, w := range l.Withdraws {
		cp := *w
		next.Withdraws[i] = &cp
	}
	for i, c := range l.Complaints {
		cp := *c
		next.Complaints[i] = &cp
	}
	for i, b := range l.Bonuses {
		cp := *b
		next.Bonuses[i] = &cp
	}
	return next
}

// FindDeposit returns the deposit with the given id, or nil.
func (l *Ledger) FindDeposit(id int64) *DepositOrder {
	for _, d := range l.Deposits {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// FindWithdraw returns the withdraw with the given id, or nil.
func (l *Ledger) FindWithdraw(id int64) *WithdrawOrder {
	for _, w := range l.Withdraws {
		if w.ID == id {
			return w
		}
	}
	return nil
}
