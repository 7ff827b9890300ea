package domain

import "time"

const (
	OrderTypeQR   = "qr"
	OrderTypeCard = "card"

	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"

	QueueDeposits  = "deposits"
	QueueWithdraws = "withdraws"

	// DefaultRate is the fallback exchange rate (robux per RateUnit of
	// money) used while the admin has not set one.
	DefaultRate = 65

	// RateUnit is the money denomination the rate is quoted against.
	RateUnit = 10_000

	// ReferralBonus is credited to the referrer once, on the referred
	// user's first successful deposit.
	ReferralBonus = 50

	// PendingOrderTTL is how long an order may stay pending before the
	// expiry sweep fails it. Strictly-older-than semantics.
	PendingOrderTTL = 12 * time.Hour
)
