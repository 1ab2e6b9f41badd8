package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	MobileNumber string
	PasswordHash string
	ReferralCode string
	ReferrerID   *int64
	Wallet       decimal.Decimal
	IsAdmin      bool
	CreatedAt    time.Time
}

// Registration carries the raw signup payload before hashing and
// referral-code resolution.
type Registration struct {
	Username     string
	Email        string
	MobileNumber string
	Password     string
	ReferralCode *string
}

type ProfileUpdate struct {
	Username     string
	Email        string
	MobileNumber string
}
