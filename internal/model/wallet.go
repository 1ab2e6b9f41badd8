package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxTypeCredit = "credit"
	TxTypeDebit  = "debit"
)

// WalletTransaction is an append-only ledger entry. Entries are never
// updated or deleted; the denormalized users.wallet balance is maintained
// by the posting side, not reconciled here.
type WalletTransaction struct {
	ID            int64
	UserID        int64
	Coins         decimal.Decimal
	Type          string
	Source        string
	InvoiceNumber *string
	ChildID       *int64
	Meta          []byte
	Description   *string
	CreatedAt     time.Time
}

// WalletHistoryEntry is a ledger row enriched with whatever the invoice
// and child-user joins could resolve.
type WalletHistoryEntry struct {
	WalletTransaction
	InvoiceTotal  *decimal.Decimal
	InvoiceStatus *string
	ChildUsername *string
}

type ChildCommission struct {
	ChildID int64           `json:"child_id"`
	Coins   decimal.Decimal `json:"coins"`
}

// CommissionReport aggregates referral-sourced credits for a focus user.
// With an attribution shape configured, TotalFromChildren equals the sum
// of PerChild coins; with no shape it is the grand total of allow-listed
// credits and PerChild is empty.
type CommissionReport struct {
	TotalFromChildren decimal.Decimal
	PerChild          []ChildCommission
}
