package model

import "github.com/shopspring/decimal"

// TreeNode is the in-memory referral tree node, rebuilt per request from
// flat user rows. Children keep the order of the underlying query result.
type TreeNode struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	ReferrerID *int64          `json:"referrer_id"`
	Wallet     decimal.Decimal `json:"wallet"`
	Children   []*TreeNode     `json:"children"`
}

// ReferralTree is the tree builder result: the traversal root plus the
// focus user the view was requested for.
type ReferralTree struct {
	Root        *TreeNode
	FocusUserID int64
}
