package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

type treeRow struct {
	ID         int64           `db:"id"`
	Username   string          `db:"username"`
	ReferrerID *int64          `db:"referrer_id"`
	Wallet     decimal.Decimal `db:"wallet"`
}

func (t *treeRow) toNode() *model.TreeNode {
	return &model.TreeNode{
		ID:         t.ID,
		Username:   t.Username,
		ReferrerID: t.ReferrerID,
		Wallet:     t.Wallet,
		Children:   []*model.TreeNode{},
	}
}

const referralClosureQuery = `
WITH RECURSIVE referral_closure AS (
    SELECT id, username, referrer_id, wallet
    FROM users
    WHERE id = $1
  UNION ALL
    SELECT u.id, u.username, u.referrer_id, u.wallet
    FROM users u
    JOIN referral_closure rc ON u.referrer_id = rc.id
)
SELECT id, username, referrer_id, wallet FROM referral_closure`

// GetReferralClosure returns the root row plus every transitive descendant,
// in traversal order. An unknown root yields an empty slice.
func (r *Repository) GetReferralClosure(ctx context.Context, rootID int64) ([]*model.TreeNode, error) {
	var rows []*treeRow
	err := r.db.SelectContext(ctx, &rows, referralClosureQuery, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referral closure: %w", err)
	}

	nodes := make([]*model.TreeNode, len(rows))
	for i, row := range rows {
		nodes[i] = row.toNode()
	}

	return nodes, nil
}

// GetTreeNode fetches a single user projected to its tree-node fields.
func (r *Repository) GetTreeNode(ctx context.Context, id int64) (*model.TreeNode, error) {
	query, args, err := squirrel.
		Select("id", "username", "referrer_id", "wallet").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row treeRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toNode(), nil
}

// GetDirectChildren returns users directly referred by any of the given ids,
// grouped nowhere: callers regroup by ReferrerID.
func (r *Repository) GetDirectChildren(ctx context.Context, referrerIDs ...int64) ([]*model.TreeNode, error) {
	if len(referrerIDs) == 0 {
		return []*model.TreeNode{}, nil
	}

	query, args, err := squirrel.
		Select("id", "username", "referrer_id", "wallet").
		From("users").
		Where(squirrel.Eq{"referrer_id": referrerIDs}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*treeRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch direct children: %w", err)
	}

	nodes := make([]*model.TreeNode, len(rows))
	for i, row := range rows {
		nodes[i] = row.toNode()
	}

	return nodes, nil
}
