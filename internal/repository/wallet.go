package repository

import (
	"context"
	"fmt"
	"time"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type walletTxRow struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	Coins         decimal.Decimal `db:"coins"`
	Type          string          `db:"type"`
	Source        string          `db:"source"`
	InvoiceNumber *string         `db:"invoice_number"`
	ChildID       *int64          `db:"child_id"`
	Meta          []byte          `db:"meta"`
	Description   *string         `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (w *walletTxRow) toModel() model.WalletTransaction {
	return model.WalletTransaction{
		ID:            w.ID,
		UserID:        w.UserID,
		Coins:         w.Coins,
		Type:          w.Type,
		Source:        w.Source,
		InvoiceNumber: w.InvoiceNumber,
		ChildID:       w.ChildID,
		Meta:          w.Meta,
		Description:   w.Description,
		CreatedAt:     w.CreatedAt,
	}
}

type walletHistoryRow struct {
	walletTxRow
	InvoiceTotal  *decimal.Decimal `db:"invoice_total"`
	InvoiceStatus *string          `db:"invoice_status"`
	ChildUsername *string          `db:"child_username"`
}

// AppendTransaction writes a ledger entry and moves the denormalized
// users.wallet balance in the same transaction. Entries are append-only;
// there is no update or delete path.
func (r *Repository) AppendTransaction(ctx context.Context, entry *model.WalletTransaction) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("wallet_transactions").
			SetMap(map[string]interface{}{
				"user_id":        entry.UserID,
				"coins":          entry.Coins,
				"type":           entry.Type,
				"source":         entry.Source,
				"invoice_number": entry.InvoiceNumber,
				"child_id":       entry.ChildID,
				"meta":           entry.Meta,
				"description":    entry.Description,
			}).
			Suffix("RETURNING id, created_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build wallet insert query: %w", err)
		}

		row := tx.QueryRowxContext(ctx, query, args...)
		if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert wallet transaction: %w", err)
		}

		delta := entry.Coins
		if entry.Type == model.TxTypeDebit {
			delta = delta.Neg()
		}

		updateQuery, updateArgs, err := squirrel.
			Update("users").
			Set("wallet", squirrel.Expr("wallet + ?", delta)).
			Where(squirrel.Eq{"id": entry.UserID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build wallet balance update: %w", err)
		}

		res, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// GetWalletHistory returns the newest ledger entries for a user, enriched
// with the originating invoice and child user when resolvable.
func (r *Repository) GetWalletHistory(ctx context.Context, userID int64, limit int) ([]*model.WalletHistoryEntry, error) {
	query, args, err := squirrel.
		Select(
			"wt.id",
			"wt.user_id",
			"wt.coins",
			"wt.type",
			"wt.source",
			"wt.invoice_number",
			"wt.child_id",
			"wt.meta",
			"wt.description",
			"wt.created_at",
			"oh.grand_total AS invoice_total",
			"oh.status AS invoice_status",
			"cu.username AS child_username",
		).
		From("wallet_transactions wt").
		LeftJoin("order_history oh ON oh.invoice_number = wt.invoice_number").
		LeftJoin("users cu ON cu.id = wt.child_id").
		Where(squirrel.Eq{"wt.user_id": userID}).
		OrderBy("wt.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet history query: %w", err)
	}

	var rows []*walletHistoryRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet history: %w", err)
	}

	entries := make([]*model.WalletHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.WalletHistoryEntry{
			WalletTransaction: row.toModel(),
			InvoiceTotal:      row.InvoiceTotal,
			InvoiceStatus:     row.InvoiceStatus,
			ChildUsername:     row.ChildUsername,
		}
	}

	return entries, nil
}

// GetReferralCredits returns every credit entry whose source is in the
// allow-list, oldest first. Attribution happens in the service layer.
func (r *Repository) GetReferralCredits(ctx context.Context, userID int64, sources []string) ([]*model.WalletTransaction, error) {
	query, args, err := squirrel.
		Select("*").
		From("wallet_transactions").
		Where(squirrel.And{
			squirrel.Eq{"user_id": userID},
			squirrel.Eq{"type": model.TxTypeCredit},
			squirrel.Eq{"source": sources},
		}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build referral credits query: %w", err)
	}

	var rows []*walletTxRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral credits: %w", err)
	}

	txs := make([]*model.WalletTransaction, len(rows))
	for i, row := range rows {
		tx := row.toModel()
		txs[i] = &tx
	}

	return txs, nil
}
