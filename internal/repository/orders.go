package repository

import (
	"context"
	"fmt"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	GST       decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// CreateOrder inserts an invoice header and its items in one transaction.
// Duplicate invoice numbers are skipped silently so the seeder can rerun.
func (r *Repository) CreateOrder(ctx context.Context, order *model.Order, items []OrderItem) (created bool, err error) {
	err = r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("order_history").
			SetMap(map[string]interface{}{
				"invoice_number": order.InvoiceNumber,
				"user_id":        order.UserID,
				"subtotal":       order.Subtotal,
				"gst":            order.GST,
				"discount":       order.Discount,
				"grand_total":    order.GrandTotal,
				"status":         order.Status,
				"payment_mode":   order.PaymentMode,
				"created_at":     order.CreatedAt,
			}).
			Suffix("ON CONFLICT (invoice_number) DO NOTHING RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build order insert query: %w", err)
		}

		rows, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		defer rows.Close()

		if !rows.Next() {
			return nil // invoice number already present
		}
		if err := rows.Scan(&order.ID); err != nil {
			return err
		}
		rows.Close()
		created = true

		if len(items) == 0 {
			return nil
		}

		builder := squirrel.
			Insert("order_items").
			Columns("order_id", "product_id", "quantity", "unit_price", "gst", "discount", "line_total")
		for _, item := range items {
			builder = builder.Values(order.ID, item.ProductID, item.Quantity,
				item.UnitPrice, item.GST, item.Discount, item.LineTotal)
		}

		itemsQuery, itemsArgs, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build order items insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, itemsQuery, itemsArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}

		return nil
	})
	return created, err
}

func (r *Repository) GetUserIDs(ctx context.Context, limit int) ([]int64, error) {
	query, args, err := squirrel.
		Select("id").
		From("users").
		OrderBy("id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []int64
	err = r.db.SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user ids: %w", err)
	}

	return ids, nil
}
