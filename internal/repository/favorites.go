package repository

import (
	"context"
	"fmt"
	"time"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type favoriteRow struct {
	ProductID int64     `db:"product_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Repository) GetFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	query, args, err := squirrel.
		Select("product_id", "created_at").
		From("favorites").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*favoriteRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	favorites := make([]*model.Favorite, len(rows))
	for i, row := range rows {
		favorites[i] = &model.Favorite{ProductID: row.ProductID, CreatedAt: row.CreatedAt}
	}

	return favorites, nil
}

// AddFavorite is idempotent: re-favoriting reports added=false without error.
func (r *Repository) AddFavorite(ctx context.Context, userID, productID int64) (added bool, err error) {
	query, args, err := squirrel.
		Insert("favorites").
		Columns("user_id", "product_id").
		Values(userID, productID).
		Suffix("ON CONFLICT (user_id, product_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID, productID int64) (removed bool, err error) {
	query, args, err := squirrel.
		Delete("favorites").
		Where(squirrel.And{
			squirrel.Eq{"user_id": userID},
			squirrel.Eq{"product_id": productID},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *Repository) GetFavoriteProducts(ctx context.Context, userID int64) ([]*model.Product, error) {
	query, args, err := productSelect().
		Join("favorites f ON f.product_id = p.id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("f.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*productRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite products: %w", err)
	}

	products := make([]*model.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toModel()
	}

	return products, nil
}
