package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"SJ_storefront_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type productRow struct {
	ID            int64            `db:"id"`
	Name          string           `db:"name"`
	Description   string           `db:"description"`
	SKU           string           `db:"sku"`
	TypeID        int64            `db:"type_id"`
	TypeName      string           `db:"type_name"`
	CategoryID    *int64           `db:"category_id"`
	SubCategoryID *int64           `db:"sub_category_id"`
	Purity        string           `db:"purity"`
	StoneType     *string          `db:"stone_type"`
	HSNCode       string           `db:"hsn_code"`
	NetWeight     *decimal.Decimal `db:"net_weight"`
	StonePrice    decimal.Decimal  `db:"stone_price"`
	MakingCharges decimal.Decimal  `db:"making_charges"`
	ImageURLs     pq.StringArray   `db:"image_urls"`
	CreatedAt     time.Time        `db:"created_at"`
}

func (p *productRow) toModel() *model.Product {
	return &model.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		TypeID:        p.TypeID,
		TypeName:      p.TypeName,
		CategoryID:    p.CategoryID,
		SubCategoryID: p.SubCategoryID,
		Purity:        p.Purity,
		StoneType:     p.StoneType,
		HSNCode:       p.HSNCode,
		NetWeight:     p.NetWeight,
		StonePrice:    p.StonePrice,
		MakingCharges: p.MakingCharges,
		ImageURLs:     p.ImageURLs,
		CreatedAt:     p.CreatedAt,
	}
}

func productSelect() squirrel.SelectBuilder {
	return squirrel.
		Select(
			"p.id",
			"p.name",
			"p.description",
			"p.sku",
			"p.type_id",
			"pt.name AS type_name",
			"p.category_id",
			"p.sub_category_id",
			"p.purity",
			"p.stone_type",
			"p.hsn_code",
			"p.net_weight",
			"p.stone_price",
			"p.making_charges",
			"p.image_urls",
			"p.created_at",
		).
		From("products p").
		Join("product_types pt ON pt.id = p.type_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *Repository) GetProducts(ctx context.Context) ([]*model.Product, error) {
	query, args, err := productSelect().OrderBy("p.name").ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*productRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := make([]*model.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toModel()
	}

	return products, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	query, args, err := productSelect().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var row productRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *model.Product) error {
	query, args, err := squirrel.
		Insert("products").
		SetMap(map[string]interface{}{
			"name":            p.Name,
			"description":     p.Description,
			"sku":             p.SKU,
			"type_id":         p.TypeID,
			"category_id":     p.CategoryID,
			"sub_category_id": p.SubCategoryID,
			"purity":          p.Purity,
			"stone_type":      p.StoneType,
			"hsn_code":        p.HSNCode,
			"net_weight":      p.NetWeight,
			"stone_price":     p.StonePrice,
			"making_charges":  p.MakingCharges,
			"image_urls":      pq.StringArray(p.ImageURLs),
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build product insert query: %w", err)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// EnsureProductType inserts a product type if missing and returns its id.
func (r *Repository) EnsureProductType(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO product_types (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure product type: %w", err)
	}
	return id, nil
}

func (r *Repository) EnsureCategory(ctx context.Context, typeID int64, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO product_categories (type_id, name) VALUES ($1, $2)
		 ON CONFLICT (type_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, typeID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure category: %w", err)
	}
	return id, nil
}

func (r *Repository) EnsureSubCategory(ctx context.Context, categoryID int64, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO sub_product_categories (category_id, name) VALUES ($1, $2)
		 ON CONFLICT (category_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, categoryID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure sub category: %w", err)
	}
	return id, nil
}

type metalRateRow struct {
	ID        int64           `db:"id"`
	MetalType string          `db:"metal_type"`
	Purity    string          `db:"purity"`
	PriceINR  decimal.Decimal `db:"price_inr"`
	FetchedAt time.Time       `db:"fetched_at"`
}

// GetLatestMetalRates returns one row per (metal_type, purity) pair: the
// most recently fetched. Purity normalization happens in the service layer.
func (r *Repository) GetLatestMetalRates(ctx context.Context) ([]*model.MetalRate, error) {
	query, args, err := squirrel.
		Select("DISTINCT ON (metal_type, purity) id", "metal_type", "purity", "price_inr", "fetched_at").
		From("metal_prices").
		OrderBy("metal_type", "purity", "fetched_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*metalRateRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get metal rates: %w", err)
	}

	rates := make([]*model.MetalRate, len(rows))
	for i, row := range rows {
		rates[i] = &model.MetalRate{
			ID:        row.ID,
			MetalType: row.MetalType,
			Purity:    row.Purity,
			PriceINR:  row.PriceINR,
			FetchedAt: row.FetchedAt,
		}
	}

	return rates, nil
}

func (r *Repository) InsertMetalRate(ctx context.Context, rate *model.MetalRate) error {
	query, args, err := squirrel.
		Insert("metal_prices").
		SetMap(map[string]interface{}{
			"metal_type": rate.MetalType,
			"purity":     rate.Purity,
			"price_inr":  rate.PriceINR,
			"fetched_at": rate.FetchedAt,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metal rate insert query: %w", err)
	}

	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&rate.ID); err != nil {
		return fmt.Errorf("failed to insert metal rate: %w", err)
	}

	return nil
}

type taxonomyTypeRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type taxonomyCategoryRow struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	TypeID   int64  `db:"type_id"`
	TypeName string `db:"type_name"`
}

type taxonomySubCategoryRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	CategoryID int64  `db:"category_id"`
}

// GetTaxonomy assembles the storefront filter payload from the three
// taxonomy tables plus distinct purity/stone facets derived from products.
func (r *Repository) GetTaxonomy(ctx context.Context) (*model.Taxonomy, error) {
	var typeRows []*taxonomyTypeRow
	err := r.db.SelectContext(ctx, &typeRows,
		`SELECT id, name FROM product_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get product types: %w", err)
	}

	var catRows []*taxonomyCategoryRow
	err = r.db.SelectContext(ctx, &catRows,
		`SELECT pc.id, pc.name, pc.type_id, pt.name AS type_name
		 FROM product_categories pc
		 JOIN product_types pt ON pt.id = pc.type_id
		 ORDER BY pt.name, pc.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get product categories: %w", err)
	}

	var subRows []*taxonomySubCategoryRow
	err = r.db.SelectContext(ctx, &subRows,
		`SELECT spc.id, spc.name, spc.category_id
		 FROM sub_product_categories spc
		 ORDER BY spc.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sub categories: %w", err)
	}

	var purities []string
	err = r.db.SelectContext(ctx, &purities,
		`SELECT DISTINCT purity FROM products
		 WHERE purity IS NOT NULL AND TRIM(purity) <> ''
		 ORDER BY purity DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get purities: %w", err)
	}

	var stoneTypes []string
	err = r.db.SelectContext(ctx, &stoneTypes,
		`SELECT DISTINCT stone_type FROM products
		 WHERE stone_type IS NOT NULL AND TRIM(stone_type) <> ''
		 ORDER BY stone_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to get stone types: %w", err)
	}

	taxonomy := &model.Taxonomy{
		ProductTypes:            make([]model.TaxonomyEntry, len(typeRows)),
		CategoriesByType:        make(map[string][]model.TaxonomyEntry),
		SubCategoriesByCategory: make(map[string][]model.TaxonomyEntry),
		Purities:                make([]model.TaxonomyEntry, len(purities)),
		StoneTypes:              make([]model.TaxonomyEntry, len(stoneTypes)),
	}

	for i, row := range typeRows {
		taxonomy.ProductTypes[i] = model.TaxonomyEntry{ID: row.ID, Label: row.Name}
		taxonomy.CategoriesByType[row.Name] = []model.TaxonomyEntry{}
	}

	subsByCategoryID := make(map[int64][]model.TaxonomyEntry)
	for _, row := range subRows {
		subsByCategoryID[row.CategoryID] = append(subsByCategoryID[row.CategoryID],
			model.TaxonomyEntry{Label: row.Name})
	}

	// Category labels repeat across types; the filter payload only needs the
	// label->labels mapping, so duplicates merge on first occurrence.
	for _, row := range catRows {
		taxonomy.CategoriesByType[row.TypeName] = append(taxonomy.CategoriesByType[row.TypeName],
			model.TaxonomyEntry{ID: row.ID, Label: row.Name})
		if _, ok := taxonomy.SubCategoriesByCategory[row.Name]; !ok {
			subs := subsByCategoryID[row.ID]
			if subs == nil {
				subs = []model.TaxonomyEntry{}
			}
			taxonomy.SubCategoriesByCategory[row.Name] = subs
		}
	}

	for i, p := range purities {
		taxonomy.Purities[i] = model.TaxonomyEntry{Label: p}
	}
	for i, s := range stoneTypes {
		taxonomy.StoneTypes[i] = model.TaxonomyEntry{Label: s}
	}

	return taxonomy, nil
}
