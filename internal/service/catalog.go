package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const taxonomyTTL = 5 * time.Minute

type CatalogService struct {
	repo    CatalogRepository
	favRepo FavoritesRepository

	mu         sync.Mutex
	taxonomy   *model.Taxonomy
	taxonomyAt time.Time
}

func NewCatalogService(repo CatalogRepository, favRepo FavoritesRepository) *CatalogService {
	return &CatalogService{
		repo:    repo,
		favRepo: favRepo,
	}
}

func (s *CatalogService) GetProducts(ctx context.Context) ([]*model.PricedProduct, error) {
	products, err := s.repo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	table, err := s.rateTable(ctx)
	if err != nil {
		return nil, err
	}

	priced := make([]*model.PricedProduct, len(products))
	for i, p := range products {
		priced[i] = priceProduct(p, table)
	}

	return priced, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.PricedProduct, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	table, err := s.rateTable(ctx)
	if err != nil {
		return nil, err
	}

	return priceProduct(product, table), nil
}

// rateTable loads one latest-rates snapshot. A failed load degrades to an
// empty table: listings render with zero metal components rather than
// failing outright.
func (s *CatalogService) rateTable(ctx context.Context) (RateTable, error) {
	rates, err := s.repo.GetLatestMetalRates(ctx)
	if err != nil {
		logger.Logger().Warn("metal rate lookup failed, pricing without rates", zap.Error(err))
		return NewRateTable(nil), nil
	}
	return NewRateTable(rates), nil
}

func priceProduct(p *model.Product, table RateTable) *model.PricedProduct {
	rate, _ := table.Lookup(MetalTypeForProduct(p.TypeName), p.Purity)

	breakdown := ComputePrice(PriceInput{
		NetWeight:     p.NetWeight,
		StonePrice:    p.StonePrice,
		MakingCharges: p.MakingCharges,
		PricePerGram:  rate,
	})

	return &model.PricedProduct{
		Product:    *p,
		MetalRate:  rate,
		NetPrice:   breakdown.Subtotal,
		GSTAmount:  breakdown.GSTAmount,
		FinalPrice: breakdown.FinalPrice,
	}
}

// GetTaxonomy serves the filter payload from a single cached copy with a
// fixed TTL. There is no per-key invalidation, just a timestamp check.
func (s *CatalogService) GetTaxonomy(ctx context.Context) (*model.Taxonomy, error) {
	s.mu.Lock()
	if s.taxonomy != nil && time.Since(s.taxonomyAt) < taxonomyTTL {
		cached := s.taxonomy
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	taxonomy, err := s.repo.GetTaxonomy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	s.mu.Lock()
	s.taxonomy = taxonomy
	s.taxonomyAt = time.Now()
	s.mu.Unlock()

	return taxonomy, nil
}

func (s *CatalogService) RecordMetalRate(ctx context.Context, metalType, purity string, priceINR decimal.Decimal) (*model.MetalRate, error) {
	if metalType == "" || purity == "" || !priceINR.IsPositive() {
		return nil, fmt.Errorf("metal type, purity and a positive price are required")
	}

	rate := &model.MetalRate{
		MetalType: metalType,
		Purity:    purity,
		PriceINR:  priceINR,
		FetchedAt: time.Now().UTC(),
	}

	if err := s.repo.InsertMetalRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to record metal rate: %w", err)
	}

	return rate, nil
}

func (s *CatalogService) GetFavorites(ctx context.Context, userID int64) ([]int64, error) {
	favorites, err := s.favRepo.GetFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}

	ids := make([]int64, len(favorites))
	for i, f := range favorites {
		ids[i] = f.ProductID
	}

	return ids, nil
}

func (s *CatalogService) AddFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	if _, err := s.favRepo.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("failed to check product: %w", err)
	}

	added, err := s.favRepo.AddFavorite(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	return added, nil
}

func (s *CatalogService) RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	removed, err := s.favRepo.RemoveFavorite(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}

	return removed, nil
}

func (s *CatalogService) GetFavoriteProducts(ctx context.Context, userID int64) ([]*model.PricedProduct, error) {
	products, err := s.favRepo.GetFavoriteProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite products: %w", err)
	}

	table, err := s.rateTable(ctx)
	if err != nil {
		return nil, err
	}

	priced := make([]*model.PricedProduct, len(products))
	for i, p := range products {
		priced[i] = priceProduct(p, table)
	}

	return priced, nil
}
