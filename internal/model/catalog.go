package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64
	Name          string
	Description   string
	SKU           string
	TypeID        int64
	TypeName      string
	CategoryID    *int64
	SubCategoryID *int64
	Purity        string
	StoneType     *string
	HSNCode       string
	// NetWeight is null for grouped/variable-count products; pricing
	// degrades to a zero metal component for those.
	NetWeight     *decimal.Decimal
	StonePrice    decimal.Decimal
	MakingCharges decimal.Decimal
	ImageURLs     []string
	CreatedAt     time.Time
}

// PricedProduct is a product joined with the latest applicable metal rate
// and the derived price breakdown.
type PricedProduct struct {
	Product
	MetalRate  decimal.Decimal
	NetPrice   decimal.Decimal
	GSTAmount  decimal.Decimal
	FinalPrice decimal.Decimal
}

// MetalRate is the most recently recorded price per gram for a
// (metal type, purity) pair.
type MetalRate struct {
	ID        int64
	MetalType string
	Purity    string
	PriceINR  decimal.Decimal
	FetchedAt time.Time
}

type TaxonomyEntry struct {
	ID    int64  `json:"id,omitempty"`
	Label string `json:"label"`
}

type Taxonomy struct {
	ProductTypes            []TaxonomyEntry            `json:"productTypes"`
	CategoriesByType        map[string][]TaxonomyEntry `json:"categoriesByType"`
	SubCategoriesByCategory map[string][]TaxonomyEntry `json:"subCategoriesByCategory"`
	Purities                []TaxonomyEntry            `json:"purities"`
	StoneTypes              []TaxonomyEntry            `json:"stoneTypes"`
}

type Favorite struct {
	ProductID int64
	CreatedAt time.Time
}

type Order struct {
	ID            int64
	InvoiceNumber string
	UserID        int64
	Subtotal      decimal.Decimal
	GST           decimal.Decimal
	Discount      decimal.Decimal
	GrandTotal    decimal.Decimal
	Status        string
	PaymentMode   string
	CreatedAt     time.Time
}
