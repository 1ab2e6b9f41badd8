package service

import (
	"strings"

	"SJ_storefront_backend/internal/model"

	"github.com/shopspring/decimal"
)

// GSTRate is the fixed tax applied to every derived price.
var GSTRate = decimal.NewFromFloat(0.03)

type PriceInput struct {
	// NetWeight is nil for grouped/variable-count products; the metal
	// component degrades to zero until a unit weight is known.
	NetWeight     *decimal.Decimal
	StonePrice    decimal.Decimal
	MakingCharges decimal.Decimal
	// PricePerGram is zero when no matching metal rate exists.
	PricePerGram decimal.Decimal
}

type PriceBreakdown struct {
	MetalAmount decimal.Decimal
	Subtotal    decimal.Decimal
	GSTAmount   decimal.Decimal
	FinalPrice  decimal.Decimal
}

// ComputePrice derives the consumer price from a product's physical
// attributes and the applicable metal rate:
//
//	metal    = net_weight * price_per_gram
//	subtotal = metal + stone_price + making_charges
//	gst      = subtotal * 0.03
//	final    = subtotal + gst
//
// The function is pure; every endpoint that exposes a price goes through it.
func ComputePrice(in PriceInput) PriceBreakdown {
	metal := decimal.Zero
	if in.NetWeight != nil {
		metal = in.NetWeight.Mul(in.PricePerGram)
	}

	subtotal := metal.Add(in.StonePrice).Add(in.MakingCharges)
	gst := subtotal.Mul(GSTRate)

	return PriceBreakdown{
		MetalAmount: metal,
		Subtotal:    subtotal,
		GSTAmount:   gst,
		FinalPrice:  subtotal.Add(gst),
	}
}

// NormalizePurity folds case and strips the trailing unit marker so that
// "22K", "22k " and "22" all compare equal. Source data is not consistent
// in this respect.
func NormalizePurity(purity string) string {
	p := strings.ToUpper(strings.TrimSpace(purity))
	return strings.TrimSuffix(p, "K")
}

// MetalTypeForProduct maps a product-type name onto the metal the rate
// table is keyed by. Jewellery types that are gold-based (diamond-set,
// antique, imitation lines) price against the gold rate.
func MetalTypeForProduct(typeName string) string {
	t := strings.ToLower(typeName)
	switch {
	case strings.Contains(t, "platinum"):
		return "platinum"
	case strings.Contains(t, "silver"):
		return "silver"
	case strings.Contains(t, "gem"):
		return "gem"
	default:
		return "gold"
	}
}

// RateTable is one latest-rates snapshot, keyed by metal type and
// normalized purity. Lookups that miss report a zero rate.
type RateTable struct {
	rates map[string]decimal.Decimal
}

func NewRateTable(rates []*model.MetalRate) RateTable {
	t := RateTable{rates: make(map[string]decimal.Decimal, len(rates))}
	for _, rate := range rates {
		key := rateKey(rate.MetalType, rate.Purity)
		// GetLatestMetalRates returns one row per raw (metal, purity) pair;
		// after normalization two purities can collide, first one wins.
		if _, ok := t.rates[key]; !ok {
			t.rates[key] = rate.PriceINR
		}
	}
	return t
}

func (t RateTable) Lookup(metalType, purity string) (decimal.Decimal, bool) {
	rate, ok := t.rates[rateKey(metalType, purity)]
	if !ok {
		return decimal.Zero, false
	}
	return rate, true
}

func rateKey(metalType, purity string) string {
	return strings.ToLower(strings.TrimSpace(metalType)) + "|" + NormalizePurity(purity)
}
