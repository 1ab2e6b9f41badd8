package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var (
	purities  = []string{"18K", "20K", "22K", "24K", "999"}
	hsnCodes  = []string{"71131120", "71131910", "71131920", "71131130", "71131190"}
	stonePool = []string{"Diamond", "Diamond", "Diamond", "Ruby", "Emerald", "Sapphire"}
	images    = []string{
		"/uploads/product-sample-1.jpg",
		"/uploads/product-sample-2.jpg",
		"/uploads/product-sample-3.jpg",
		"/uploads/product-sample-4.jpg",
		"/uploads/product-sample-5.jpg",
	}
	nameWords = []string{
		"Premium", "Classic", "Elegant", "Regal", "Heritage", "Temple",
		"Modern", "Aura", "Royal", "Nova", "Luxe", "Ornate", "Floral",
		"Charm", "Glow", "Shine",
	}
	statuses     = []string{"Pending", "Paid", "Cancelled", "Refunded", "Partially Paid"}
	paymentModes = []string{"Cash", "Card", "UPI", "Razorpay", "BankTransfer"}
)

// taxonomy fixture: type -> category -> subcategories
var taxonomyFixture = map[string]map[string][]string{
	"Gold": {
		"Chains":    {"Rope", "Box", "Curb"},
		"Rings":     {"Engagement", "Casual", "Cocktail"},
		"Necklaces": {"Choker", "Long Haram", "Temple"},
		"Bangles":   {"Daily Wear", "Bridal", "Kada"},
	},
	"Silver": {
		"Anklets":  {"Classic", "Beaded"},
		"Idols":    {"Lakshmi", "Ganesha"},
		"Utensils": {"Plates", "Glasses"},
	},
	"Platinum": {
		"Rings": {"Bands", "Solitaire"},
		"Chains": {"Box", "Wheat"},
	},
	"Diamond": {
		"Rings":    {"Solitaire", "Halo", "Cluster"},
		"Earrings": {"Studs", "Drops"},
		"Pendants": {"Solitaire", "Cluster"},
	},
	"Gemstone": {
		"Rings":    {"Ruby", "Emerald", "Sapphire"},
		"Pendants": {"Birthstone", "Navratna"},
	},
}

type seedConfig struct {
	Database repository.Config `yaml:"database"`
	LogLevel string            `yaml:"logLevel"`
}

func loadConfig() (*seedConfig, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.AddConfigPath("./")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg seedConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func main() {
	productCount := flag.Int("products", 600, "number of products to seed")
	orderCount := flag.Int("orders", 700, "number of invoices to seed")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	ctx := context.Background()

	subIDs, err := seedTaxonomy(ctx, repo)
	if err != nil {
		zapLogger.Fatal("Failed to seed taxonomy", zap.Error(err))
	}
	zapLogger.Info("Taxonomy ready")

	if err := seedProducts(ctx, repo, subIDs, *productCount); err != nil {
		zapLogger.Fatal("Failed to seed products", zap.Error(err))
	}
	zapLogger.Info("Products seeded", zap.Int("count", *productCount))

	created, err := seedOrders(ctx, repo, *orderCount)
	if err != nil {
		zapLogger.Fatal("Failed to seed orders", zap.Error(err))
	}
	zapLogger.Info("Orders seeded", zap.Int("created", created))
}

// productSlot is one (type, category, subcategory) leaf of the taxonomy,
// flattened so a seeded product can pick a consistent triple at random.
type productSlot struct {
	TypeID     int64
	TypeName   string
	CategoryID int64
	SubID      int64
}

func seedTaxonomy(ctx context.Context, repo *repository.Repository) ([]productSlot, error) {
	var slots []productSlot

	for typeName, categories := range taxonomyFixture {
		typeID, err := repo.EnsureProductType(ctx, typeName)
		if err != nil {
			return nil, err
		}

		for catName, subs := range categories {
			catID, err := repo.EnsureCategory(ctx, typeID, catName)
			if err != nil {
				return nil, err
			}

			for _, subName := range subs {
				subID, err := repo.EnsureSubCategory(ctx, catID, subName)
				if err != nil {
					return nil, err
				}
				slots = append(slots, productSlot{
					TypeID:     typeID,
					TypeName:   typeName,
					CategoryID: catID,
					SubID:      subID,
				})
			}
		}
	}

	return slots, nil
}

func seedProducts(ctx context.Context, repo *repository.Repository, slots []productSlot, count int) error {
	for i := 0; i < count; i++ {
		slot := slots[rand.Intn(len(slots))]

		isGroup := rand.Float64() < 0.10
		hasStones := rand.Float64() < 0.65

		var netWeight *decimal.Decimal
		if !isGroup {
			w := randomAmount(1.5, 180)
			netWeight = &w
		}

		makingCharges := decimal.Zero
		if rand.Float64() >= 0.10 {
			makingCharges = randomAmount(150, 45000)
		}

		var stoneType *string
		stonePrice := decimal.Zero
		if hasStones {
			s := stonePool[rand.Intn(len(stonePool))]
			stoneType = &s
			stonePrice = randomAmount(500, 15000)
		}

		sku := "SJ-" + strings.ToUpper(uuid.NewString()[:8])
		name := fmt.Sprintf("%s %s %s", slot.TypeName,
			nameWords[rand.Intn(len(nameWords))], nameWords[rand.Intn(len(nameWords))])

		catID := slot.CategoryID
		subID := slot.SubID
		p := &model.Product{
			Name:          name,
			Description:   "Crafted with precision for everyday elegance. Certified quality and hallmark purity.",
			SKU:           sku,
			TypeID:        slot.TypeID,
			CategoryID:    &catID,
			SubCategoryID: &subID,
			Purity:        purities[rand.Intn(len(purities))],
			StoneType:     stoneType,
			HSNCode:       hsnCodes[rand.Intn(len(hsnCodes))],
			NetWeight:     netWeight,
			StonePrice:    stonePrice,
			MakingCharges: makingCharges,
			ImageURLs:     pickImages(),
		}

		if err := repo.CreateProduct(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

func seedOrders(ctx context.Context, repo *repository.Repository, count int) (int, error) {
	products, err := repo.GetProducts(ctx)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, fmt.Errorf("no products to build orders from")
	}

	userIDs, err := repo.GetUserIDs(ctx, 10000)
	if err != nil || len(userIDs) == 0 {
		userIDs = []int64{1}
	}

	created := 0
	for i := 0; i < count; i++ {
		createdAt := randomPastTime(365)
		invoice := fmt.Sprintf("INV-%d-%02d-%06d", createdAt.Year(), createdAt.Month(), i+1)

		itemCount := 1 + rand.Intn(5)
		items := make([]repository.OrderItem, 0, itemCount)
		subtotal := decimal.Zero
		totalGST := decimal.Zero

		for j := 0; j < itemCount; j++ {
			p := products[rand.Intn(len(products))]
			qty := 1 + rand.Intn(3)

			breakdown := service.ComputePrice(service.PriceInput{
				NetWeight:     p.NetWeight,
				StonePrice:    p.StonePrice,
				MakingCharges: p.MakingCharges,
				PricePerGram:  randomRateFor(p.TypeName),
			})

			qtyDec := decimal.NewFromInt(int64(qty))
			items = append(items, repository.OrderItem{
				ProductID: p.ID,
				Quantity:  qty,
				UnitPrice: breakdown.FinalPrice,
				GST:       breakdown.GSTAmount,
				Discount:  decimal.Zero,
				LineTotal: breakdown.FinalPrice.Mul(qtyDec),
			})

			subtotal = subtotal.Add(breakdown.Subtotal.Mul(qtyDec))
			totalGST = totalGST.Add(breakdown.GSTAmount.Mul(qtyDec))
		}

		order := &model.Order{
			InvoiceNumber: invoice,
			UserID:        userIDs[rand.Intn(len(userIDs))],
			Subtotal:      subtotal,
			GST:           totalGST,
			Discount:      decimal.Zero,
			GrandTotal:    subtotal.Add(totalGST),
			Status:        statuses[rand.Intn(len(statuses))],
			PaymentMode:   paymentModes[rand.Intn(len(paymentModes))],
			CreatedAt:     createdAt,
		}

		ok, err := repo.CreateOrder(ctx, order, items)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func randomAmount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).Round(2)
}

// randomRateFor mirrors the per-metal price bands the storefront sees in
// practice, in INR per gram.
func randomRateFor(typeName string) decimal.Decimal {
	switch service.MetalTypeForProduct(typeName) {
	case "platinum":
		return decimal.NewFromInt(int64(3500 + rand.Intn(1700)))
	case "silver":
		return decimal.NewFromInt(int64(80 + rand.Intn(140)))
	case "gem":
		return decimal.NewFromInt(int64(2000 + rand.Intn(4000)))
	default:
		return decimal.NewFromInt(int64(6500 + rand.Intn(3700)))
	}
}

func randomPastTime(maxDays int) time.Time {
	days := rand.Intn(maxDays)
	t := time.Now().AddDate(0, 0, -days)
	return time.Date(t.Year(), t.Month(), t.Day(),
		9+rand.Intn(12), rand.Intn(60), rand.Intn(60), 0, time.Local)
}

func pickImages() []string {
	n := 1 + rand.Intn(4)
	shuffled := make([]string, len(images))
	copy(shuffled, images)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
