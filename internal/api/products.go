package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"SJ_storefront_backend/internal/middleware"
	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/auth"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productRoutes struct {
	cs       service.CatalogServiceI
	notifier *service.Notifier
}

func NewProductRoutes(handler *gin.RouterGroup, cs service.CatalogServiceI, a *auth.JWTAuth, authz *middleware.Authorization, notifier *service.Notifier) {
	r := &productRoutes{cs: cs, notifier: notifier}
	{
		handler.GET("/products", r.GetProducts)
		handler.GET("/products/:id", r.GetProduct)
		handler.GET("/taxonomy", r.GetTaxonomy)
	}

	admin := handler.Group("/admin")
	admin.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		admin.POST("/rates", r.RecordMetalRate)
	}
}

type ProductResponse struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku"`
	TypeName      string           `json:"type"`
	Purity        string           `json:"purity"`
	StoneType     *string          `json:"stone_type"`
	HSNCode       string           `json:"hsn_code"`
	NetWeight     *decimal.Decimal `json:"net_weight"`
	StonePrice    decimal.Decimal  `json:"stone_price"`
	MakingCharges decimal.Decimal  `json:"making_charges"`
	ImageURLs     []string         `json:"image_urls"`
	MetalRate     decimal.Decimal  `json:"metal_rate"`
	NetPrice      decimal.Decimal  `json:"net_price"`
	GSTAmount     decimal.Decimal  `json:"gst_amount"`
	FinalPrice    decimal.Decimal  `json:"final_price"`
}

func toProductResponse(p *model.PricedProduct) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		TypeName:      p.TypeName,
		Purity:        p.Purity,
		StoneType:     p.StoneType,
		HSNCode:       p.HSNCode,
		NetWeight:     p.NetWeight,
		StonePrice:    p.StonePrice,
		MakingCharges: p.MakingCharges,
		ImageURLs:     p.ImageURLs,
		MetalRate:     p.MetalRate,
		NetPrice:      p.NetPrice,
		GSTAmount:     p.GSTAmount,
		FinalPrice:    p.FinalPrice,
	}
}

func (r *productRoutes) GetProducts(c *gin.Context) {
	log := logger.Logger()

	products, err := r.cs.GetProducts(c.Request.Context())
	if err != nil {
		log.Error("failed to get products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get products"})
		return
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}

	c.JSON(http.StatusOK, out)
}

func (r *productRoutes) GetProduct(c *gin.Context) {
	log := logger.Logger()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		log.Error("failed to parse product id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := r.cs.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		log.Error("failed to get product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

func (r *productRoutes) GetTaxonomy(c *gin.Context) {
	log := logger.Logger()

	taxonomy, err := r.cs.GetTaxonomy(c.Request.Context())
	if err != nil {
		log.Error("failed to get taxonomy", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load taxonomy"})
		return
	}

	c.JSON(http.StatusOK, taxonomy)
}

type RecordRateRequest struct {
	MetalType string          `json:"metal_type" binding:"required"`
	Purity    string          `json:"purity" binding:"required"`
	PriceINR  decimal.Decimal `json:"price_inr" binding:"required"`
}

func (r *productRoutes) RecordMetalRate(c *gin.Context) {
	log := logger.Logger()

	var req RecordRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rate, err := r.cs.RecordMetalRate(c.Request.Context(), req.MetalType, req.Purity, req.PriceINR)
	if err != nil {
		log.Error("failed to record metal rate", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to record metal rate"})
		return
	}

	r.notifier.NotifyMetalRate(rate)

	c.JSON(http.StatusCreated, gin.H{
		"metal_type": rate.MetalType,
		"purity":     rate.Purity,
		"price_inr":  rate.PriceINR,
		"fetched_at": rate.FetchedAt.Format(time.RFC3339),
	})
}
