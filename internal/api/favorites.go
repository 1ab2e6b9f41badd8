package api

import (
	"errors"
	"net/http"
	"strconv"

	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/auth"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type favoritesRoutes struct {
	cs service.CatalogServiceI
}

func NewFavoritesRoutes(handler *gin.RouterGroup, cs service.CatalogServiceI, a *auth.JWTAuth) {
	r := &favoritesRoutes{cs: cs}

	favorites := handler.Group("/favorites")
	favorites.Use(a.AuthMiddleware())
	{
		favorites.GET("", r.GetFavorites)
		favorites.POST("", r.AddFavorite)
		favorites.DELETE("/:product_id", r.RemoveFavorite)
		favorites.GET("/products", r.GetFavoriteProducts)
	}
}

func (r *favoritesRoutes) GetFavorites(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ids, err := r.cs.GetFavorites(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get favorites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

type AddFavoriteRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (r *favoritesRoutes) AddFavorite(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	added, err := r.cs.AddFavorite(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		log.Error("failed to add favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (r *favoritesRoutes) RemoveFavorite(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse product id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	removed, err := r.cs.RemoveFavorite(c.Request.Context(), userID, productID)
	if err != nil {
		log.Error("failed to remove favorite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (r *favoritesRoutes) GetFavoriteProducts(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	products, err := r.cs.GetFavoriteProducts(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get favorite products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get favorite products"})
		return
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}

	c.JSON(http.StatusOK, out)
}
