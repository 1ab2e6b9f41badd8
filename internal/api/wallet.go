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

type walletRoutes struct {
	ws service.WalletServiceI
	cs service.CommissionServiceI
}

func NewWalletRoutes(handler *gin.RouterGroup, ws service.WalletServiceI, cs service.CommissionServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &walletRoutes{ws: ws, cs: cs}

	wallet := handler.Group("/wallet")
	wallet.Use(a.AuthMiddleware(), authz.AdminFlag())
	{
		wallet.GET("/history/:user_id", r.GetHistory)
		wallet.GET("/commissions/:user_id", r.GetCommissions)
	}

	admin := handler.Group("/admin")
	admin.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		admin.POST("/wallet/credit", r.Credit)
	}
}

type CreditRequest struct {
	UserID        int64           `json:"user_id" binding:"required"`
	Coins         decimal.Decimal `json:"coins" binding:"required"`
	Source        string          `json:"source" binding:"required"`
	InvoiceNumber *string         `json:"invoice_number"`
	ChildID       *int64          `json:"child_id"`
	Description   *string         `json:"description"`
}

func (r *walletRoutes) Credit(c *gin.Context) {
	log := logger.Logger()

	var req CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !req.Coins.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coins must be positive"})
		return
	}

	entry := &model.WalletTransaction{
		UserID:        req.UserID,
		Coins:         req.Coins,
		Source:        req.Source,
		InvoiceNumber: req.InvoiceNumber,
		ChildID:       req.ChildID,
		Description:   req.Description,
	}

	if err := r.ws.Credit(c.Request.Context(), entry); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to credit wallet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit wallet"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         entry.ID,
		"created_at": entry.CreatedAt.Format(time.RFC3339),
	})
}

type WalletHistoryEntryResponse struct {
	ID            int64            `json:"id"`
	Coins         decimal.Decimal  `json:"coins"`
	Type          string           `json:"type"`
	Source        string           `json:"source"`
	Description   *string          `json:"description"`
	InvoiceNumber *string          `json:"invoice_number"`
	InvoiceTotal  *decimal.Decimal `json:"invoice_total"`
	InvoiceStatus *string          `json:"invoice_status"`
	ChildUsername *string          `json:"child_username"`
	CreatedAt     string           `json:"created_at"`
}

func toWalletHistoryResponse(e *model.WalletHistoryEntry) WalletHistoryEntryResponse {
	return WalletHistoryEntryResponse{
		ID:            e.ID,
		Coins:         e.Coins,
		Type:          e.Type,
		Source:        e.Source,
		Description:   e.Description,
		InvoiceNumber: e.InvoiceNumber,
		InvoiceTotal:  e.InvoiceTotal,
		InvoiceStatus: e.InvoiceStatus,
		ChildUsername: e.ChildUsername,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func (r *walletRoutes) GetHistory(c *gin.Context) {
	log := logger.Logger()

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse user id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	callerID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if callerID != userID && !c.GetBool("is_admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	entries, err := r.ws.History(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error("failed to get wallet history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get wallet history"})
		return
	}

	out := make([]WalletHistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toWalletHistoryResponse(e)
	}

	c.JSON(http.StatusOK, out)
}

func (r *walletRoutes) GetCommissions(c *gin.Context) {
	log := logger.Logger()

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse user id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	callerID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if callerID != userID && !c.GetBool("is_admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	report, err := r.cs.Attribute(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to build commission report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build commission report"})
		return
	}

	c.JSON(http.StatusOK, toCommissionResponse(report))
}
