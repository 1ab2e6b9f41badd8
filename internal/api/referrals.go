package api

import (
	"errors"
	"net/http"
	"strconv"

	"SJ_storefront_backend/internal/middleware"
	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/auth"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type referralRoutes struct {
	rs service.ReferralServiceI
	cs service.CommissionServiceI
	a  *auth.JWTAuth
}

func NewReferralRoutes(handler *gin.RouterGroup, rs service.ReferralServiceI, cs service.CommissionServiceI, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &referralRoutes{rs: rs, cs: cs, a: a}
	h := handler.Group("/referrals")
	h.Use(a.AuthMiddleware())
	{
		h.GET("/tree", r.GetTree)
		h.GET("/branch", r.GetBranch)
		h.GET("/full-tree", authz.AdminOnly(), r.GetFullTree)
	}
}

type CommissionResponse struct {
	TotalFromChildren decimal.Decimal         `json:"totalFromChildren"`
	PerChild          []model.ChildCommission `json:"perChild"`
}

func toCommissionResponse(report *model.CommissionReport) CommissionResponse {
	return CommissionResponse{
		TotalFromChildren: report.TotalFromChildren,
		PerChild:          report.PerChild,
	}
}

// GetTree serves the full referral subtree for a focus user. root_user_id
// defaults to the caller; with_coins attaches the commission breakdown.
func (r *referralRoutes) GetTree(c *gin.Context) {
	log := logger.Logger()

	focusUserID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if raw := c.Query("root_user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Error("failed to parse root_user_id", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid root_user_id"})
			return
		}
		focusUserID = id
	}

	includeParent := c.Query("include_parent") == "1" || c.Query("include_parent") == "true"
	withCoins := c.Query("with_coins") == "1" || c.Query("with_coins") == "true"

	tree, err := r.rs.BuildTree(c.Request.Context(), focusUserID, includeParent)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to build referral tree", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build referral tree"})
		return
	}

	out := gin.H{
		"root":        tree.Root,
		"focusUserId": tree.FocusUserID,
	}

	if withCoins {
		report, err := r.cs.Attribute(c.Request.Context(), focusUserID)
		if err != nil {
			log.Error("failed to attribute commissions", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attribute commissions"})
			return
		}
		out["coins"] = toCommissionResponse(report)
	}

	c.JSON(http.StatusOK, out)
}

// GetBranch serves the bounded 3-level view around a focus user.
func (r *referralRoutes) GetBranch(c *gin.Context) {
	log := logger.Logger()

	focusUserID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if raw := c.Query("focus_user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Error("failed to parse focus_user_id", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid focus_user_id"})
			return
		}
		focusUserID = id
	}

	branch, err := r.rs.BuildBranch(c.Request.Context(), focusUserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to build referral branch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build referral branch"})
		return
	}

	c.JSON(http.StatusOK, branch)
}

// GetFullTree serves the entire forest from the company root, admin only.
func (r *referralRoutes) GetFullTree(c *gin.Context) {
	log := logger.Logger()

	tree, err := r.rs.BuildFullTree(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no company root account"})
			return
		}
		log.Error("failed to build full referral tree", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build full referral tree"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"root": tree.Root})
}
