package api

import (
	"errors"
	"net/http"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/auth"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type userRoutes struct {
	us       service.UserServiceI
	a        *auth.JWTAuth
	notifier *service.Notifier
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.JWTAuth, notifier *service.Notifier) {
	r := &userRoutes{us: us, a: a, notifier: notifier}
	h := handler.Group("/users")
	{
		h.POST("/register", r.Register)
		h.POST("/login", r.Login)
	}

	me := h.Group("/")
	me.Use(a.AuthMiddleware())
	{
		me.GET("/me", r.Me)
		me.PUT("/me", r.UpdateProfile)
		me.GET("/referrer", r.GetReferrer)
		me.POST("/referrer", r.SetReferrer)
	}
}

type RegisterRequest struct {
	Username     string  `json:"username" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=6"`
	MobileNumber string  `json:"mobile_number" binding:"required"`
	ReferralCode *string `json:"referral_code"`
}

type UserResponse struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	MobileNumber string          `json:"mobile_number"`
	ReferralCode string          `json:"referral_code"`
	ReferrerID   *int64          `json:"referrer_id"`
	Wallet       decimal.Decimal `json:"wallet"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		ReferralCode: user.ReferralCode,
		ReferrerID:   user.ReferrerID,
		Wallet:       user.Wallet,
	}
}

func (r *userRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.Register(c.Request.Context(), &model.Registration{
		Username:     req.Username,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		case errors.Is(err, service.ErrInvalidReferralCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
		default:
			log.Error("failed to register user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		}
		return
	}

	r.notifier.NotifyNewUser(user)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    toUserResponse(user),
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r *userRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error("failed to login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := r.a.GenerateToken(user.ID)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    toUserResponse(user),
	})
}

func (r *userRoutes) Me(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type UpdateProfileRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number" binding:"required"`
}

func (r *userRoutes) UpdateProfile(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.UpdateProfile(c.Request.Context(), userID, &model.ProfileUpdate{
		Username:     req.Username,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email or mobile number already in use"})
			return
		}
		log.Error("failed to update profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (r *userRoutes) GetReferrer(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	referrer, err := r.us.GetReferrer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get referrer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if referrer == nil {
		c.JSON(http.StatusOK, gin.H{"referrer": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrer": gin.H{
			"id":       referrer.ID,
			"username": referrer.Username,
		},
	})
}

type SetReferrerRequest struct {
	ReferralCode *string `json:"referral_code"`
}

func (r *userRoutes) SetReferrer(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SetReferrerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	referrer, err := r.us.SetReferrer(c.Request.Context(), userID, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidReferralCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
		case errors.Is(err, service.ErrAlreadyReferred):
			c.JSON(http.StatusBadRequest, gin.H{"error": "referrer already assigned"})
		default:
			log.Error("failed to set referrer", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set referrer"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrer": gin.H{
			"id":       referrer.ID,
			"username": referrer.Username,
		},
	})
}
