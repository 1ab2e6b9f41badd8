package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const userContextKey = "user_id"

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.StandardClaims
}

type JWTAuth struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewJWTAuth(secret string, tokenTTL time.Duration) *JWTAuth {
	return &JWTAuth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (a *JWTAuth) GenerateToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.tokenTTL).Unix(),
		},
	})

	return token.SignedString(a.secret)
}

func (a *JWTAuth) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// AuthMiddleware validates the bearer token and stores the caller's user id
// in the request context.
func (a *JWTAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := a.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userContextKey, claims.UserID)
		c.Next()
	}
}

// UserID extracts the authenticated caller's id placed by AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
