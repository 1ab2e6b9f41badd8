package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"SJ_storefront_backend/internal/api"
	"SJ_storefront_backend/internal/middleware"
	"SJ_storefront_backend/internal/rates"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/auth"
	"SJ_storefront_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	shape, err := service.ParseAttributionShape(cfg.Referral.AttributionShape)
	if err != nil {
		zapLogger.Fatal("Failed to parse attribution shape", zap.Error(err))
	}

	userService := service.NewUserService(repo)
	referralService := service.NewReferralService(repo)
	commissionService := service.NewCommissionService(repo, shape)
	walletService := service.NewWalletService(repo)
	catalogService := service.NewCatalogService(repo, repo)

	notifier, err := service.NewNotifier(cfg.Notifier)
	if err != nil {
		zapLogger.Fatal("Failed to initialize notifier", zap.Error(err))
	}

	jwtAuth := auth.NewJWTAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authz := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, jwtAuth, notifier)
	api.NewReferralRoutes(a, referralService, commissionService, jwtAuth, authz)
	api.NewProductRoutes(a, catalogService, jwtAuth, authz, notifier)
	api.NewWalletRoutes(a, walletService, commissionService, jwtAuth, authz)
	api.NewFavoritesRoutes(a, catalogService, jwtAuth)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := rates.NewFeed(cfg.Feed, catalogService)
	go feed.Run(ctx)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
