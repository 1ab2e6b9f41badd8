package service

import (
	"context"
	"errors"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrAlreadyReferred     = errors.New("user already has a referrer")
	ErrProductNotFound     = errors.New("product not found")
	ErrReferralCycle       = errors.New("referral cycle detected")
)

type Service struct {
	*UserService
	*ReferralService
	*CommissionService
	*WalletService
	*CatalogService
}

func NewService(
	userService *UserService,
	referralService *ReferralService,
	commissionService *CommissionService,
	walletService *WalletService,
	catalogService *CatalogService,
) *Service {
	return &Service{
		UserService:       userService,
		ReferralService:   referralService,
		CommissionService: commissionService,
		WalletService:     walletService,
		CatalogService:    catalogService,
	}
}

type UserServiceI interface {
	Register(ctx context.Context, reg *model.Registration) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, update *model.ProfileUpdate) (*model.User, error)
	GetReferrer(ctx context.Context, userID int64) (*model.User, error)
	SetReferrer(ctx context.Context, userID int64, referralCode *string) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	UpdateUserProfile(ctx context.Context, id int64, update *model.ProfileUpdate) (*model.User, error)
	SetReferrer(ctx context.Context, userID, referrerID int64) error
	GetCompanyRoot(ctx context.Context) (*model.User, error)
}

type ReferralServiceI interface {
	BuildTree(ctx context.Context, focusUserID int64, includeParent bool) (*model.ReferralTree, error)
	BuildFullTree(ctx context.Context) (*model.ReferralTree, error)
	BuildBranch(ctx context.Context, focusUserID int64) (*model.TreeNode, error)
}

type ReferralRepository interface {
	GetTreeNode(ctx context.Context, id int64) (*model.TreeNode, error)
	GetReferralClosure(ctx context.Context, rootID int64) ([]*model.TreeNode, error)
	GetDirectChildren(ctx context.Context, referrerIDs ...int64) ([]*model.TreeNode, error)
	GetCompanyRoot(ctx context.Context) (*model.User, error)
}

type CommissionServiceI interface {
	Attribute(ctx context.Context, focusUserID int64) (*model.CommissionReport, error)
}

type WalletServiceI interface {
	History(ctx context.Context, userID int64, limit int) ([]*model.WalletHistoryEntry, error)
	Credit(ctx context.Context, entry *model.WalletTransaction) error
}

type WalletRepository interface {
	AppendTransaction(ctx context.Context, entry *model.WalletTransaction) error
	GetWalletHistory(ctx context.Context, userID int64, limit int) ([]*model.WalletHistoryEntry, error)
	GetReferralCredits(ctx context.Context, userID int64, sources []string) ([]*model.WalletTransaction, error)
}

type CatalogServiceI interface {
	GetProducts(ctx context.Context) ([]*model.PricedProduct, error)
	GetProduct(ctx context.Context, id int64) (*model.PricedProduct, error)
	GetTaxonomy(ctx context.Context) (*model.Taxonomy, error)
	RecordMetalRate(ctx context.Context, metalType, purity string, priceINR decimal.Decimal) (*model.MetalRate, error)
	GetFavorites(ctx context.Context, userID int64) ([]int64, error)
	AddFavorite(ctx context.Context, userID, productID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error)
	GetFavoriteProducts(ctx context.Context, userID int64) ([]*model.PricedProduct, error)
}

type CatalogRepository interface {
	GetProducts(ctx context.Context) ([]*model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetLatestMetalRates(ctx context.Context) ([]*model.MetalRate, error)
	InsertMetalRate(ctx context.Context, rate *model.MetalRate) error
	GetTaxonomy(ctx context.Context) (*model.Taxonomy, error)
}

type FavoritesRepository interface {
	GetFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error)
	AddFavorite(ctx context.Context, userID, productID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error)
	GetFavoriteProducts(ctx context.Context, userID int64) ([]*model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
}

func mapNotFound(err error, to error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return to
	}
	return err
}
