package mocks

import (
	"context"

	"SJ_storefront_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateUserProfile(ctx context.Context, id int64, update *model.ProfileUpdate) (*model.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetReferrer(ctx context.Context, userID, referrerID int64) error {
	args := m.Called(ctx, userID, referrerID)
	return args.Error(0)
}

func (m *MockUserRepository) GetCompanyRoot(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) GetTreeNode(ctx context.Context, id int64) (*model.TreeNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TreeNode), args.Error(1)
}

func (m *MockReferralRepository) GetReferralClosure(ctx context.Context, rootID int64) ([]*model.TreeNode, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TreeNode), args.Error(1)
}

func (m *MockReferralRepository) GetDirectChildren(ctx context.Context, referrerIDs ...int64) ([]*model.TreeNode, error) {
	callArgs := make([]interface{}, 0, len(referrerIDs)+1)
	callArgs = append(callArgs, ctx)
	for _, id := range referrerIDs {
		callArgs = append(callArgs, id)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TreeNode), args.Error(1)
}

func (m *MockReferralRepository) GetCompanyRoot(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) AppendTransaction(ctx context.Context, entry *model.WalletTransaction) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletHistory(ctx context.Context, userID int64, limit int) ([]*model.WalletHistoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WalletHistoryEntry), args.Error(1)
}

func (m *MockWalletRepository) GetReferralCredits(ctx context.Context, userID int64, sources []string) ([]*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, sources)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WalletTransaction), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetProducts(ctx context.Context) ([]*model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetLatestMetalRates(ctx context.Context) ([]*model.MetalRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MetalRate), args.Error(1)
}

func (m *MockCatalogRepository) InsertMetalRate(ctx context.Context, rate *model.MetalRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetTaxonomy(ctx context.Context) (*model.Taxonomy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Taxonomy), args.Error(1)
}

type MockFavoritesRepository struct {
	mock.Mock
}

func (m *MockFavoritesRepository) GetFavorites(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Favorite), args.Error(1)
}

func (m *MockFavoritesRepository) AddFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoritesRepository) RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoritesRepository) GetFavoriteProducts(ctx context.Context, userID int64) ([]*model.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockFavoritesRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
