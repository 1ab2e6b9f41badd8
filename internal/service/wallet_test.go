package service

import (
	"context"
	"testing"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWalletService_History(t *testing.T) {
	tests := []struct {
		name          string
		requested     int
		expectedLimit int
	}{
		{name: "Zero limit takes the default", requested: 0, expectedLimit: defaultHistoryLimit},
		{name: "Negative limit takes the default", requested: -5, expectedLimit: defaultHistoryLimit},
		{name: "Explicit limit passes through", requested: 20, expectedLimit: 20},
		{name: "Oversized limit is capped", requested: 9999, expectedLimit: maxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockWalletRepository{}
			mockRepo.On("GetWalletHistory", mock.Anything, int64(1), tt.expectedLimit).
				Return([]*model.WalletHistoryEntry{}, nil)

			service := NewWalletService(mockRepo)
			entries, err := service.History(context.Background(), 1, tt.requested)

			assert.NoError(t, err)
			assert.NotNil(t, entries)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestWalletService_Credit(t *testing.T) {
	t.Run("Forces the credit type", func(t *testing.T) {
		mockRepo := &mocks.MockWalletRepository{}
		mockRepo.On("AppendTransaction", mock.Anything, mock.MatchedBy(func(tx *model.WalletTransaction) bool {
			return tx.Type == model.TxTypeCredit
		})).Return(nil)

		service := NewWalletService(mockRepo)
		err := service.Credit(context.Background(), &model.WalletTransaction{
			UserID: 1,
			Coins:  decimal.NewFromInt(100),
			Type:   model.TxTypeDebit, // overridden
			Source: "referral",
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockRepo := &mocks.MockWalletRepository{}
		mockRepo.On("AppendTransaction", mock.Anything, mock.Anything).
			Return(repository.ErrNotFound)

		service := NewWalletService(mockRepo)
		err := service.Credit(context.Background(), &model.WalletTransaction{
			UserID: 99,
			Coins:  decimal.NewFromInt(100),
			Source: "referral",
		})

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
