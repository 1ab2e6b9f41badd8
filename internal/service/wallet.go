package service

import (
	"context"
	"fmt"

	"SJ_storefront_backend/internal/model"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type WalletService struct {
	repo WalletRepository
}

func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{
		repo: repo,
	}
}

func (s *WalletService) History(ctx context.Context, userID int64, limit int) ([]*model.WalletHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.repo.GetWalletHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet history: %w", err)
	}

	return entries, nil
}

// Credit posts a credit entry to the ledger. The denormalized balance
// moves in the same transaction on the repository side.
func (s *WalletService) Credit(ctx context.Context, entry *model.WalletTransaction) error {
	entry.Type = model.TxTypeCredit
	if err := s.repo.AppendTransaction(ctx, entry); err != nil {
		return mapNotFound(err, ErrUserNotFound)
	}
	return nil
}
