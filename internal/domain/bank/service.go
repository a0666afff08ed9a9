package bank

import (
	"context"
	"fmt"
)

// Service contains the business logic for bank-link records.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateBankAccount persists a completed bank link.
func (s *Service) CreateBankAccount(ctx context.Context, params CreateBankParams) (*Bank, error) {
	return s.repo.Create(ctx, params)
}

// GetBanks retrieves all bank links owned by a user.
func (s *Service) GetBanks(ctx context.Context, userID string) ([]*Bank, error) {
	banks, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return banks, nil
}

// GetBank retrieves a single bank link by record id.
func (s *Service) GetBank(ctx context.Context, id string) (*Bank, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBankByAccountID resolves the bank link holding an external account id.
// The account id is expected to identify exactly one link; zero or several
// matches both resolve to ErrNotFound.
func (s *Service) GetBankByAccountID(ctx context.Context, accountID string) (*Bank, error) {
	banks, err := s.repo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks by account: %w", err)
	}
	if len(banks) != 1 {
		return nil, ErrNotFound
	}
	return banks[0], nil
}
