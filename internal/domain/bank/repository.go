package bank

import (
	"context"
	"errors"
)

// ErrNotFound indicates no bank record matched the lookup. Ambiguous
// account-id lookups (more than one match) also collapse to ErrNotFound.
var ErrNotFound = errors.New("bank: not found")

type Repository interface {
	Create(ctx context.Context, params CreateBankParams) (*Bank, error)
	ListByUserID(ctx context.Context, userID string) ([]*Bank, error)
	GetByID(ctx context.Context, id string) (*Bank, error)
	ListByAccountID(ctx context.Context, accountID string) ([]*Bank, error)
}
