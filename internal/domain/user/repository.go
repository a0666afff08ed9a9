package user

import (
	"context"
	"errors"
)

// ErrNotFound indicates no directory record matched the lookup.
var ErrNotFound = errors.New("user: not found")

type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByIdentityID(ctx context.Context, identityID string) (*User, error)
}
