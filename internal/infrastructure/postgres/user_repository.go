package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/user"
)

// UserRepository stores directory records in the users table.
type UserRepository struct {
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (
			id, identity_id, email, first_name, last_name,
			address1, city, state, postal_code, date_of_birth, ssn,
			dwolla_customer_id, dwolla_customer_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	u := &user.User{
		ID:                uuid.NewString(),
		IdentityID:        params.IdentityID,
		Email:             params.Email,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		Address1:          params.Address1,
		City:              params.City,
		State:             params.State,
		PostalCode:        params.PostalCode,
		DateOfBirth:       params.DateOfBirth,
		SSN:               params.SSN,
		DwollaCustomerID:  params.DwollaCustomerID,
		DwollaCustomerURL: params.DwollaCustomerURL,
	}

	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.IdentityID, u.Email, u.FirstName, u.LastName,
		u.Address1, u.City, u.State, u.PostalCode, u.DateOfBirth, u.SSN,
		u.DwollaCustomerID, u.DwollaCustomerURL,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (r *UserRepository) GetByIdentityID(ctx context.Context, identityID string) (*user.User, error) {
	query := `
		SELECT id, identity_id, email, first_name, last_name,
		       address1, city, state, postal_code, date_of_birth, ssn,
		       dwolla_customer_id, dwolla_customer_url
		FROM users
		WHERE identity_id = $1
	`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, identityID).Scan(
		&u.ID, &u.IdentityID, &u.Email, &u.FirstName, &u.LastName,
		&u.Address1, &u.City, &u.State, &u.PostalCode, &u.DateOfBirth, &u.SSN,
		&u.DwollaCustomerID, &u.DwollaCustomerURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}
