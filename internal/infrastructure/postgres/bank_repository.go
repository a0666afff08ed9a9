package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/bank"
)

// BankRepository stores bank-link records in the banks table.
type BankRepository struct {
	db *DB
}

var _ bank.Repository = (*BankRepository)(nil)

func NewBankRepository(db *DB) *BankRepository {
	return &BankRepository{db: db}
}

func (r *BankRepository) Create(ctx context.Context, params bank.CreateBankParams) (*bank.Bank, error) {
	query := `
		INSERT INTO banks (
			id, user_id, item_id, account_id, access_token,
			funding_source_url, shareable_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	b := &bank.Bank{
		ID:               uuid.NewString(),
		UserID:           params.UserID,
		ItemID:           params.ItemID,
		AccountID:        params.AccountID,
		AccessToken:      params.AccessToken,
		FundingSourceURL: params.FundingSourceURL,
		ShareableID:      params.ShareableID,
	}

	err := r.db.QueryRowContext(ctx, query,
		b.ID, b.UserID, b.ItemID, b.AccountID, b.AccessToken,
		b.FundingSourceURL, b.ShareableID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank: %w", err)
	}

	return b, nil
}

func (r *BankRepository) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	query := `
		SELECT id, user_id, item_id, account_id, access_token,
		       funding_source_url, shareable_id, created_at
		FROM banks
		WHERE id = $1
	`

	var b bank.Bank
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.ItemID, &b.AccountID, &b.AccessToken,
		&b.FundingSourceURL, &b.ShareableID, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bank.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}

	return &b, nil
}

func (r *BankRepository) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	query := `
		SELECT id, user_id, item_id, account_id, access_token,
		       funding_source_url, shareable_id, created_at
		FROM banks
		WHERE user_id = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, userID)
}

func (r *BankRepository) ListByAccountID(ctx context.Context, accountID string) ([]*bank.Bank, error) {
	query := `
		SELECT id, user_id, item_id, account_id, access_token,
		       funding_source_url, shareable_id, created_at
		FROM banks
		WHERE account_id = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, accountID)
}

func (r *BankRepository) list(ctx context.Context, query string, args ...any) ([]*bank.Bank, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	defer rows.Close()

	var banks []*bank.Bank
	for rows.Next() {
		var b bank.Bank
		err := rows.Scan(
			&b.ID, &b.UserID, &b.ItemID, &b.AccountID, &b.AccessToken,
			&b.FundingSourceURL, &b.ShareableID, &b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}
		banks = append(banks, &b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banks: %w", err)
	}

	return banks, nil
}
