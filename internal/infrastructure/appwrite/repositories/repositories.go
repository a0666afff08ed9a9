package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/appwrite"
)

// UserRepository stores directory records as documents in the user collection.
type UserRepository struct {
	client       *appwrite.Client
	databaseID   string
	collectionID string
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(client *appwrite.Client, databaseID, collectionID string) *UserRepository {
	return &UserRepository{client: client, databaseID: databaseID, collectionID: collectionID}
}

type userDocument struct {
	ID                string `json:"$id,omitempty"`
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Address1          string `json:"address1"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	DateOfBirth       string `json:"dateOfBirth"`
	SSN               string `json:"ssn"`
	DwollaCustomerID  string `json:"dwollaCustomerId"`
	DwollaCustomerURL string `json:"dwollaCustomerUrl"`
}

func (d *userDocument) toUser() *user.User {
	return &user.User{
		ID:                d.ID,
		IdentityID:        d.UserID,
		Email:             d.Email,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Address1:          d.Address1,
		City:              d.City,
		State:             d.State,
		PostalCode:        d.PostalCode,
		DateOfBirth:       d.DateOfBirth,
		SSN:               d.SSN,
		DwollaCustomerID:  d.DwollaCustomerID,
		DwollaCustomerURL: d.DwollaCustomerURL,
	}
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	doc := userDocument{
		UserID:            params.IdentityID,
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

	raw, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, uuid.NewString(), doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create user document: %w", err)
	}

	var created userDocument
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return created.toUser(), nil
}

func (r *UserRepository) GetByIdentityID(ctx context.Context, identityID string) (*user.User, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, appwrite.QueryEqual("userId", identityID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user documents: %w", err)
	}
	if list.Total == 0 || len(list.Documents) == 0 {
		return nil, user.ErrNotFound
	}

	var doc userDocument
	if err := json.Unmarshal(list.Documents[0], &doc); err != nil {
		return nil, fmt.Errorf("failed to decode user document: %w", err)
	}
	return doc.toUser(), nil
}

// BankRepository stores bank-link records as documents in the bank collection.
type BankRepository struct {
	client       *appwrite.Client
	databaseID   string
	collectionID string
}

var _ bank.Repository = (*BankRepository)(nil)

func NewBankRepository(client *appwrite.Client, databaseID, collectionID string) *BankRepository {
	return &BankRepository{client: client, databaseID: databaseID, collectionID: collectionID}
}

type bankDocument struct {
	ID               string    `json:"$id,omitempty"`
	CreatedAt        time.Time `json:"$createdAt,omitempty"`
	UserID           string    `json:"userId"`
	BankID           string    `json:"bankId"`
	AccountID        string    `json:"accountId"`
	AccessToken      string    `json:"accessToken"`
	FundingSourceURL string    `json:"fundingSourceUrl"`
	ShareableID      string    `json:"shareableId"`
}

func (d *bankDocument) toBank() *bank.Bank {
	return &bank.Bank{
		ID:               d.ID,
		UserID:           d.UserID,
		ItemID:           d.BankID,
		AccountID:        d.AccountID,
		AccessToken:      d.AccessToken,
		FundingSourceURL: d.FundingSourceURL,
		ShareableID:      d.ShareableID,
		CreatedAt:        d.CreatedAt,
	}
}

func (r *BankRepository) Create(ctx context.Context, params bank.CreateBankParams) (*bank.Bank, error) {
	doc := bankDocument{
		UserID:           params.UserID,
		BankID:           params.ItemID,
		AccountID:        params.AccountID,
		AccessToken:      params.AccessToken,
		FundingSourceURL: params.FundingSourceURL,
		ShareableID:      params.ShareableID,
	}

	raw, err := r.client.CreateDocument(ctx, r.databaseID, r.collectionID, uuid.NewString(), doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank document: %w", err)
	}

	var created bankDocument
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to decode bank document: %w", err)
	}
	return created.toBank(), nil
}

func (r *BankRepository) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, appwrite.QueryEqual("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list bank documents: %w", err)
	}
	return decodeBanks(list)
}

func (r *BankRepository) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, appwrite.QueryEqual("$id", id))
	if err != nil {
		return nil, fmt.Errorf("failed to list bank documents: %w", err)
	}
	if list.Total == 0 || len(list.Documents) == 0 {
		return nil, bank.ErrNotFound
	}

	var doc bankDocument
	if err := json.Unmarshal(list.Documents[0], &doc); err != nil {
		return nil, fmt.Errorf("failed to decode bank document: %w", err)
	}
	return doc.toBank(), nil
}

func (r *BankRepository) ListByAccountID(ctx context.Context, accountID string) ([]*bank.Bank, error) {
	list, err := r.client.ListDocuments(ctx, r.databaseID, r.collectionID, appwrite.QueryEqual("accountId", accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to list bank documents: %w", err)
	}
	return decodeBanks(list)
}

func decodeBanks(list *appwrite.DocumentList) ([]*bank.Bank, error) {
	banks := make([]*bank.Bank, 0, len(list.Documents))
	for _, raw := range list.Documents {
		var doc bankDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode bank document: %w", err)
		}
		banks = append(banks, doc.toBank())
	}
	return banks, nil
}
