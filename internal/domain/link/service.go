// Package link implements the bank-link handshake against the aggregator
// and the payment rail.
package link

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/shared/config"
)

// Handshake step names, in execution order.
const (
	StepExchange       = "exchange"
	StepAccounts       = "accounts"
	StepProcessorToken = "processor_token"
	StepFundingSource  = "funding_source"
	StepPersist        = "persist"
)

const processorName = "dwolla"

// ErrAmbiguousAccounts is returned under the reject-if-multiple selection
// policy when a freshly linked item carries more than one account.
var ErrAmbiguousAccounts = errors.New("link: item has multiple accounts")

// StepError reports which handshake step failed. The handshake never runs
// past a failed step, so a StepError also tells the caller which external
// artifacts already exist.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// CacheInvalidator drops cached dashboard state after a link lands.
type CacheInvalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// Service drives the bank-link handshake: token exchange, account selection,
// processor-token creation, funding-source enrollment and persistence.
type Service struct {
	aggregator plaid.ClientInterface
	rail       dwolla.ClientInterface
	banks      *bank.Service
	encryptor  *crypto.Encryptor
	cache      CacheInvalidator
	selection  string
}

func NewService(
	aggregator plaid.ClientInterface,
	rail dwolla.ClientInterface,
	banks *bank.Service,
	encryptor *crypto.Encryptor,
	cache CacheInvalidator,
	cfg config.LinkConfig,
) *Service {
	return &Service{
		aggregator: aggregator,
		rail:       rail,
		banks:      banks,
		encryptor:  encryptor,
		cache:      cache,
		selection:  cfg.AccountSelection,
	}
}

// CreateLinkToken requests an ephemeral token that authorizes the client-side
// link flow. The token is scoped to the user's id and full name; the
// aggregator shows the name during the link dialog.
func (s *Service) CreateLinkToken(ctx context.Context, u *user.User) (string, error) {
	resp, err := s.aggregator.CreateLinkToken(ctx, u.ID, u.FullName())
	if err != nil {
		return "", fmt.Errorf("failed to create link token: %w", err)
	}
	return resp.LinkToken, nil
}

// ExchangePublicToken completes a link the client-side flow started. The
// steps run strictly in order and the first failure aborts the handshake;
// no compensation is attempted for artifacts created by earlier steps.
// On success the persisted record is returned and the user's cached
// dashboard state is dropped best-effort.
func (s *Service) ExchangePublicToken(ctx context.Context, u *user.User, publicToken string) (*bank.Bank, error) {
	exchange, err := s.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, &StepError{Step: StepExchange, Err: err}
	}

	accounts, err := s.aggregator.GetAccounts(ctx, exchange.AccessToken)
	if err != nil {
		return nil, &StepError{Step: StepAccounts, Err: err}
	}
	account, err := s.selectAccount(accounts.Accounts)
	if err != nil {
		return nil, &StepError{Step: StepAccounts, Err: err}
	}

	processor, err := s.aggregator.CreateProcessorToken(ctx, exchange.AccessToken, account.AccountID, processorName)
	if err != nil {
		return nil, &StepError{Step: StepProcessorToken, Err: err}
	}

	fundingSourceURL, err := s.rail.CreateFundingSource(ctx, dwolla.CreateFundingSourceParams{
		CustomerID:     u.DwollaCustomerID,
		ProcessorToken: processor.ProcessorToken,
		Name:           account.Name,
	})
	if err != nil {
		return nil, &StepError{Step: StepFundingSource, Err: err}
	}

	encryptedToken, err := s.encryptor.Encrypt(exchange.AccessToken)
	if err != nil {
		return nil, &StepError{Step: StepPersist, Err: err}
	}

	created, err := s.banks.CreateBankAccount(ctx, bank.CreateBankParams{
		UserID:           u.ID,
		ItemID:           exchange.ItemID,
		AccountID:        account.AccountID,
		AccessToken:      encryptedToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      base64.StdEncoding.EncodeToString([]byte(account.AccountID)),
	})
	if err != nil {
		return nil, &StepError{Step: StepPersist, Err: err}
	}

	s.invalidateDashboard(ctx, u.ID)

	return created, nil
}

func (s *Service) selectAccount(accounts []plaid.Account) (*plaid.Account, error) {
	if len(accounts) == 0 {
		return nil, errors.New("item has no accounts")
	}
	if len(accounts) > 1 && s.selection == config.AccountSelectionRejectIfMultiple {
		return nil, ErrAmbiguousAccounts
	}
	return &accounts[0], nil
}

// invalidateDashboard drops the user's cached dashboard state. A stale entry
// self-expires, so failures here are logged and not surfaced.
func (s *Service) invalidateDashboard(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboard.AccountsCacheKey(userID)); err != nil {
		log.Printf("Failed to invalidate dashboard cache for user %s: %v", userID, err)
	}
}
