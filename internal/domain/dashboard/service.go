// Package dashboard composes the data shown on a user's home view from
// bank-link records and live aggregator balances.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/redis"
)

// ErrNoAccounts is returned when a user has no linked accounts yet. Callers
// render an empty dashboard rather than an error.
var ErrNoAccounts = errors.New("dashboard: no linked accounts")

const (
	pageSize         = 10
	cacheTTL         = 5 * time.Minute
	transactionsSpan = 2 * 365 * 24 * time.Hour

	// The aggregator caps a single transactions fetch at 500 entries.
	transactionsFetchLimit = 500
)

// AccountsCacheKey is the cache key for a user's account summary.
func AccountsCacheKey(userID string) string {
	return "dashboard:accounts:" + userID
}

// Cache holds serialized account summaries between requests. Implementations
// return an error matching redis.ErrMiss via errors.Is for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service composes the dashboard view.
type Service struct {
	banks      *bank.Service
	aggregator plaid.ClientInterface
	encryptor  *crypto.Encryptor
	cache      Cache
}

func NewService(banks *bank.Service, aggregator plaid.ClientInterface, encryptor *crypto.Encryptor, cache Cache) *Service {
	return &Service{
		banks:      banks,
		aggregator: aggregator,
		encryptor:  encryptor,
		cache:      cache,
	}
}

// GetAccounts returns the account summary for a user, served from cache
// when a fresh entry exists. A user with no bank links gets ErrNoAccounts.
func (s *Service) GetAccounts(ctx context.Context, userID string) (*Summary, error) {
	if cached := s.cachedSummary(ctx, userID); cached != nil {
		return cached, nil
	}

	banks, err := s.banks.GetBanks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, ErrNoAccounts
	}

	summary := &Summary{TotalBanks: len(banks)}
	for _, b := range banks {
		accessToken, err := s.encryptor.Decrypt(b.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token for bank %s: %w", b.ID, err)
		}

		resp, err := s.aggregator.GetAccounts(ctx, accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch accounts for bank %s: %w", b.ID, err)
		}

		for _, a := range resp.Accounts {
			if a.AccountID != b.AccountID {
				continue
			}
			summary.Accounts = append(summary.Accounts, toAccount(a, resp.Item, b))
			summary.TotalCurrentBalance = summary.TotalCurrentBalance.Add(a.Balances.Current)
		}
	}

	if len(summary.Accounts) == 0 {
		return nil, ErrNoAccounts
	}

	s.storeSummary(ctx, userID, summary)
	return summary, nil
}

// GetAccount returns the dashboard account backed by one bank-link record.
func (s *Service) GetAccount(ctx context.Context, bankID string) (*Account, error) {
	b, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.encryptor.Decrypt(b.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for bank %s: %w", b.ID, err)
	}

	resp, err := s.aggregator.GetAccounts(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for bank %s: %w", b.ID, err)
	}

	for _, a := range resp.Accounts {
		if a.AccountID == b.AccountID {
			account := toAccount(a, resp.Item, b)
			return &account, nil
		}
	}
	return nil, bank.ErrNotFound
}

// Compose builds the full dashboard view. selectedBankID picks which
// account's transactions to show; empty means the first account. page is
// 1-based.
func (s *Service) Compose(ctx context.Context, u *user.User, selectedBankID string, page int) (*View, error) {
	if page < 1 {
		page = 1
	}

	summary, err := s.GetAccounts(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	selected := summary.Accounts[0]
	if selectedBankID != "" {
		found := false
		for _, a := range summary.Accounts {
			if a.BankID == selectedBankID {
				selected = a
				found = true
				break
			}
		}
		if !found {
			return nil, bank.ErrNotFound
		}
	}

	transactions, totalPages, err := s.transactionsPage(ctx, selected, page)
	if err != nil {
		return nil, err
	}

	return &View{
		Summary:         *summary,
		SelectedAccount: selected,
		Transactions:    transactions,
		Page:            page,
		TotalPages:      totalPages,
	}, nil
}

func (s *Service) transactionsPage(ctx context.Context, account Account, page int) ([]Transaction, int, error) {
	b, err := s.banks.GetBank(ctx, account.BankID)
	if err != nil {
		return nil, 0, err
	}

	accessToken, err := s.encryptor.Decrypt(b.AccessToken)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decrypt access token for bank %s: %w", b.ID, err)
	}

	// The aggregator pages per item, not per account, so paging happens
	// locally after the account filter. Otherwise an item holding several
	// accounts returns short pages and an inflated page count.
	now := time.Now()
	resp, err := s.aggregator.GetTransactions(ctx,
		accessToken,
		now.Add(-transactionsSpan).Format("2006-01-02"),
		now.Format("2006-01-02"),
		transactionsFetchLimit,
		0,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for bank %s: %w", b.ID, err)
	}

	transactions := make([]Transaction, 0, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		if tx.AccountID != account.ID {
			continue
		}
		category := ""
		if len(tx.Category) > 0 {
			category = tx.Category[0]
		}
		transactions = append(transactions, Transaction{
			ID:             tx.TransactionID,
			AccountID:      tx.AccountID,
			Name:           tx.Name,
			Amount:         tx.Amount,
			Date:           tx.Date,
			Pending:        tx.Pending,
			PaymentChannel: tx.PaymentChannel,
			Category:       category,
		})
	}

	totalPages := (len(transactions) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start >= len(transactions) {
		return []Transaction{}, totalPages, nil
	}
	end := start + pageSize
	if end > len(transactions) {
		end = len(transactions)
	}
	return transactions[start:end], totalPages, nil
}

// cachedSummary returns the cached summary or nil. Cache trouble degrades to
// a live fetch, never an error.
func (s *Service) cachedSummary(ctx context.Context, userID string) *Summary {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, AccountsCacheKey(userID))
	if err != nil {
		if !errors.Is(err, redis.ErrMiss) {
			log.Printf("Failed to read dashboard cache for user %s: %v", userID, err)
		}
		return nil
	}

	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		log.Printf("Discarding corrupt dashboard cache entry for user %s: %v", userID, err)
		return nil
	}
	return &summary
}

func (s *Service) storeSummary(ctx context.Context, userID string, summary *Summary) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		log.Printf("Failed to marshal dashboard summary for user %s: %v", userID, err)
		return
	}
	if err := s.cache.Set(ctx, AccountsCacheKey(userID), raw, cacheTTL); err != nil {
		log.Printf("Failed to write dashboard cache for user %s: %v", userID, err)
	}
}

func toAccount(a plaid.Account, item plaid.Item, b *bank.Bank) Account {
	available := decimal.Zero
	if a.Balances.Available.Valid {
		available = a.Balances.Available.Decimal
	}
	return Account{
		ID:               a.AccountID,
		AvailableBalance: available,
		CurrentBalance:   a.Balances.Current,
		InstitutionID:    item.InstitutionID,
		Name:             a.Name,
		OfficialName:     a.OfficialName,
		Mask:             a.Mask,
		Type:             a.Type,
		Subtype:          a.Subtype,
		BankID:           b.ID,
		ShareableID:      b.ShareableID,
	}
}
