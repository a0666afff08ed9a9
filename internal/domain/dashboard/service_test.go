package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/redis"
)

// MockAggregator implements plaid.ClientInterface
type MockAggregator struct {
	GetAccountsFunc     func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	GetTransactionsFunc func(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error)
	accountsCalls       int
}

func (m *MockAggregator) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*plaid.LinkTokenResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *MockAggregator) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *MockAggregator) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	m.accountsCalls++
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{}, nil
}

func (m *MockAggregator) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (*plaid.ProcessorTokenResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *MockAggregator) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, accessToken, startDate, endDate, count, offset)
	}
	return &plaid.TransactionsResponse{}, nil
}

// MockBankRepo implements bank.Repository
type MockBankRepo struct {
	banks []*bank.Bank
}

func (m *MockBankRepo) Create(ctx context.Context, params bank.CreateBankParams) (*bank.Bank, error) {
	return nil, errors.New("not implemented")
}

func (m *MockBankRepo) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	var out []*bank.Bank
	for _, b := range m.banks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBankRepo) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	for _, b := range m.banks {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bank.ErrNotFound
}

func (m *MockBankRepo) ListByAccountID(ctx context.Context, accountID string) ([]*bank.Bank, error) {
	var out []*bank.Bank
	for _, b := range m.banks {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

// MockCache implements Cache
type MockCache struct {
	entries map[string][]byte
	sets    int
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, ok := m.entries[key]; ok {
		return val, nil
	}
	return nil, redis.ErrMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[key] = value
	m.sets++
	return nil
}

func testEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.NewEncryptor("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("failed to build encryptor: %v", err)
	}
	return enc
}

func encryptToken(t *testing.T, token string) string {
	t.Helper()
	out, err := testEncryptor(t).Encrypt(token)
	if err != nil {
		t.Fatalf("failed to encrypt token: %v", err)
	}
	return out
}

func nullDecimal(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func twoBankFixture(t *testing.T) (*MockBankRepo, *MockAggregator) {
	t.Helper()
	repo := &MockBankRepo{
		banks: []*bank.Bank{
			{ID: "bank-1", UserID: "user-1", AccountID: "acct-1", AccessToken: encryptToken(t, "access-token-1"), ShareableID: "c2hhcmUtMQ=="},
			{ID: "bank-2", UserID: "user-1", AccountID: "acct-2", AccessToken: encryptToken(t, "access-token-2"), ShareableID: "c2hhcmUtMg=="},
		},
	}
	aggregator := &MockAggregator{
		GetAccountsFunc: func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
			switch accessToken {
			case "access-token-1":
				return &plaid.AccountsResponse{
					Accounts: []plaid.Account{{
						AccountID: "acct-1",
						Name:      "Checking",
						Balances:  plaid.Balances{Available: nullDecimal(90), Current: decimal.NewFromInt(100)},
					}},
					Item: plaid.Item{ItemID: "item-1", InstitutionID: "ins-1"},
				}, nil
			case "access-token-2":
				return &plaid.AccountsResponse{
					Accounts: []plaid.Account{{
						AccountID: "acct-2",
						Name:      "Savings",
						Balances:  plaid.Balances{Current: decimal.NewFromInt(250)},
					}},
					Item: plaid.Item{ItemID: "item-2", InstitutionID: "ins-2"},
				}, nil
			default:
				return nil, errors.New("unknown access token")
			}
		},
	}
	return repo, aggregator
}

func testUser() *user.User {
	return &user.User{ID: "user-1", FirstName: "Ada", LastName: "Lovelace"}
}

func TestGetAccounts_NoBanks(t *testing.T) {
	svc := NewService(bank.NewService(&MockBankRepo{}), &MockAggregator{}, testEncryptor(t), nil)

	_, err := svc.GetAccounts(context.Background(), "user-1")
	if !errors.Is(err, ErrNoAccounts) {
		t.Errorf("expected ErrNoAccounts, got %v", err)
	}
}

func TestGetAccounts_AggregatesBalances(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	cache := &MockCache{}
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), cache)

	summary, err := svc.GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalBanks != 2 {
		t.Errorf("TotalBanks = %d, want 2", summary.TotalBanks)
	}
	if len(summary.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(summary.Accounts))
	}
	if !summary.TotalCurrentBalance.Equal(decimal.NewFromInt(350)) {
		t.Errorf("TotalCurrentBalance = %s, want 350", summary.TotalCurrentBalance)
	}
	if summary.Accounts[0].BankID != "bank-1" || summary.Accounts[0].InstitutionID != "ins-1" {
		t.Errorf("unexpected first account %+v", summary.Accounts[0])
	}
	if !summary.Accounts[0].AvailableBalance.Equal(decimal.NewFromInt(90)) {
		t.Errorf("AvailableBalance = %s, want 90", summary.Accounts[0].AvailableBalance)
	}
	// Null available balance is reported as zero.
	if !summary.Accounts[1].AvailableBalance.IsZero() {
		t.Errorf("AvailableBalance = %s, want 0", summary.Accounts[1].AvailableBalance)
	}
	if cache.sets != 1 {
		t.Errorf("expected the summary to be cached once, got %d writes", cache.sets)
	}
}

func TestGetAccounts_ServesFromCache(t *testing.T) {
	cached, _ := json.Marshal(&Summary{
		Accounts:   []Account{{ID: "acct-1", BankID: "bank-1"}},
		TotalBanks: 1,
	})
	cache := &MockCache{entries: map[string][]byte{AccountsCacheKey("user-1"): cached}}
	aggregator := &MockAggregator{}
	svc := NewService(bank.NewService(&MockBankRepo{}), aggregator, testEncryptor(t), cache)

	summary, err := svc.GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalBanks != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if aggregator.accountsCalls != 0 {
		t.Errorf("cache hit should not reach the aggregator, got %d calls", aggregator.accountsCalls)
	}
}

// interleavedTransactions returns n acct-1 transactions (tx-1..tx-n), each
// followed by one for a sibling account on the same item.
func interleavedTransactions(n int) []plaid.Transaction {
	var txs []plaid.Transaction
	for i := 1; i <= n; i++ {
		txs = append(txs, plaid.Transaction{
			TransactionID: fmt.Sprintf("tx-%d", i),
			AccountID:     "acct-1",
			Name:          "Coffee",
			Amount:        decimal.NewFromInt(4),
			Date:          "2026-08-27",
			Category:      []string{"Food and Drink"},
		})
		txs = append(txs, plaid.Transaction{
			TransactionID: fmt.Sprintf("other-%d", i),
			AccountID:     "acct-other",
			Name:          "Unrelated",
		})
	}
	return txs
}

func TestCompose_DefaultsToFirstAccount(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	aggregator.GetTransactionsFunc = func(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error) {
		txs := interleavedTransactions(25)
		return &plaid.TransactionsResponse{Transactions: txs, TotalTransactions: len(txs)}, nil
	}
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), nil)

	view, err := svc.Compose(context.Background(), testUser(), "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.SelectedAccount.BankID != "bank-1" {
		t.Errorf("selected %q, want the first account", view.SelectedAccount.BankID)
	}
	if len(view.Transactions) != 10 || view.Transactions[0].ID != "tx-1" {
		t.Errorf("unexpected transactions %+v", view.Transactions)
	}
	if view.Transactions[0].Category != "Food and Drink" {
		t.Errorf("unexpected category %q", view.Transactions[0].Category)
	}
	if view.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", view.TotalPages)
	}
}

func TestCompose_PagesAfterAccountFilter(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	aggregator.GetTransactionsFunc = func(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error) {
		txs := interleavedTransactions(12)
		return &plaid.TransactionsResponse{Transactions: txs, TotalTransactions: len(txs)}, nil
	}
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), nil)

	// 12 of the item's 24 transactions belong to the selected account, so
	// page 2 holds the last 2 and the sibling account inflates nothing.
	view, err := svc.Compose(context.Background(), testUser(), "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", view.TotalPages)
	}
	if len(view.Transactions) != 2 {
		t.Fatalf("expected a full second page of 2, got %d", len(view.Transactions))
	}
	if view.Transactions[0].ID != "tx-11" || view.Transactions[1].ID != "tx-12" {
		t.Errorf("unexpected page %+v", view.Transactions)
	}
	for _, tx := range view.Transactions {
		if tx.AccountID != "acct-1" {
			t.Errorf("transaction %q belongs to %q, want acct-1", tx.ID, tx.AccountID)
		}
	}

	// A page past the end renders empty, not an error.
	view, err = svc.Compose(context.Background(), testUser(), "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Transactions) != 0 || view.TotalPages != 2 {
		t.Errorf("out-of-range page = %+v (TotalPages %d)", view.Transactions, view.TotalPages)
	}
}

func TestCompose_SelectsRequestedBank(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), nil)

	view, err := svc.Compose(context.Background(), testUser(), "bank-2", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.SelectedAccount.BankID != "bank-2" || view.SelectedAccount.Name != "Savings" {
		t.Errorf("unexpected selected account %+v", view.SelectedAccount)
	}
}

func TestCompose_UnknownBankID(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), nil)

	_, err := svc.Compose(context.Background(), testUser(), "bank-unknown", 1)
	if !errors.Is(err, bank.ErrNotFound) {
		t.Errorf("expected bank.ErrNotFound, got %v", err)
	}
}

func TestCompose_NoAccounts(t *testing.T) {
	svc := NewService(bank.NewService(&MockBankRepo{}), &MockAggregator{}, testEncryptor(t), nil)

	_, err := svc.Compose(context.Background(), testUser(), "", 1)
	if !errors.Is(err, ErrNoAccounts) {
		t.Errorf("expected ErrNoAccounts, got %v", err)
	}
}

func TestGetAccount_ByBankID(t *testing.T) {
	repo, aggregator := twoBankFixture(t)
	svc := NewService(bank.NewService(repo), aggregator, testEncryptor(t), nil)

	account, err := svc.GetAccount(context.Background(), "bank-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != "acct-2" || account.Name != "Savings" {
		t.Errorf("unexpected account %+v", account)
	}
}
