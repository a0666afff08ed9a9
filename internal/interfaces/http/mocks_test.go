package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/link"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/appwrite"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
)

// MockIdentity implements appwrite.AdminInterface
type MockIdentity struct {
	CreateAccountFunc      func(ctx context.Context, accountID, email, password, name string) (*appwrite.Account, error)
	CreateEmailSessionFunc func(ctx context.Context, email, password string) (*appwrite.Session, error)
}

func (m *MockIdentity) CreateAccount(ctx context.Context, accountID, email, password, name string) (*appwrite.Account, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, accountID, email, password, name)
	}
	return &appwrite.Account{ID: "identity-1", Email: email, Name: name}, nil
}

func (m *MockIdentity) CreateEmailSession(ctx context.Context, email, password string) (*appwrite.Session, error) {
	if m.CreateEmailSessionFunc != nil {
		return m.CreateEmailSessionFunc(ctx, email, password)
	}
	return &appwrite.Session{ID: "session-1", UserID: "identity-1", Secret: "secret-1"}, nil
}

func (m *MockIdentity) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	return nil, errors.New("not implemented")
}

func (m *MockIdentity) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error) {
	return nil, errors.New("not implemented")
}

// MockSessionClient implements appwrite.SessionInterface
type MockSessionClient struct {
	GetAccountFunc           func(ctx context.Context) (*appwrite.Account, error)
	DeleteCurrentSessionFunc func(ctx context.Context) error
}

func (m *MockSessionClient) GetAccount(ctx context.Context) (*appwrite.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx)
	}
	return &appwrite.Account{ID: "identity-1"}, nil
}

func (m *MockSessionClient) DeleteCurrentSession(ctx context.Context) error {
	if m.DeleteCurrentSessionFunc != nil {
		return m.DeleteCurrentSessionFunc(ctx)
	}
	return nil
}

// MockRail implements dwolla.ClientInterface
type MockRail struct {
	CreateCustomerFunc      func(ctx context.Context, params dwolla.CreateCustomerParams) (string, error)
	CreateFundingSourceFunc func(ctx context.Context, params dwolla.CreateFundingSourceParams) (string, error)
}

func (m *MockRail) CreateCustomer(ctx context.Context, params dwolla.CreateCustomerParams) (string, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}
	return "https://rail.test/customers/cust-1", nil
}

func (m *MockRail) CreateFundingSource(ctx context.Context, params dwolla.CreateFundingSourceParams) (string, error) {
	if m.CreateFundingSourceFunc != nil {
		return m.CreateFundingSourceFunc(ctx, params)
	}
	return "https://rail.test/funding-sources/fs-1", nil
}

// MockAggregator implements plaid.ClientInterface
type MockAggregator struct {
	CreateLinkTokenFunc      func(ctx context.Context, clientUserID, clientName string) (*plaid.LinkTokenResponse, error)
	ExchangePublicTokenFunc  func(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error)
	GetAccountsFunc          func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	CreateProcessorTokenFunc func(ctx context.Context, accessToken, accountID, processor string) (*plaid.ProcessorTokenResponse, error)
	GetTransactionsFunc      func(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error)
}

func (m *MockAggregator) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*plaid.LinkTokenResponse, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, clientUserID, clientName)
	}
	return &plaid.LinkTokenResponse{LinkToken: "link-sandbox-token"}, nil
}

func (m *MockAggregator) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken)
	}
	return &plaid.ExchangeResponse{AccessToken: "access-sandbox-token", ItemID: "item-1"}, nil
}

func (m *MockAggregator) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{
		Accounts: []plaid.Account{{AccountID: "acct-1", Name: "Checking"}},
		Item:     plaid.Item{ItemID: "item-1", InstitutionID: "ins-1"},
	}, nil
}

func (m *MockAggregator) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (*plaid.ProcessorTokenResponse, error) {
	if m.CreateProcessorTokenFunc != nil {
		return m.CreateProcessorTokenFunc(ctx, accessToken, accountID, processor)
	}
	return &plaid.ProcessorTokenResponse{ProcessorToken: "processor-sandbox-token"}, nil
}

func (m *MockAggregator) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*plaid.TransactionsResponse, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, accessToken, startDate, endDate, count, offset)
	}
	return &plaid.TransactionsResponse{}, nil
}

// MockUserRepo implements user.Repository
type MockUserRepo struct {
	CreateFunc          func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIdentityIDFunc func(ctx context.Context, identityID string) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &user.User{
		ID:                "user-1",
		IdentityID:        params.IdentityID,
		Email:             params.Email,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		DwollaCustomerID:  params.DwollaCustomerID,
		DwollaCustomerURL: params.DwollaCustomerURL,
	}, nil
}

func (m *MockUserRepo) GetByIdentityID(ctx context.Context, identityID string) (*user.User, error) {
	if m.GetByIdentityIDFunc != nil {
		return m.GetByIdentityIDFunc(ctx, identityID)
	}
	return &user.User{ID: "user-1", IdentityID: identityID, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", DwollaCustomerID: "cust-1"}, nil
}

// MockBankRepo implements bank.Repository
type MockBankRepo struct {
	CreateFunc          func(ctx context.Context, params bank.CreateBankParams) (*bank.Bank, error)
	ListByUserIDFunc    func(ctx context.Context, userID string) ([]*bank.Bank, error)
	GetByIDFunc         func(ctx context.Context, id string) (*bank.Bank, error)
	ListByAccountIDFunc func(ctx context.Context, accountID string) ([]*bank.Bank, error)
}

func (m *MockBankRepo) Create(ctx context.Context, params bank.CreateBankParams) (*bank.Bank, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &bank.Bank{
		ID:               "bank-1",
		UserID:           params.UserID,
		ItemID:           params.ItemID,
		AccountID:        params.AccountID,
		AccessToken:      params.AccessToken,
		FundingSourceURL: params.FundingSourceURL,
		ShareableID:      params.ShareableID,
	}, nil
}

func (m *MockBankRepo) ListByUserID(ctx context.Context, userID string) ([]*bank.Bank, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBankRepo) GetByID(ctx context.Context, id string) (*bank.Bank, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, bank.ErrNotFound
}

func (m *MockBankRepo) ListByAccountID(ctx context.Context, accountID string) ([]*bank.Bank, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

// testEnv bundles the services a handler under test depends on, all backed
// by the mocks above.
type testEnv struct {
	identity      *MockIdentity
	sessionClient *MockSessionClient
	rail          *MockRail
	aggregator    *MockAggregator
	userRepo      *MockUserRepo
	bankRepo      *MockBankRepo

	users      *user.Service
	banks      *bank.Service
	links      *link.Service
	dashboards *dashboard.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		identity:      &MockIdentity{},
		sessionClient: &MockSessionClient{},
		rail:          &MockRail{},
		aggregator:    &MockAggregator{},
		userRepo:      &MockUserRepo{},
		bankRepo:      &MockBankRepo{},
	}

	encryptor, err := crypto.NewEncryptor("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("failed to build encryptor: %v", err)
	}

	sessions := func(sessionSecret string) appwrite.SessionInterface {
		return env.sessionClient
	}

	env.users = user.NewService(env.identity, sessions, env.rail, env.userRepo)
	env.banks = bank.NewService(env.bankRepo)
	env.links = link.NewService(env.aggregator, env.rail, env.banks, encryptor, nil,
		config.LinkConfig{AccountSelection: config.AccountSelectionFirst})
	env.dashboards = dashboard.NewService(env.banks, env.aggregator, encryptor, nil)

	return env
}

// rebuildWithRejectPolicy swaps the env's link service for one running under
// the reject-if-multiple account selection policy.
func rebuildWithRejectPolicy(t *testing.T, env *testEnv) *testEnv {
	t.Helper()
	encryptor, err := crypto.NewEncryptor("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("failed to build encryptor: %v", err)
	}
	env.links = link.NewService(env.aggregator, env.rail, env.banks, encryptor, nil,
		config.LinkConfig{AccountSelection: config.AccountSelectionRejectIfMultiple})
	return env
}

// withSession attaches a session secret the way the session middleware would.
func withSession(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionSecretKey, "secret-1")
	return r.WithContext(ctx)
}
