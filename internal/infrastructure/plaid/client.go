package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"horizon/internal/shared/config"
)

const (
	defaultTimeout     = 60 * time.Second
	linkTokenPath      = "/link/token/create"
	exchangePath       = "/item/public_token/exchange"
	accountsPath       = "/accounts/get"
	processorTokenPath = "/processor/token/create"
	transactionsPath   = "/transactions/get"
)

// Client handles communication with the bank-data aggregator API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

func NewClient(cfg config.PlaidConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
	}
}

// LinkTokenRequest describes the link flow being authorized: which user it
// is for, what it may access, and the locale of the hosted flow.
type LinkTokenRequest struct {
	ClientID     string   `json:"client_id"`
	Secret       string   `json:"secret"`
	User         LinkUser `json:"user"`
	ClientName   string   `json:"client_name"`
	Products     []string `json:"products"`
	Language     string   `json:"language"`
	CountryCodes []string `json:"country_codes"`
}

type LinkUser struct {
	ClientUserID string `json:"client_user_id"`
}

type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// ExchangeResponse carries the durable credentials for a completed link.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type accountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type AccountsResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// Account is an account as reported by the aggregator.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances carries the account balances. Available is null for account
// types the institution does not report it for.
type Balances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.Decimal     `json:"current"`
	IsoCurrencyCode string              `json:"iso_currency_code"`
}

type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

type processorTokenRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
	Processor   string `json:"processor"`
}

type ProcessorTokenResponse struct {
	ProcessorToken string `json:"processor_token"`
	RequestID      string `json:"request_id"`
}

type transactionsRequest struct {
	ClientID    string             `json:"client_id"`
	Secret      string             `json:"secret"`
	AccessToken string             `json:"access_token"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	Options     transactionOptions `json:"options"`
}

type transactionOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type TransactionsResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	RequestID         string        `json:"request_id"`
}

// Transaction is a transaction as reported by the aggregator. Amount is
// positive for money moving out of the account.
type Transaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Pending        bool            `json:"pending"`
	PaymentChannel string          `json:"payment_channel"`
	Category       []string        `json:"category"`
}

// ErrorResponse is the aggregator's error envelope.
type ErrorResponse struct {
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
}

// CreateLinkToken requests an ephemeral token authorizing a client-side link
// flow for the given user. Single attempt, no retry.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*LinkTokenResponse, error) {
	req := LinkTokenRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		User:         LinkUser{ClientUserID: clientUserID},
		ClientName:   clientName,
		Products:     []string{"auth"},
		Language:     "en",
		CountryCodes: []string{"US"},
	}

	var resp LinkTokenResponse
	if err := c.post(ctx, linkTokenPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken trades the short-lived public token for a durable
// access token and item id.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	req := exchangeRequest{ClientID: c.clientID, Secret: c.secret, PublicToken: publicToken}

	var resp ExchangeResponse
	if err := c.post(ctx, exchangePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccounts fetches the accounts linked under an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	req := accountsRequest{ClientID: c.clientID, Secret: c.secret, AccessToken: accessToken}

	var resp AccountsResponse
	if err := c.post(ctx, accountsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateProcessorToken binds an account under an access token to the named
// payment processor.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (*ProcessorTokenResponse, error) {
	req := processorTokenRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		AccountID:   accountID,
		Processor:   processor,
	}

	var resp ProcessorTokenResponse
	if err := c.post(ctx, processorTokenPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions fetches a page of transactions for an access token within
// the date range, most recent first.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*TransactionsResponse, error) {
	req := transactionsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		StartDate:   startDate,
		EndDate:     endDate,
		Options:     transactionOptions{Count: count, Offset: offset},
	}

	var resp TransactionsResponse
	if err := c.post(ctx, transactionsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("aggregator error (status %d): %s - %s", resp.StatusCode, errResp.ErrorCode, errResp.ErrorMessage)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
