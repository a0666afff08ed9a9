package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"horizon/internal/shared/config"
)

const (
	defaultTimeout = 30 * time.Second
	tokenPath      = "/token"
	customersPath  = "/customers"
)

// Client handles communication with the payment-rail API. Requests are
// authorized with a client-credentials bearer token, refreshed on expiry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ ClientInterface = (*Client)(nil)

func NewClient(cfg config.DwollaConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    cfg.BaseURL,
		key:        cfg.Key,
		secret:     cfg.Secret,
	}
}

// CreateCustomerParams is the personal customer profile required by the
// payment rail before funding sources can be attached.
type CreateCustomerParams struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// CreateFundingSourceParams binds a processor token to a customer as a named
// funding source.
type CreateFundingSourceParams struct {
	CustomerID     string
	ProcessorToken string
	Name           string
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// CreateCustomer registers a personal customer and returns the created
// resource URL.
func (c *Client) CreateCustomer(ctx context.Context, params CreateCustomerParams) (string, error) {
	if params.Type == "" {
		params.Type = "personal"
	}
	return c.postForLocation(ctx, customersPath, params)
}

// CreateFundingSource attaches a bank account to a customer via a processor
// token and returns the funding-source resource URL.
func (c *Client) CreateFundingSource(ctx context.Context, params CreateFundingSourceParams) (string, error) {
	path := fmt.Sprintf("%s/%s/funding-sources", customersPath, params.CustomerID)
	body := map[string]string{
		"plaidToken": params.ProcessorToken,
		"name":       params.Name,
	}
	return c.postForLocation(ctx, path, body)
}

// CustomerIDFromURL extracts the customer id from a customer resource URL.
func CustomerIDFromURL(customerURL string) string {
	parts := strings.Split(strings.TrimSuffix(customerURL, "/"), "/")
	return parts[len(parts)-1]
}

// postForLocation issues an authenticated POST and returns the Location
// header of the created resource, which is how the payment rail reports
// creations.
func (c *Client) postForLocation(ctx context.Context, path string, body any) (string, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Accept", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("payment rail error (status %d, code %s): %s", resp.StatusCode, errResp.Code, errResp.Message)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("created resource missing Location header")
	}
	return location, nil
}

// bearerToken returns a cached client-credentials token, fetching a fresh one
// when the cached token is within a minute of expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.token, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, form)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var tok tokenResponse
	if err := json.Unmarshal(respBody, &tok); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}
