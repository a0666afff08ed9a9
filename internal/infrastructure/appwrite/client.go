package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"horizon/internal/shared/config"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned when the backend rejects the caller's
// credentials, including absent or expired session secrets.
var ErrUnauthorized = errors.New("appwrite: unauthorized")

// Client talks to the Appwrite identity/document backend. A client operates
// in exactly one of two modes: admin (project API key, used for document
// management and account/session creation) or session (a single request's
// session secret, used for "who am I" and session deletion).
type Client struct {
	httpClient *http.Client
	endpoint   string
	project    string
	apiKey     string
	session    string
}

// NewAdminClient returns a client operating with the project API key.
func NewAdminClient(cfg config.IdentityConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   cfg.Endpoint,
		project:    cfg.Project,
		apiKey:     cfg.APIKey,
	}
}

// NewSessionClient returns a client operating under the given session secret.
func NewSessionClient(cfg config.IdentityConfig, sessionSecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   cfg.Endpoint,
		project:    cfg.Project,
		session:    sessionSecret,
	}
}

// Account is an identity account on the backend.
type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an authenticated session. Secret is only populated on creation.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// DocumentList is a page of documents from a collection listing.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// QueryEqual builds an equality filter for document listings.
func QueryEqual(attribute string, value string) string {
	q, _ := json.Marshal(map[string]any{
		"method":    "equal",
		"attribute": attribute,
		"values":    []string{value},
	})
	return string(q)
}

// CreateAccount registers a new identity account.
func (c *Client) CreateAccount(ctx context.Context, accountID, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   accountID,
		"email":    email,
		"password": password,
		"name":     name,
	}

	var account Account
	if err := c.do(ctx, http.MethodPost, "/account", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateEmailSession exchanges email/password credentials for a session.
func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetAccount resolves the account behind the client's session secret.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/account", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteCurrentSession invalidates the client's session server-side.
func (c *Client) DeleteCurrentSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil)
}

// CreateDocument creates a document in the given collection.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}

	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	var doc json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments lists documents in a collection, optionally filtered.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*DocumentList, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	if len(queries) > 0 {
		values := url.Values{}
		for _, q := range queries {
			values.Add("queries[]", q)
		}
		path += "?" + values.Encode()
	}

	var list DocumentList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp apiError
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("appwrite error (status %d, type %s): %s", resp.StatusCode, errResp.Type, errResp.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
