package appwrite

import (
	"context"
	"encoding/json"
)

// AdminInterface defines the admin-mode operations backed by the project API key
type AdminInterface interface {
	CreateAccount(ctx context.Context, accountID, email, password, name string) (*Account, error)
	CreateEmailSession(ctx context.Context, email, password string) (*Session, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error)
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*DocumentList, error)
}

// SessionInterface defines the operations scoped to one request's session secret
type SessionInterface interface {
	GetAccount(ctx context.Context) (*Account, error)
	DeleteCurrentSession(ctx context.Context) error
}

var (
	_ AdminInterface   = (*Client)(nil)
	_ SessionInterface = (*Client)(nil)
)
