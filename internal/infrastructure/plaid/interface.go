package plaid

import (
	"context"
)

// ClientInterface defines the methods required from the aggregator client
type ClientInterface interface {
	CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (*ProcessorTokenResponse, error)
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string, count, offset int) (*TransactionsResponse, error)
}
