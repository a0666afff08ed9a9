package dwolla

import (
	"context"
)

// ClientInterface defines the methods required from the payment-rail client
type ClientInterface interface {
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (string, error)
	CreateFundingSource(ctx context.Context, params CreateFundingSourceParams) (string, error)
}
