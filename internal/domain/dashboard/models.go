package dashboard

import (
	"github.com/shopspring/decimal"
)

// Account is one linked account enriched with aggregator balances. BankID is
// the local bank-link record that owns it.
type Account struct {
	ID               string          `json:"id"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	InstitutionID    string          `json:"institutionId"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"officialName"`
	Mask             string          `json:"mask"`
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype"`
	BankID           string          `json:"bankId"`
	ShareableID      string          `json:"shareableId"`
}

// Summary aggregates every linked account for a user.
type Summary struct {
	Accounts            []Account       `json:"accounts"`
	TotalBanks          int             `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal `json:"totalCurrentBalance"`
}

// Transaction is one account transaction as shown on the dashboard. Amount
// is positive for money leaving the account.
type Transaction struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"accountId"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Pending        bool            `json:"pending"`
	PaymentChannel string          `json:"paymentChannel"`
	Category       string          `json:"category"`
}

// View is the composed dashboard: the account summary, the selected account
// and a page of its transactions.
type View struct {
	Summary         Summary       `json:"summary"`
	SelectedAccount Account       `json:"selectedAccount"`
	Transactions    []Transaction `json:"transactions"`
	Page            int           `json:"page"`
	TotalPages      int           `json:"totalPages"`
}
