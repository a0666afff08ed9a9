package bank

import "time"

// Bank is the local record of a completed bank link. ItemID and AccountID
// identify the connection and account on the aggregator; AccessToken is the
// durable credential for data pulls; FundingSourceURL points at the payment
// rail's funding-source resource; ShareableID is the encrypted form of the
// account id, safe to expose to clients.
type Bank struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ItemID           string    `json:"bankId"`
	AccountID        string    `json:"accountId"`
	AccessToken      string    `json:"-"`
	FundingSourceURL string    `json:"fundingSourceUrl"`
	ShareableID      string    `json:"shareableId"`
	CreatedAt        time.Time `json:"createdAt"`
}

type CreateBankParams struct {
	UserID           string
	ItemID           string
	AccountID        string
	AccessToken      string
	FundingSourceURL string
	ShareableID      string
}
