package paycrest

import (
	"github.com/shopspring/decimal"
)

// Institution is a payout destination offered by the aggregator.
type Institution struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"` // "bank" or "mobile_money"
}

// RateQuery parameterizes a rate lookup. Zero Amount defaults to 1 and an
// empty Currency defaults to the client's configured corridor.
type RateQuery struct {
	Token      string
	Amount     decimal.Decimal
	Currency   string
	ProviderID string
}

// VerifyAccountRequest resolves an account number to its holder's name.
type VerifyAccountRequest struct {
	Institution       string `json:"institution"`
	AccountIdentifier string `json:"accountIdentifier"`
}

// Recipient is the payout destination of an order.
type Recipient struct {
	Institution       string `json:"institution"`
	AccountIdentifier string `json:"accountIdentifier"`
	AccountName       string `json:"accountName"`
	Memo              string `json:"memo"`
}

// OrderRequest asks the aggregator to open an exchange order.
type OrderRequest struct {
	Amount        decimal.Decimal
	Rate          decimal.Decimal
	Network       string
	Token         string
	Recipient     Recipient
	ReturnAddress string
	Reference     string
}

// Order is a created exchange order with its deposit instructions.
type Order struct {
	ID             string `json:"id"`
	Amount         string `json:"amount"`
	Token          string `json:"token"`
	Network        string `json:"network"`
	ReceiveAddress string `json:"receiveAddress"`
	ValidUntil     string `json:"validUntil"`
	SenderFee      string `json:"senderFee"`
	TransactionFee string `json:"transactionFee"`
	Reference      string `json:"reference"`
}
