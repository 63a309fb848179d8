// Package session holds per-user conversation state for the bot's
// multi-step flows. A user has at most one active session across all
// flows; starting any flow replaces whatever was there before, so
// free-text routing is a single deterministic lookup.
package session

import (
	"context"

	"github.com/shopspring/decimal"
)

// Flow identifies which conversation a session belongs to.
type Flow string

const (
	// FlowSell is the sell-crypto conversation.
	FlowSell Flow = "sell"
	// FlowVerify is the payout-account verification conversation.
	FlowVerify Flow = "verify"
)

// SellStep enumerates the sell conversation steps.
type SellStep string

const (
	// SellAwaitingRefundAddress waits for the user's refund wallet address.
	SellAwaitingRefundAddress SellStep = "awaiting_refund_address"
	// SellAwaitingAmount waits for the amount of crypto to sell.
	SellAwaitingAmount SellStep = "awaiting_amount"
	// SellConfirming waits for the user to confirm or cancel the trade.
	SellConfirming SellStep = "confirming"
)

// VerifyStep enumerates the verification conversation steps.
type VerifyStep string

const (
	// VerifyAwaitingAccountNumber waits for the bank account number.
	VerifyAwaitingAccountNumber VerifyStep = "awaiting_account_number"
	// VerifyAwaitingConfirmation waits for the user to confirm the resolved account.
	VerifyAwaitingConfirmation VerifyStep = "awaiting_confirmation"
)

// SellState is the staged data of one sell conversation. Fields past the
// current step are zero until the step that sets them has completed.
type SellState struct {
	Step            SellStep        `json:"step"`
	Token           string          `json:"token"`
	Chain           string          `json:"chain"`
	ChainName       string          `json:"chain_name"`
	RefundAddress   string          `json:"refund_address,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"rate"`
	ReceivingAmount decimal.Decimal `json:"receiving_amount"`
}

// VerifyState is the staged data of one verification conversation.
type VerifyState struct {
	Step          VerifyStep `json:"step"`
	BankName      string     `json:"bank_name"`
	BankCode      string     `json:"bank_code"`
	AccountNumber string     `json:"account_number,omitempty"`
	AccountName   string     `json:"account_name,omitempty"`
}

// Session is the tagged per-user conversation state. Exactly one of Sell
// or Verify is non-nil, matching Flow.
type Session struct {
	Flow   Flow         `json:"flow"`
	Sell   *SellState   `json:"sell,omitempty"`
	Verify *VerifyState `json:"verify,omitempty"`
}

// NewSell starts a sell session at the refund-address step.
func NewSell(token, chain, chainName string) *Session {
	return &Session{
		Flow: FlowSell,
		Sell: &SellState{
			Step:      SellAwaitingRefundAddress,
			Token:     token,
			Chain:     chain,
			ChainName: chainName,
		},
	}
}

// NewVerify starts a verification session at the account-number step.
func NewVerify(bankName, bankCode string) *Session {
	return &Session{
		Flow: FlowVerify,
		Verify: &VerifyState{
			Step:     VerifyAwaitingAccountNumber,
			BankName: bankName,
			BankCode: bankCode,
		},
	}
}

// Store persists sessions keyed by Telegram user id. Implementations must
// treat entries older than the configured TTL as absent and make Delete a
// no-op for missing keys.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, bool, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}
