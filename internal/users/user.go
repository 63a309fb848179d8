package users

import "github.com/shopspring/decimal"

// User is the persisted profile of a Telegram user.
// Payout fields are empty strings until the account is verified.
type User struct {
	TelegramID      int64           `db:"telegram_id"`
	BankName        string          `db:"bank_name"`
	AccountName     string          `db:"account_name"`
	AccountNumber   string          `db:"account_number"`
	InstitutionCode string          `db:"institution_code"`
	WalletAddress   string          `db:"wallet_address"`
	TradeVolume     decimal.Decimal `db:"trade_volume"`
	TradeCount      int64           `db:"trade_count"`
}

// HasPayoutAccount reports whether the user completed account verification.
func (u *User) HasPayoutAccount() bool {
	return u != nil && u.AccountNumber != ""
}

// PayoutAccount groups the fields written by the verify flow.
type PayoutAccount struct {
	BankName        string
	AccountName     string
	AccountNumber   string
	InstitutionCode string
}
