// Package menu renders every outbound message of the bot: text, parse
// mode, and inline button layout. Renderers are pure functions of
// application state so flows and tests can inspect replies without a
// live transport.
package menu

import tele "gopkg.in/telebot.v4"

// Reply is a rendered outbound message.
type Reply struct {
	Text      string
	Markup    *tele.ReplyMarkup
	ParseMode string
}

// Callback keys shared between button construction here and handler
// registration in the bot wiring.
const (
	KeyMainMenu = "main_menu"
	KeyBuy      = "buy"
	KeySell     = "sell"
	KeyStats    = "stats"
	KeyVerify   = "verify"
	KeyHelp     = "help"

	KeySellUSDT     = "sell_usdt"
	KeySellUSDC     = "sell_usdc"
	KeyChangeRefund = "change_refund"
	KeyConfirmSell  = "confirm_sell"
	KeyCancelSell   = "cancel_sell"

	KeyVerAcc             = "ver_acc"
	KeySelectBank         = "select_bank"
	KeyBanksPage          = "banks_page"
	KeyPageInfo           = "page_info"
	KeyConfirmAccount     = "confirm_account"
	KeyCancelVerification = "cancel_verification"
	KeyRemAcc             = "rem_acc"
)

// TokenKey returns the chain-selection callback key for a token ticker.
func TokenKey(token string) string {
	if token == "USDC" {
		return KeySellUSDC
	}
	return KeySellUSDT
}
