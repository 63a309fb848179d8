package menu

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/arkade-01/p2pbot/internal/market"
	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	kb "github.com/arkade-01/p2pbot/internal/telegram/keyboard"
)

// AccountRequired gates the sell flow behind account verification.
func AccountRequired() *Reply {
	return &Reply{
		Text: "You need to set your account number to trade",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "✅ Verify Account", Unique: KeyVerify}},
			mainMenuRow(),
		),
		ParseMode: tele.ModeMarkdown,
	}
}

// SellIntro renders the sell-flow entry with token selection.
func SellIntro() *Reply {
	text := "🔴 **Sell Crypto**\n\n" +
		"Ready to convert your crypto to fiat? Just follow these steps:\n\n" +
		"1️⃣ **Select Crypto**: Choose the cryptocurrency you want to sell (USDC & USDT supported).\n" +
		"2️⃣ **Set Amount**: Specify how much crypto you want to sell.\n" +
		"3️⃣ **Choose Payment Method**: Select how you want to receive your payment.\n" +
		"4️⃣ **Confirm Trade**: Review the details and confirm your trade.\n\n" +
		"💡 **Note**: Ensure you have sufficient crypto balance in your wallet"

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{
			{Text: "💰 Sell USDT", Unique: KeySellUSDT},
			{Text: "💰 Sell USDC", Unique: KeySellUSDC},
		},
		mainMenuRow(),
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// ChainMenu renders the network selection for a token. Unsupported chains
// are still listed so the user gets a definite answer when picking one.
func ChainMenu(token string) *Reply {
	var btns []kb.InlineBtn
	for _, l := range market.TokenListings(token) {
		btns = append(btns, kb.InlineBtn{
			Text:   l.Icon + " " + l.Name,
			Unique: TokenKey(token),
			Data:   l.ID,
		})
	}

	rows := kb.ChunkBtns(btns, 2)
	rows = append(rows, []kb.InlineBtn{
		{Text: "← Back to Sell Menu", Unique: KeySell},
		{Text: "Return to Main Menu", Unique: KeyMainMenu},
	})

	return &Reply{
		Text:      fmt.Sprintf("💰 **Selling %s**\n\nPlease select the blockchain network:", token),
		Markup:    kb.InlineButtonsRows(rows...),
		ParseMode: tele.ModeMarkdown,
	}
}

// ChainUnsupported names the refused token/chain restriction.
func ChainUnsupported(token string) *Reply {
	return &Reply{
		Text: fmt.Sprintf("❌ This chain is currently not supported for %s", token),
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Chain Selection", Unique: TokenKey(token)}},
			[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		),
		ParseMode: tele.ModeMarkdown,
	}
}

// AskRefundAddress prompts for the refund wallet address after chain selection.
func AskRefundAddress(token, chainName string) *Reply {
	text := fmt.Sprintf("💰 **Selling %s on %s**\n\n", token, chainName) +
		"🔒 **Refund Address Required**\n\n" +
		fmt.Sprintf("Please enter your %s wallet address for refunds in case the transaction fails.\n\n", chainName) +
		fmt.Sprintf("⚠️ **Important**: Make sure this is a valid %s address that supports %s.", chainName, token)

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{{Text: "← Back to Chain Selection", Unique: TokenKey(token)}},
		[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		mainMenuRow(),
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// InvalidAddress re-prompts after a malformed refund address.
func InvalidAddress(token string) *Reply {
	return &Reply{
		Text: "❌ Invalid wallet address format. Please enter a valid wallet address:",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Chain Selection", Unique: TokenKey(token)}},
			[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		),
	}
}

// AddressSaved confirms the refund address and asks for the sell amount.
func AddressSaved(st *session.SellState) *Reply {
	text := "✅ **Refund Address Saved**\n\n" +
		fmt.Sprintf("🔒 **Refund Address**: `%s`\n\n", st.RefundAddress) +
		fmt.Sprintf("💰 **Selling %s on %s**\n\n", st.Token, st.ChainName) +
		fmt.Sprintf("Please enter the amount of %s you want to sell:", st.Token)

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{{Text: "🔄 Change Refund Address", Unique: KeyChangeRefund}},
		[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// AskNewRefundAddress re-prompts for the refund address from a later step.
func AskNewRefundAddress() *Reply {
	return &Reply{Text: "Please enter a new refund address:"}
}

// InvalidAmount re-prompts after a non-numeric or non-positive amount.
func InvalidAmount() *Reply {
	return &Reply{
		Text: "❌ Invalid amount. Please enter a valid number:",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		),
	}
}

// RateUnavailable reports a failed rate lookup; the amount step stays open.
func RateUnavailable() *Reply {
	return &Reply{
		Text: "❌ Could not fetch the current rate. Please try the amount again in a moment:",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		),
	}
}

// TradeSummary renders the confirmation prompt with the quoted trade.
func TradeSummary(st *session.SellState) *Reply {
	text := "📋 **Trade Summary**\n\n" +
		fmt.Sprintf("💰 **Token**: %s\n", st.Token) +
		fmt.Sprintf("⛓️ **Chain**: %s\n", st.ChainName) +
		fmt.Sprintf("💵 **Amount**: %s %s\n", st.Amount.String(), st.Token) +
		fmt.Sprintf("🔒 **Refund Address**: `%s`\n", st.RefundAddress) +
		fmt.Sprintf("💵 **Rate**: %s\n", st.Rate.String()) +
		fmt.Sprintf("💵 **Receiving Amount**: %s\n\n", st.ReceivingAmount.String()) +
		"Please confirm this trade:"

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{
			{Text: "✅ Confirm Trade", Unique: KeyConfirmSell},
			{Text: "❌ Cancel", Unique: KeyCancelSell},
		},
		[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// SellSessionExpired asks the user to start the sell flow over.
func SellSessionExpired() *Reply {
	return &Reply{
		Text: "❌ Error: Session expired. Please start over.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Sell Menu", Unique: KeySell}},
		),
	}
}

// OrderCreated renders the deposit instructions of a successful order.
func OrderCreated(st *session.SellState, order *paycrest.Order, expiresInMinutes int) *Reply {
	text := "✅ **Sell Order Created Successfully!**\n\n" +
		"📋 **Order Details:**\n" +
		fmt.Sprintf("🆔 **Order ID**: `%s`\n", order.ID) +
		fmt.Sprintf("💰 **Token**: %s\n", st.Token) +
		fmt.Sprintf("⛓️ **Chain**: %s\n", st.ChainName) +
		fmt.Sprintf("💵 **Amount to Send**: %s %s\n", order.Amount, st.Token) +
		fmt.Sprintf("💵 **You'll Receive**: %s\n", st.ReceivingAmount.String()) +
		fmt.Sprintf("💰 **Sender Fee**: %s %s\n", order.SenderFee, st.Token) +
		fmt.Sprintf("⚡ **Network Fee**: %s %s\n\n", order.TransactionFee, st.Token) +
		"🏦 **Deposit Instructions:**\n" +
		fmt.Sprintf("📍 **Send To**: `%s`\n", order.ReceiveAddress) +
		fmt.Sprintf("⏰ **Expires In**: %d minutes\n", expiresInMinutes) +
		fmt.Sprintf("🔒 **Reference**: `%s`\n\n", order.Reference) +
		"⚠️ **Important:**\n" +
		fmt.Sprintf("• Send EXACTLY %s %s\n", order.Amount, st.Token) +
		fmt.Sprintf("• Use %s network only\n", st.ChainName) +
		"• Complete before expiration time\n" +
		"• Save this information for your records"

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{{Text: "🏠 Main Menu", Unique: KeyMainMenu}},
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// OrderFailed reports a failed order creation; the session stays for retry.
func OrderFailed() *Reply {
	return &Reply{
		Text: "❌ **Order Creation Failed**\n\n" +
			"There was an error processing your sell order. Please try again later.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "🔄 Try Again", Unique: KeyConfirmSell}},
			[]kb.InlineBtn{{Text: "🏠 Main Menu", Unique: KeyMainMenu}},
		),
		ParseMode: tele.ModeMarkdown,
	}
}

// SellCancelled confirms the explicit cancellation.
func SellCancelled() *Reply {
	return &Reply{
		Text: "❌ **Order Cancelled**\n\nYour sell order has been cancelled.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "💰 New Sell Order", Unique: KeySell}},
			[]kb.InlineBtn{{Text: "🏠 Main Menu", Unique: KeyMainMenu}},
		),
		ParseMode: tele.ModeMarkdown,
	}
}
