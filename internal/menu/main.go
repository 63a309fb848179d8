package menu

import (
	"fmt"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	kb "github.com/arkade-01/p2pbot/internal/telegram/keyboard"
)

func mainMenuRow() []kb.InlineBtn {
	return []kb.InlineBtn{{Text: "Return to Main Menu", Unique: KeyMainMenu}}
}

// Welcome renders the main menu with a greeting variant and the live rate line.
// An empty rate renders as "N/A" rather than hiding the line.
func Welcome(firstName string, isNewUser, isReturn bool, rate string) *Reply {
	if firstName == "" {
		firstName = "there"
	}

	var greeting string
	switch {
	case isReturn:
		greeting = fmt.Sprintf("🚀 Welcome back, %s!\n\n", firstName)
	case isNewUser:
		greeting = fmt.Sprintf("🎉 Hello %s! Welcome to P2P Crypto Bot!\n\n", firstName)
	default:
		greeting = fmt.Sprintf("👋 Hey %s! Good to see you again!\n\n", firstName)
	}

	if rate == "" {
		rate = "N/A"
	}

	text := greeting +
		"💰 Your gateway to seamless crypto-fiat trading:\n\n" +
		"🟢 **Buy Crypto** - Purchase crypto with your local currency\n" +
		"🔴 **Sell Crypto** - Convert crypto to fiat instantly\n" +
		"📊 **Track Stats** - Monitor your trading activity\n" +
		"✅ **Get Verified** - Add your bank details to start trading\n\n" +
		fmt.Sprintf("The Current Rate is ₦%s per $1 USDT\n\n", rate) +
		"Ready to start trading? Choose an option below:"

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{
			{Text: "🟢 Buy Crypto", Unique: KeyBuy},
			{Text: "🔴 Sell Crypto", Unique: KeySell},
		},
		[]kb.InlineBtn{
			{Text: "📊 My Stats", Unique: KeyStats},
			{Text: "✅ Verify Account", Unique: KeyVerify},
		},
		[]kb.InlineBtn{{Text: "❓ Help", Unique: KeyHelp}},
	)

	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// Help renders the support contact message.
func Help() *Reply {
	return &Reply{
		Text:      "Reach out to @arkade\\_01 if you need help",
		Markup:    kb.InlineButtonsRows(mainMenuRow()),
		ParseMode: tele.ModeMarkdown,
	}
}

// Buy renders the placeholder for the unreleased buy flow.
func Buy() *Reply {
	return &Reply{
		Text:      "Coming Soon.....!",
		Markup:    kb.InlineButtonsRows(mainMenuRow()),
		ParseMode: tele.ModeMarkdown,
	}
}

// Stats renders cumulative trading statistics.
func Stats(tradeCount int64, tradeVolume decimal.Decimal) *Reply {
	text := "Check out your trading stats since you got here\n\n" +
		fmt.Sprintf("📈 Your Stats: %d trades completed | $%s total volume",
			tradeCount, tradeVolume.StringFixed(2))
	return &Reply{
		Text:      text,
		Markup:    kb.InlineButtonsRows(mainMenuRow()),
		ParseMode: tele.ModeMarkdown,
	}
}
