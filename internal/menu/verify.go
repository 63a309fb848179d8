package menu

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	kb "github.com/arkade-01/p2pbot/internal/telegram/keyboard"
	"github.com/arkade-01/p2pbot/internal/users"
)

const (
	banksPerPage = 8
	banksPerRow  = 2
)

// VerifyMenu renders the verification entry. A user with a saved payout
// account sees it alongside a removal option.
func VerifyMenu(u *users.User) *Reply {
	if u.HasPayoutAccount() {
		text := "✅ **Account Verified**\n\n" +
			fmt.Sprintf("🏦 **Bank**: %s\n", u.BankName) +
			fmt.Sprintf("👤 **Account Name**: %s\n", u.AccountName) +
			fmt.Sprintf("🔢 **Account Number**: `%s`\n\n", u.AccountNumber) +
			"You can update or remove your saved account below."
		markup := kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "🔄 Change Account", Unique: KeyVerAcc}},
			[]kb.InlineBtn{{Text: "🗑️ Remove Account", Unique: KeyRemAcc}},
			mainMenuRow(),
		)
		return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
	}

	text := "🏦 **Account Verification**\n\n" +
		"Verify your bank account to receive payments for your trades.\n\n" +
		"You'll need your bank name and a valid account number."
	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{{Text: "✅ Verify Account", Unique: KeyVerAcc}},
		mainMenuRow(),
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// BankPage is one rendered page of the institution list.
type BankPage struct {
	Page       int
	TotalPages int
	Rows       [][]kb.InlineBtn
}

// PaginateBanks slices the institution list into a page of selection
// buttons plus a navigation row. Out-of-range pages clamp to the nearest
// valid page; an empty list yields a single empty page.
func PaginateBanks(banks []paycrest.Institution, page int) BankPage {
	totalPages := (len(banks) + banksPerPage - 1) / banksPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * banksPerPage
	end := start + banksPerPage
	if end > len(banks) {
		end = len(banks)
	}

	var btns []kb.InlineBtn
	for _, b := range banks[start:end] {
		btns = append(btns, kb.InlineBtn{
			Text:   b.Name,
			Unique: KeySelectBank,
			Data:   b.Code,
		})
	}
	rows := kb.ChunkBtns(btns, banksPerRow)

	var nav []kb.InlineBtn
	if page > 0 {
		nav = append(nav, kb.InlineBtn{
			Text:   "⬅️ Previous",
			Unique: KeyBanksPage,
			Data:   strconv.Itoa(page - 1),
		})
	}
	nav = append(nav, kb.InlineBtn{
		Text:   fmt.Sprintf("📄 %d/%d", page+1, totalPages),
		Unique: KeyPageInfo,
	})
	if page < totalPages-1 {
		nav = append(nav, kb.InlineBtn{
			Text:   "Next ➡️",
			Unique: KeyBanksPage,
			Data:   strconv.Itoa(page + 1),
		})
	}
	rows = append(rows, nav)

	return BankPage{Page: page, TotalPages: totalPages, Rows: rows}
}

// BankList renders a page of the institution list.
func BankList(banks []paycrest.Institution, page int) *Reply {
	p := PaginateBanks(banks, page)
	rows := append(p.Rows, mainMenuRow())
	return &Reply{
		Text:      "🏦 **Select Your Bank**\n\nChoose your bank from the list below:",
		Markup:    kb.InlineButtonsRows(rows...),
		ParseMode: tele.ModeMarkdown,
	}
}

// BankListFailed reports a failed institution fetch.
func BankListFailed() *Reply {
	return &Reply{
		Text: "❌ Could not load the bank list. Please try again later.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "🔄 Try Again", Unique: KeyVerAcc}},
			mainMenuRow(),
		),
	}
}

// AskAccountNumber prompts for the account number after bank selection.
func AskAccountNumber(bankName string) *Reply {
	return &Reply{
		Text: fmt.Sprintf("🏦 **%s**\n\nPlease enter your 10-digit account number:", bankName),
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Bank List", Unique: KeyVerAcc}},
			mainMenuRow(),
		),
		ParseMode: tele.ModeMarkdown,
	}
}

// InvalidAccountNumber re-prompts after a malformed account number.
func InvalidAccountNumber() *Reply {
	return &Reply{
		Text: "❌ Invalid account number. Please enter a valid 10-digit account number:",
	}
}

// VerifyFailed reports a failed account name resolution; the account
// number step stays open.
func VerifyFailed() *Reply {
	return &Reply{
		Text: "❌ Could not verify this account number. Please check it and try again:",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "← Back to Bank List", Unique: KeyVerAcc}},
		),
	}
}

// ConfirmAccount renders the resolved account for confirmation.
func ConfirmAccount(st *session.VerifyState) *Reply {
	text := "🔍 **Confirm Your Account**\n\n" +
		fmt.Sprintf("🏦 **Bank**: %s\n", st.BankName) +
		fmt.Sprintf("👤 **Account Name**: %s\n", st.AccountName) +
		fmt.Sprintf("🔢 **Account Number**: `%s`\n\n", st.AccountNumber) +
		"Is this correct?"

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{
			{Text: "✅ Confirm", Unique: KeyConfirmAccount},
			{Text: "❌ Cancel", Unique: KeyCancelVerification},
		},
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// AccountSaved confirms the stored payout account.
func AccountSaved(st *session.VerifyState) *Reply {
	text := "✅ **Account Verified Successfully!**\n\n" +
		fmt.Sprintf("🏦 **Bank**: %s\n", st.BankName) +
		fmt.Sprintf("👤 **Account Name**: %s\n", st.AccountName) +
		fmt.Sprintf("🔢 **Account Number**: `%s`\n\n", st.AccountNumber) +
		"You can now sell crypto and receive payments to this account."

	markup := kb.InlineButtonsRows(
		[]kb.InlineBtn{{Text: "💰 Sell Crypto", Unique: KeySell}},
		mainMenuRow(),
	)
	return &Reply{Text: text, Markup: markup, ParseMode: tele.ModeMarkdown}
}

// SaveFailed reports a failed account save; the confirmation stays open.
func SaveFailed() *Reply {
	return &Reply{
		Text: "❌ Could not save your account. Please try again.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{
				{Text: "🔄 Try Again", Unique: KeyConfirmAccount},
				{Text: "❌ Cancel", Unique: KeyCancelVerification},
			},
		),
	}
}

// VerificationCancelled confirms the explicit cancellation.
func VerificationCancelled() *Reply {
	return &Reply{
		Text: "❌ **Verification Cancelled**\n\nYour account verification has been cancelled.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "✅ Verify Account", Unique: KeyVerAcc}},
			mainMenuRow(),
		),
		ParseMode: tele.ModeMarkdown,
	}
}

// VerifySessionExpired asks the user to start verification over.
func VerifySessionExpired() *Reply {
	return &Reply{
		Text: "❌ Error: Session expired. Please start over.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "✅ Verify Account", Unique: KeyVerAcc}},
			mainMenuRow(),
		),
	}
}

// AccountRemoved confirms the removal of the saved payout account.
func AccountRemoved() *Reply {
	return &Reply{
		Text: "🗑️ **Account Removed**\n\nYour saved bank account has been removed.",
		Markup: kb.InlineButtonsRows(
			[]kb.InlineBtn{{Text: "✅ Verify New Account", Unique: KeyVerAcc}},
			mainMenuRow(),
		),
		ParseMode: tele.ModeMarkdown,
	}
}
