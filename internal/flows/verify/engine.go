// Package verify runs the payout-account verification conversation:
// bank selection, account number entry, name resolution, and saving the
// confirmed account to the user's profile.
package verify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/arkade-01/p2pbot/internal/logger"
	"github.com/arkade-01/p2pbot/internal/menu"
	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	"github.com/arkade-01/p2pbot/internal/users"
)

// Directory lists payout institutions and resolves account holders.
type Directory interface {
	Institutions(ctx context.Context, currency string) ([]paycrest.Institution, error)
	VerifyAccount(ctx context.Context, institutionCode, accountNumber string) (string, error)
}

// Profiles reads and writes saved payout accounts.
type Profiles interface {
	GetOrCreate(ctx context.Context, telegramID int64) (*users.User, error)
	UpsertPayoutAccount(ctx context.Context, telegramID int64, acc users.PayoutAccount) error
	ClearPayoutAccount(ctx context.Context, telegramID int64) error
}

var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

// Engine drives the verification conversation. All methods expect the
// caller to hold the per-user lock.
type Engine struct {
	sessions  session.Store
	directory Directory
	profiles  Profiles
}

// NewEngine wires the verification conversation to its collaborators.
func NewEngine(sessions session.Store, directory Directory, profiles Profiles) *Engine {
	return &Engine{sessions: sessions, directory: directory, profiles: profiles}
}

// Menu shows the verification entry, reflecting any saved account.
func (e *Engine) Menu(ctx context.Context, userID int64) (*menu.Reply, error) {
	u, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return menu.VerifyMenu(u), nil
}

// ListBanks shows one page of the institution list. Navigating pages does
// not touch the session; only picking a bank starts the conversation.
func (e *Engine) ListBanks(ctx context.Context, userID int64, page int) (*menu.Reply, error) {
	banks, err := e.directory.Institutions(ctx, "")
	if err != nil {
		logger.FLOW.Warn("bank list failed",
			slog.String("event", "verify.banks"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return menu.BankListFailed(), nil
	}
	return menu.BankList(banks, page), nil
}

// SelectBank opens a fresh verification session for the chosen bank.
func (e *Engine) SelectBank(ctx context.Context, userID int64, code string) (*menu.Reply, error) {
	banks, err := e.directory.Institutions(ctx, "")
	if err != nil {
		return menu.BankListFailed(), nil
	}

	var bank *paycrest.Institution
	for i := range banks {
		if banks[i].Code == code {
			bank = &banks[i]
			break
		}
	}
	if bank == nil {
		return menu.BankListFailed(), nil
	}

	if err := e.sessions.Put(ctx, userID, session.NewVerify(bank.Name, bank.Code)); err != nil {
		return nil, err
	}
	logger.FLOW.Info("verification started",
		slog.String("event", "verify.start"),
		slog.Int64("user_id", userID),
		slog.String("institution", bank.Code),
	)
	return menu.AskAccountNumber(bank.Name), nil
}

// HandleText consumes a free-text message for the session's current step.
func (e *Engine) HandleText(ctx context.Context, userID int64, sess *session.Session, text string) (*menu.Reply, error) {
	st := sess.Verify
	if st == nil {
		return menu.VerifySessionExpired(), nil
	}

	switch st.Step {
	case session.VerifyAwaitingAccountNumber:
		return e.acceptAccountNumber(ctx, userID, sess, strings.TrimSpace(text))
	case session.VerifyAwaitingConfirmation:
		// Free text while the confirm buttons are up just re-shows them.
		return menu.ConfirmAccount(st), nil
	default:
		return menu.VerifySessionExpired(), nil
	}
}

func (e *Engine) acceptAccountNumber(ctx context.Context, userID int64, sess *session.Session, number string) (*menu.Reply, error) {
	st := sess.Verify
	if !accountNumberPattern.MatchString(number) {
		return menu.InvalidAccountNumber(), nil
	}

	name, err := e.directory.VerifyAccount(ctx, st.BankCode, number)
	if err != nil {
		logger.FLOW.Warn("account resolution failed",
			slog.String("event", "verify.resolve"),
			slog.Int64("user_id", userID),
			slog.String("institution", st.BankCode),
			slog.String("err", err.Error()),
		)
		return menu.VerifyFailed(), nil
	}

	st.AccountNumber = number
	st.AccountName = name
	st.Step = session.VerifyAwaitingConfirmation
	if err := e.sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	return menu.ConfirmAccount(st), nil
}

// Confirm saves the resolved account to the profile. Success ends the
// session; a failed save keeps it so the user can retry.
func (e *Engine) Confirm(ctx context.Context, userID int64) (*menu.Reply, error) {
	sess, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || sess.Verify == nil || sess.Verify.Step != session.VerifyAwaitingConfirmation {
		return menu.VerifySessionExpired(), nil
	}
	st := sess.Verify

	acc := users.PayoutAccount{
		BankName:        st.BankName,
		AccountName:     st.AccountName,
		AccountNumber:   st.AccountNumber,
		InstitutionCode: st.BankCode,
	}
	if err := e.profiles.UpsertPayoutAccount(ctx, userID, acc); err != nil {
		logger.FLOW.Warn("account save failed",
			slog.String("event", "verify.save"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return menu.SaveFailed(), nil
	}
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}

	logger.FLOW.Info("account verified",
		slog.String("event", "verify.save"),
		slog.Int64("user_id", userID),
		slog.String("institution", st.BankCode),
	)
	return menu.AccountSaved(st), nil
}

// Cancel ends the conversation and discards any staged account.
func (e *Engine) Cancel(ctx context.Context, userID int64) (*menu.Reply, error) {
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return menu.VerificationCancelled(), nil
}

// RemoveAccount deletes the saved payout account from the profile.
func (e *Engine) RemoveAccount(ctx context.Context, userID int64) (*menu.Reply, error) {
	if err := e.profiles.ClearPayoutAccount(ctx, userID); err != nil {
		return nil, err
	}
	logger.FLOW.Info("account removed",
		slog.String("event", "verify.remove"),
		slog.Int64("user_id", userID),
	)
	return menu.AccountRemoved(), nil
}
