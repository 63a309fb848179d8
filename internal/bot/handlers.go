// Package bot binds the conversation engines to Telegram updates:
// command and callback handlers, free-text dispatch, and the per-user
// locking that keeps session transitions serialized.
package bot

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"github.com/arkade-01/p2pbot/internal/flows/sell"
	"github.com/arkade-01/p2pbot/internal/flows/verify"
	"github.com/arkade-01/p2pbot/internal/logger"
	"github.com/arkade-01/p2pbot/internal/market"
	"github.com/arkade-01/p2pbot/internal/menu"
	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	"github.com/arkade-01/p2pbot/internal/telegram/callbacks"
	"github.com/arkade-01/p2pbot/internal/telegram/helpers"
	"github.com/arkade-01/p2pbot/internal/users"
)

// Rates quotes the headline rate shown on the main menu.
type Rates interface {
	FetchRate(ctx context.Context, q paycrest.RateQuery) (decimal.Decimal, error)
}

// Handlers owns the tele handlers for every command and callback.
type Handlers struct {
	sell     *sell.Engine
	verify   *verify.Engine
	profiles *users.Repository
	rates    Rates
	sessions session.Store
	locks    *session.KeyedMutex
}

// NewHandlers wires the handler set.
func NewHandlers(sellEng *sell.Engine, verifyEng *verify.Engine, profiles *users.Repository, rates Rates, sessions session.Store) *Handlers {
	return &Handlers{
		sell:     sellEng,
		verify:   verifyEng,
		profiles: profiles,
		rates:    rates,
		sessions: sessions,
		locks:    session.NewKeyedMutex(),
	}
}

// send delivers a rendered reply. Callback-triggered replies edit the
// message the button lives on; edits that fail (deleted or stale
// messages) fall back to a fresh send.
func send(c tele.Context, r *menu.Reply) error {
	opts := &tele.SendOptions{ParseMode: r.ParseMode}
	if r.Markup != nil {
		opts.ReplyMarkup = r.Markup
	}
	if c.Callback() != nil && c.Message() != nil {
		if err := c.Edit(r.Text, opts); err == nil {
			return nil
		}
	}
	return c.Send(r.Text, opts)
}

// locked runs fn while holding the sender's session lock.
func (h *Handlers) locked(c tele.Context, fn func(ctx context.Context, userID int64) (*menu.Reply, error)) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	unlock := h.locks.Lock(userID)
	reply, err := fn(ctx, userID)
	unlock()

	if err != nil {
		logger.FLOW.Error("handler failed",
			slog.String("event", "flow.handler"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return send(c, &menu.Reply{Text: "Something went wrong. Please try again."})
	}
	if reply == nil {
		return nil
	}
	return send(c, reply)
}

// Start handles /start and the main-menu callback.
func (h *Handlers) Start(c tele.Context) error {
	return h.welcome(c, false)
}

// MainMenu handles the return-to-main-menu button.
func (h *Handlers) MainMenu(c tele.Context) error {
	return h.welcome(c, true)
}

func (h *Handlers) welcome(c tele.Context, isReturn bool) error {
	firstName := ""
	if s := c.Sender(); s != nil {
		firstName = s.FirstName
	}
	return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
		u, err := h.profiles.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		rateText := ""
		if rate, err := h.rates.FetchRate(ctx, paycrest.RateQuery{Token: market.TokenUSDT}); err == nil {
			rateText = rate.StringFixed(2)
		}

		isNew := u.TradeCount == 0 && !u.HasPayoutAccount()
		return menu.Welcome(firstName, isNew, isReturn, rateText), nil
	})
}

// Help handles /help and the help button.
func (h *Handlers) Help(c tele.Context) error {
	return send(c, menu.Help())
}

// Buy handles the not-yet-available buy button.
func (h *Handlers) Buy(c tele.Context) error {
	return send(c, menu.Buy())
}

// Stats handles /stats and the stats button.
func (h *Handlers) Stats(c tele.Context) error {
	return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
		u, err := h.profiles.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		return menu.Stats(u.TradeCount, u.TradeVolume), nil
	})
}

// SellMenu opens the sell flow.
func (h *Handlers) SellMenu(c tele.Context) error {
	return h.locked(c, h.sell.Menu)
}

// SellToken handles the token buttons. A bare press shows the chain menu;
// a press carrying a chain id starts the conversation on that chain.
func (h *Handlers) SellToken(token string) tele.HandlerFunc {
	return func(c tele.Context) error {
		chainID := callbacks.Payload(c)
		return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
			if chainID == "" {
				return h.sell.SelectToken(ctx, userID, token)
			}
			return h.sell.SelectChain(ctx, userID, token, chainID)
		})
	}
}

// ChangeRefund rewinds the sell flow to the refund-address step.
func (h *Handlers) ChangeRefund(c tele.Context) error {
	return h.locked(c, h.sell.ChangeRefundAddress)
}

// ConfirmSell finalizes the staged trade.
func (h *Handlers) ConfirmSell(c tele.Context) error {
	return h.locked(c, h.sell.Confirm)
}

// CancelSell abandons the sell conversation.
func (h *Handlers) CancelSell(c tele.Context) error {
	return h.locked(c, h.sell.Cancel)
}

// VerifyMenu shows the verification entry.
func (h *Handlers) VerifyMenu(c tele.Context) error {
	return h.locked(c, h.verify.Menu)
}

// ListBanks shows the first page of the bank list.
func (h *Handlers) ListBanks(c tele.Context) error {
	return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
		return h.verify.ListBanks(ctx, userID, 0)
	})
}

// BanksPage navigates the bank list to the page in the callback payload.
func (h *Handlers) BanksPage(c tele.Context) error {
	page, err := strconv.Atoi(callbacks.Payload(c))
	if err != nil {
		page = 0
	}
	return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
		return h.verify.ListBanks(ctx, userID, page)
	})
}

// PageInfo absorbs presses on the page indicator button.
func (h *Handlers) PageInfo(c tele.Context) error {
	return nil
}

// SelectBank starts verification for the bank in the callback payload.
func (h *Handlers) SelectBank(c tele.Context) error {
	code := callbacks.Payload(c)
	return h.locked(c, func(ctx context.Context, userID int64) (*menu.Reply, error) {
		return h.verify.SelectBank(ctx, userID, code)
	})
}

// ConfirmAccount saves the resolved payout account.
func (h *Handlers) ConfirmAccount(c tele.Context) error {
	return h.locked(c, h.verify.Confirm)
}

// CancelVerification abandons the verification conversation.
func (h *Handlers) CancelVerification(c tele.Context) error {
	return h.locked(c, h.verify.Cancel)
}

// RemoveAccount deletes the saved payout account.
func (h *Handlers) RemoveAccount(c tele.Context) error {
	return h.locked(c, h.verify.RemoveAccount)
}

// SessionText consumes a free-text message when the sender has a pending
// conversation. It reports false for users with no session so the text
// router can fall through to command handling.
func (h *Handlers) SessionText(c tele.Context) (bool, error) {
	sender := c.Sender()
	if sender == nil || c.Message() == nil {
		return false, nil
	}
	ctx := helpers.BuildContext(c)
	text := c.Message().Text

	unlock := h.locks.Lock(sender.ID)
	defer unlock()

	sess, ok, err := h.sessions.Get(ctx, sender.ID)
	if err != nil {
		logger.SESS.Error("session lookup failed",
			slog.String("event", "session.get"),
			slog.Int64("user_id", sender.ID),
			slog.String("err", err.Error()),
		)
		return true, send(c, &menu.Reply{Text: "Something went wrong. Please try again."})
	}
	if !ok {
		return false, nil
	}

	var reply *menu.Reply
	switch sess.Flow {
	case session.FlowSell:
		reply, err = h.sell.HandleText(ctx, sender.ID, sess, text)
	case session.FlowVerify:
		reply, err = h.verify.HandleText(ctx, sender.ID, sess, text)
	default:
		// Unknown flow tag, drop the stale session.
		return false, h.sessions.Delete(ctx, sender.ID)
	}
	if err != nil {
		logger.FLOW.Error("text handler failed",
			slog.String("event", "flow.text"),
			slog.Int64("user_id", sender.ID),
			slog.String("flow", string(sess.Flow)),
			slog.String("err", err.Error()),
		)
		return true, send(c, &menu.Reply{Text: "Something went wrong. Please try again."})
	}
	return true, send(c, reply)
}
