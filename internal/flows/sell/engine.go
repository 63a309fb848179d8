// Package sell runs the sell-crypto conversation: token and chain
// selection, refund address, amount, rate quote, and order creation.
package sell

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arkade-01/p2pbot/internal/logger"
	"github.com/arkade-01/p2pbot/internal/market"
	"github.com/arkade-01/p2pbot/internal/menu"
	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	"github.com/arkade-01/p2pbot/internal/users"
)

// Exchange quotes rates and creates orders.
type Exchange interface {
	FetchRate(ctx context.Context, q paycrest.RateQuery) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, req paycrest.OrderRequest) (*paycrest.Order, error)
}

// Profiles reads payout details and records completed trades.
type Profiles interface {
	GetOrCreate(ctx context.Context, telegramID int64) (*users.User, error)
	IncrementTradeStats(ctx context.Context, telegramID int64, volume decimal.Decimal, trades int64) error
}

// Engine drives the sell conversation. All methods expect the caller to
// hold the per-user lock so session reads and writes do not interleave.
type Engine struct {
	sessions session.Store
	exchange Exchange
	profiles Profiles
	now      func() time.Time
}

// NewEngine wires the sell conversation to its collaborators.
func NewEngine(sessions session.Store, exchange Exchange, profiles Profiles) *Engine {
	return &Engine{
		sessions: sessions,
		exchange: exchange,
		profiles: profiles,
		now:      time.Now,
	}
}

// Menu opens the sell flow. Users without a verified payout account are
// sent to verification first. Browsing menus leaves any session alone;
// only picking a chain replaces it.
func (e *Engine) Menu(ctx context.Context, userID int64) (*menu.Reply, error) {
	u, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasPayoutAccount() {
		return menu.AccountRequired(), nil
	}
	return menu.SellIntro(), nil
}

// SelectToken shows the chain menu for a chosen token.
func (e *Engine) SelectToken(ctx context.Context, userID int64, token string) (*menu.Reply, error) {
	if !market.KnownToken(token) {
		return menu.SellIntro(), nil
	}
	u, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasPayoutAccount() {
		return menu.AccountRequired(), nil
	}
	return menu.ChainMenu(token), nil
}

// SelectChain starts the conversation proper. A supported token/chain
// pair opens a fresh session at the refund-address step; an unsupported
// pair answers without creating one.
func (e *Engine) SelectChain(ctx context.Context, userID int64, token, chainID string) (*menu.Reply, error) {
	listing, ok := market.Lookup(token, chainID)
	if !ok || !listing.Supported {
		logger.FLOW.Debug("chain refused",
			slog.String("event", "sell.chain_unsupported"),
			slog.Int64("user_id", userID),
			slog.String("token", token),
			slog.String("chain", chainID),
		)
		return menu.ChainUnsupported(token), nil
	}

	if err := e.sessions.Put(ctx, userID, session.NewSell(token, chainID, listing.Name)); err != nil {
		return nil, err
	}
	logger.FLOW.Info("sell started",
		slog.String("event", "sell.start"),
		slog.Int64("user_id", userID),
		slog.String("token", token),
		slog.String("chain", chainID),
	)
	return menu.AskRefundAddress(token, listing.Name), nil
}

// HandleText consumes a free-text message for the session's current step.
func (e *Engine) HandleText(ctx context.Context, userID int64, sess *session.Session, text string) (*menu.Reply, error) {
	st := sess.Sell
	if st == nil {
		return menu.SellSessionExpired(), nil
	}

	switch st.Step {
	case session.SellAwaitingRefundAddress:
		return e.acceptRefundAddress(ctx, userID, sess, strings.TrimSpace(text))
	case session.SellAwaitingAmount:
		return e.acceptAmount(ctx, userID, sess, strings.TrimSpace(text))
	case session.SellConfirming:
		// Free text while the confirm buttons are up just re-shows them.
		return menu.TradeSummary(st), nil
	default:
		return menu.SellSessionExpired(), nil
	}
}

func (e *Engine) acceptRefundAddress(ctx context.Context, userID int64, sess *session.Session, addr string) (*menu.Reply, error) {
	st := sess.Sell
	listing, ok := market.Lookup(st.Token, st.Chain)
	if !ok || !market.ValidAddress(listing.Chain, addr) {
		return menu.InvalidAddress(st.Token), nil
	}

	st.RefundAddress = addr
	st.Step = session.SellAwaitingAmount
	if err := e.sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	return menu.AddressSaved(st), nil
}

func (e *Engine) acceptAmount(ctx context.Context, userID int64, sess *session.Session, text string) (*menu.Reply, error) {
	st := sess.Sell
	amount, err := decimal.NewFromString(text)
	if err != nil || !amount.IsPositive() {
		return menu.InvalidAmount(), nil
	}

	rate, err := e.exchange.FetchRate(ctx, paycrest.RateQuery{Token: st.Token, Amount: amount})
	if err != nil {
		logger.FLOW.Warn("rate fetch failed",
			slog.String("event", "sell.rate"),
			slog.Int64("user_id", userID),
			slog.String("token", st.Token),
			slog.String("err", err.Error()),
		)
		return menu.RateUnavailable(), nil
	}

	st.Amount = amount
	st.Rate = rate
	st.ReceivingAmount = amount.Mul(rate)
	st.Step = session.SellConfirming
	if err := e.sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	return menu.TradeSummary(st), nil
}

// ChangeRefundAddress rewinds the conversation to the refund-address step.
func (e *Engine) ChangeRefundAddress(ctx context.Context, userID int64) (*menu.Reply, error) {
	sess, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || sess.Sell == nil {
		return menu.SellSessionExpired(), nil
	}

	sess.Sell.RefundAddress = ""
	sess.Sell.Step = session.SellAwaitingRefundAddress
	if err := e.sessions.Put(ctx, userID, sess); err != nil {
		return nil, err
	}
	return menu.AskNewRefundAddress(), nil
}

// Confirm creates the order from the staged trade. Success records the
// trade and ends the session; a collaborator failure keeps the session so
// the user can retry.
func (e *Engine) Confirm(ctx context.Context, userID int64) (*menu.Reply, error) {
	sess, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok || sess.Sell == nil || sess.Sell.Step != session.SellConfirming {
		return menu.SellSessionExpired(), nil
	}
	st := sess.Sell

	u, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasPayoutAccount() {
		return menu.AccountRequired(), nil
	}

	order, err := e.exchange.CreateOrder(ctx, paycrest.OrderRequest{
		Amount:  st.Amount,
		Rate:    st.Rate,
		Network: st.Chain,
		Token:   st.Token,
		Recipient: paycrest.Recipient{
			Institution:       u.InstitutionCode,
			AccountIdentifier: u.AccountNumber,
			AccountName:       u.AccountName,
			Memo:              fmt.Sprintf("Sell %s %s", st.Amount.String(), st.Token),
		},
		ReturnAddress: st.RefundAddress,
		Reference:     "sell-" + uuid.NewString(),
	})
	if err != nil {
		logger.FLOW.Warn("order failed",
			slog.String("event", "sell.order"),
			slog.Int64("user_id", userID),
			slog.String("token", st.Token),
			slog.String("err", err.Error()),
		)
		return menu.OrderFailed(), nil
	}

	// Stats are best effort; a failed bump must not lose the created order.
	if err := e.profiles.IncrementTradeStats(ctx, userID, st.Amount, 1); err != nil {
		logger.FLOW.Warn("stats update failed",
			slog.String("event", "sell.stats"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}

	logger.FLOW.Info("order created",
		slog.String("event", "sell.order"),
		slog.Int64("user_id", userID),
		slog.String("order_id", order.ID),
		slog.String("token", st.Token),
		slog.String("chain", st.Chain),
		slog.String("amount", st.Amount.String()),
	)
	return menu.OrderCreated(st, order, order.ExpiresIn(e.now())), nil
}

// Cancel ends the conversation and discards any staged trade.
func (e *Engine) Cancel(ctx context.Context, userID int64) (*menu.Reply, error) {
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return menu.SellCancelled(), nil
}
