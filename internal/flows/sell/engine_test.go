package sell

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	"github.com/arkade-01/p2pbot/internal/users"
)

type fakeExchange struct {
	rate     decimal.Decimal
	rateErr  error
	order    *paycrest.Order
	orderErr error

	rateCalls  int
	orderCalls int
	lastOrder  paycrest.OrderRequest
}

func (f *fakeExchange) FetchRate(_ context.Context, q paycrest.RateQuery) (decimal.Decimal, error) {
	f.rateCalls++
	if f.rateErr != nil {
		return decimal.Zero, f.rateErr
	}
	return f.rate, nil
}

func (f *fakeExchange) CreateOrder(_ context.Context, req paycrest.OrderRequest) (*paycrest.Order, error) {
	f.orderCalls++
	f.lastOrder = req
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.order, nil
}

type fakeProfiles struct {
	user       *users.User
	statsCalls int
	statsVol   decimal.Decimal
	statsErr   error
}

func (f *fakeProfiles) GetOrCreate(_ context.Context, id int64) (*users.User, error) {
	if f.user == nil {
		return &users.User{TelegramID: id}, nil
	}
	return f.user, nil
}

func (f *fakeProfiles) IncrementTradeStats(_ context.Context, _ int64, vol decimal.Decimal, _ int64) error {
	f.statsCalls++
	f.statsVol = vol
	return f.statsErr
}

func verifiedUser() *users.User {
	return &users.User{
		TelegramID:      42,
		BankName:        "Access Bank",
		AccountName:     "ADA LOVELACE",
		AccountNumber:   "0123456789",
		InstitutionCode: "044",
	}
}

func newTestEngine(ex *fakeExchange, pr *fakeProfiles) (*Engine, *session.MemoryStore) {
	store := session.NewMemoryStore(0)
	return NewEngine(store, ex, pr), store
}

func startAtAmount(t *testing.T, e *Engine, store *session.MemoryStore, userID int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.SelectChain(ctx, userID, "USDT", "bnb-smart-chain"); err != nil {
		t.Fatalf("select chain: %v", err)
	}
	if _, err := e.HandleText(ctx, userID, mustGet(t, store, userID), "0x52908400098527886E0F7030069857D2E4169EE7"); err != nil {
		t.Fatalf("refund address: %v", err)
	}
}

func mustGet(t *testing.T, store *session.MemoryStore, userID int64) *session.Session {
	t.Helper()
	sess, ok, err := store.Get(context.Background(), userID)
	if err != nil || !ok {
		t.Fatalf("expected session, ok=%v err=%v", ok, err)
	}
	return sess
}

func TestMenuRequiresVerifiedAccount(t *testing.T) {
	e, _ := newTestEngine(&fakeExchange{}, &fakeProfiles{user: &users.User{TelegramID: 42}})
	reply, err := e.Menu(context.Background(), 42)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(reply.Text, "set your account number") {
		t.Fatalf("expected verification gate, got %q", reply.Text)
	}
}

func TestSelectChainUnsupportedCreatesNoSession(t *testing.T) {
	e, store := newTestEngine(&fakeExchange{}, &fakeProfiles{user: verifiedUser()})
	reply, err := e.SelectChain(context.Background(), 42, "USDT", "arbitrum-one")
	if err != nil {
		t.Fatalf("select chain: %v", err)
	}
	if !strings.Contains(reply.Text, "not supported") {
		t.Fatalf("expected unsupported message, got %q", reply.Text)
	}
	if _, ok, _ := store.Get(context.Background(), 42); ok {
		t.Fatal("unsupported chain must not open a session")
	}
}

func TestRefundAddressValidation(t *testing.T) {
	e, store := newTestEngine(&fakeExchange{}, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	if _, err := e.SelectChain(ctx, 42, "USDT", "bnb-smart-chain"); err != nil {
		t.Fatalf("select chain: %v", err)
	}

	for _, bad := range []string{"nonsense", "0x123", "0x52908400098527886E0F7030069857D2E4169EE", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"} {
		reply, err := e.HandleText(ctx, 42, mustGet(t, store, 42), bad)
		if err != nil {
			t.Fatalf("handle %q: %v", bad, err)
		}
		if !strings.Contains(reply.Text, "Invalid wallet address") {
			t.Fatalf("expected rejection for %q, got %q", bad, reply.Text)
		}
		if mustGet(t, store, 42).Sell.Step != session.SellAwaitingRefundAddress {
			t.Fatalf("step must not advance on invalid address %q", bad)
		}
	}

	reply, err := e.HandleText(ctx, 42, mustGet(t, store, 42), "0x52908400098527886E0F7030069857D2E4169EE7")
	if err != nil {
		t.Fatalf("handle valid address: %v", err)
	}
	if !strings.Contains(reply.Text, "Refund Address Saved") {
		t.Fatalf("expected acceptance, got %q", reply.Text)
	}
	if mustGet(t, store, 42).Sell.Step != session.SellAwaitingAmount {
		t.Fatal("step must advance to amount after a valid address")
	}
}

func TestAmountValidation(t *testing.T) {
	e, store := newTestEngine(&fakeExchange{rate: decimal.NewFromInt(1500)}, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	startAtAmount(t, e, store, 42)

	for _, bad := range []string{"abc", "-5", "0", ""} {
		reply, err := e.HandleText(ctx, 42, mustGet(t, store, 42), bad)
		if err != nil {
			t.Fatalf("handle %q: %v", bad, err)
		}
		if !strings.Contains(reply.Text, "Invalid amount") {
			t.Fatalf("expected rejection for %q, got %q", bad, reply.Text)
		}
	}
	if mustGet(t, store, 42).Sell.Step != session.SellAwaitingAmount {
		t.Fatal("step must stay at amount after invalid input")
	}
}

func TestQuoteMultipliesExactly(t *testing.T) {
	ex := &fakeExchange{rate: decimal.NewFromInt(1500)}
	e, store := newTestEngine(ex, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	startAtAmount(t, e, store, 42)

	reply, err := e.HandleText(ctx, 42, mustGet(t, store, 42), "12.5")
	if err != nil {
		t.Fatalf("handle amount: %v", err)
	}
	if !strings.Contains(reply.Text, "Trade Summary") {
		t.Fatalf("expected summary, got %q", reply.Text)
	}
	st := mustGet(t, store, 42).Sell
	if got := st.ReceivingAmount.String(); got != "18750" {
		t.Fatalf("receiving amount = %s, want 18750", got)
	}
	if st.Step != session.SellConfirming {
		t.Fatalf("step = %s, want confirming", st.Step)
	}
}

func TestRateFailureKeepsAmountStep(t *testing.T) {
	ex := &fakeExchange{rateErr: errors.New("upstream down")}
	e, store := newTestEngine(ex, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	startAtAmount(t, e, store, 42)

	reply, err := e.HandleText(ctx, 42, mustGet(t, store, 42), "10")
	if err != nil {
		t.Fatalf("handle amount: %v", err)
	}
	if !strings.Contains(reply.Text, "Could not fetch") {
		t.Fatalf("expected rate failure message, got %q", reply.Text)
	}
	st := mustGet(t, store, 42).Sell
	if st.Step != session.SellAwaitingAmount {
		t.Fatalf("step = %s, want awaiting_amount after rate failure", st.Step)
	}
}

func TestConfirmHappyPath(t *testing.T) {
	ex := &fakeExchange{
		rate: decimal.NewFromInt(1500),
		order: &paycrest.Order{
			ID:             "ord-1",
			Amount:         "10",
			ReceiveAddress: "0x000000000000000000000000000000000000dEaD",
			ValidUntil:     "2026-08-29T12:30:00Z",
			Reference:      "sell-abc",
		},
	}
	pr := &fakeProfiles{user: verifiedUser()}
	e, store := newTestEngine(ex, pr)
	ctx := context.Background()
	startAtAmount(t, e, store, 42)
	if _, err := e.HandleText(ctx, 42, mustGet(t, store, 42), "10"); err != nil {
		t.Fatalf("handle amount: %v", err)
	}

	reply, err := e.Confirm(ctx, 42)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(reply.Text, "Sell Order Created Successfully") {
		t.Fatalf("expected order confirmation, got %q", reply.Text)
	}

	if ex.orderCalls != 1 {
		t.Fatalf("order calls = %d, want 1", ex.orderCalls)
	}
	req := ex.lastOrder
	if req.Token != "USDT" || req.Network != "bnb-smart-chain" {
		t.Fatalf("order routed to %s/%s", req.Token, req.Network)
	}
	if got := req.Amount.String(); got != "10" {
		t.Fatalf("order amount = %s, want 10", got)
	}
	if req.Recipient.Institution != "044" || req.Recipient.AccountIdentifier != "0123456789" {
		t.Fatalf("recipient = %+v", req.Recipient)
	}
	if !strings.HasPrefix(req.Reference, "sell-") {
		t.Fatalf("reference = %q, want sell- prefix", req.Reference)
	}

	if pr.statsCalls != 1 || pr.statsVol.String() != "10" {
		t.Fatalf("stats calls = %d vol = %s", pr.statsCalls, pr.statsVol.String())
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatal("session must be cleared after a successful order")
	}
}

func TestConfirmFailureRetainsSession(t *testing.T) {
	ex := &fakeExchange{rate: decimal.NewFromInt(1500), orderErr: errors.New("rejected")}
	pr := &fakeProfiles{user: verifiedUser()}
	e, store := newTestEngine(ex, pr)
	ctx := context.Background()
	startAtAmount(t, e, store, 42)
	if _, err := e.HandleText(ctx, 42, mustGet(t, store, 42), "10"); err != nil {
		t.Fatalf("handle amount: %v", err)
	}

	reply, err := e.Confirm(ctx, 42)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(reply.Text, "Order Creation Failed") {
		t.Fatalf("expected failure message, got %q", reply.Text)
	}
	if pr.statsCalls != 0 {
		t.Fatal("stats must not change on a failed order")
	}
	st := mustGet(t, store, 42).Sell
	if st.Step != session.SellConfirming {
		t.Fatalf("step = %s, want confirming retained for retry", st.Step)
	}
}

func TestConfirmWithoutSessionExpires(t *testing.T) {
	e, _ := newTestEngine(&fakeExchange{}, &fakeProfiles{user: verifiedUser()})
	reply, err := e.Confirm(context.Background(), 42)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(reply.Text, "Session expired") {
		t.Fatalf("expected expiry message, got %q", reply.Text)
	}
}

func TestCancelClearsSession(t *testing.T) {
	e, store := newTestEngine(&fakeExchange{rate: decimal.NewFromInt(1500)}, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	startAtAmount(t, e, store, 42)

	reply, err := e.Cancel(ctx, 42)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !strings.Contains(reply.Text, "Order Cancelled") {
		t.Fatalf("expected cancel message, got %q", reply.Text)
	}
	if _, ok, _ := store.Get(ctx, 42); ok {
		t.Fatal("session must be cleared on cancel")
	}
}

func TestChangeRefundAddressRewinds(t *testing.T) {
	e, store := newTestEngine(&fakeExchange{rate: decimal.NewFromInt(1500)}, &fakeProfiles{user: verifiedUser()})
	ctx := context.Background()
	startAtAmount(t, e, store, 42)

	reply, err := e.ChangeRefundAddress(ctx, 42)
	if err != nil {
		t.Fatalf("change refund: %v", err)
	}
	if !strings.Contains(reply.Text, "new refund address") {
		t.Fatalf("expected re-prompt, got %q", reply.Text)
	}
	st := mustGet(t, store, 42).Sell
	if st.Step != session.SellAwaitingRefundAddress || st.RefundAddress != "" {
		t.Fatalf("state = %+v, want rewound to address step", st)
	}
}
