package paycrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkade-01/p2pbot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.APIConfig{
		URL:            srv.URL,
		Key:            "test-key",
		TimeoutSeconds: 2,
		Currency:       "NGN",
	})
}

func TestFetchRate(t *testing.T) {
	var gotPath, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("API-Key")
		w.Write([]byte(`{"status":"success","message":"OK","data":"1500.5"}`))
	})

	rate, err := c.FetchRate(context.Background(), RateQuery{
		Token:  "USDT",
		Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("fetch rate: %v", err)
	}
	if gotPath != "/rates/USDT/10/NGN" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("API-Key header = %q", gotKey)
	}
	if rate.String() != "1500.5" {
		t.Fatalf("rate = %s, want 1500.5", rate.String())
	}
}

func TestFetchRateDefaultsAmountToOne(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"success","data":"1500"}`))
	})

	if _, err := c.FetchRate(context.Background(), RateQuery{Token: "USDT"}); err != nil {
		t.Fatalf("fetch rate: %v", err)
	}
	if gotPath != "/rates/USDT/1/NGN" {
		t.Fatalf("path = %s", gotPath)
	}
}

func TestErrorEnvelopeSurfacesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"Provider not found"}`))
	})

	_, err := c.FetchRate(context.Background(), RateQuery{Token: "USDT"})
	if err == nil {
		t.Fatal("expected error from error-status envelope")
	}
	if want := "Provider not found"; !strings.Contains(err.Error(), want) {
		t.Fatalf("err = %v, want it to mention %q", err, want)
	}
}

func TestHTTPErrorSurfacesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"Invalid API key"}`))
	})

	_, err := c.Institutions(context.Background(), "NGN")
	if err == nil {
		t.Fatal("expected error from 401")
	}
	if want := "Invalid API key"; !strings.Contains(err.Error(), want) {
		t.Fatalf("err = %v, want it to mention %q", err, want)
	}
}

func TestVerifyAccount(t *testing.T) {
	var gotBody VerifyAccountRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verify-account" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"success","data":"ADA LOVELACE"}`))
	})

	name, err := c.VerifyAccount(context.Background(), "044", "0123456789")
	if err != nil {
		t.Fatalf("verify account: %v", err)
	}
	if name != "ADA LOVELACE" {
		t.Fatalf("name = %q", name)
	}
	if gotBody.Institution != "044" || gotBody.AccountIdentifier != "0123456789" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestCreateOrderWireFormat(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"success","data":{
			"id":"ord-1","amount":"10","token":"USDT","network":"bnb-smart-chain",
			"receiveAddress":"0x000000000000000000000000000000000000dEaD",
			"validUntil":"2026-08-29T13:00:00Z","senderFee":"0.1","transactionFee":"0.05",
			"reference":"sell-abc"}}`))
	})

	order, err := c.CreateOrder(context.Background(), OrderRequest{
		Amount:  decimal.RequireFromString("10"),
		Rate:    decimal.RequireFromString("1500.5"),
		Network: "bnb-smart-chain",
		Token:   "USDT",
		Recipient: Recipient{
			Institution:       "044",
			AccountIdentifier: "0123456789",
			AccountName:       "ADA LOVELACE",
		},
		ReturnAddress: "0x52908400098527886E0F7030069857D2E4169EE7",
		Reference:     "sell-abc",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "ord-1" {
		t.Fatalf("order id = %q", order.ID)
	}

	// Amount and rate must travel as bare JSON numbers, not strings.
	if got := string(raw["amount"]); got != "10" {
		t.Fatalf("amount on the wire = %s, want 10", got)
	}
	if got := string(raw["rate"]); got != "1500.5" {
		t.Fatalf("rate on the wire = %s, want 1500.5", got)
	}
	if got := string(raw["returnAddress"]); got != `"0x52908400098527886E0F7030069857D2E4169EE7"` {
		t.Fatalf("returnAddress on the wire = %s", got)
	}
}

func TestOrderExpiresIn(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		validUntil string
		want       int
	}{
		{"2026-08-29T13:00:00Z", 60},
		{"2026-08-29T12:59:30Z", 60},
		{"2026-08-29T12:00:30Z", 1},
		{"2026-08-29T11:00:00Z", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		o := &Order{ValidUntil: tc.validUntil}
		if got := o.ExpiresIn(now); got != tc.want {
			t.Fatalf("ExpiresIn(%s) = %d, want %d", tc.validUntil, got, tc.want)
		}
	}
}

