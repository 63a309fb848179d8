// Package paycrest is the HTTP adapter for the payment aggregator that
// quotes rates, lists payout institutions, resolves account names, and
// creates exchange orders. Every call has a bounded timeout and no
// automatic retry; failures surface to the caller as errors.
package paycrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkade-01/p2pbot/internal/config"
	"github.com/arkade-01/p2pbot/internal/logger"
	"log/slog"
)

// envelope is the aggregator's uniform response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the payment aggregator API.
type Client struct {
	baseURL  string
	key      string
	currency string
	http     *http.Client
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		key:      cfg.Key,
		currency: cfg.Currency,
		http:     &http.Client{Timeout: timeout},
	}
}

// Currency returns the fiat corridor the client is configured for.
func (c *Client) Currency() string {
	return c.currency
}

// FetchRate quotes how much fiat one unit of token buys.
func (c *Client) FetchRate(ctx context.Context, q RateQuery) (decimal.Decimal, error) {
	amount := q.Amount
	if amount.IsZero() {
		amount = decimal.NewFromInt(1)
	}
	currency := q.Currency
	if currency == "" {
		currency = c.currency
	}

	path := fmt.Sprintf("/rates/%s/%s/%s", url.PathEscape(q.Token), amount.String(), url.PathEscape(currency))
	if q.ProviderID != "" {
		path += "?provider_id=" + url.QueryEscape(q.ProviderID)
	}

	var rate decimal.Decimal
	if err := c.do(ctx, http.MethodGet, path, nil, &rate); err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate for %s: %w", q.Token, err)
	}
	return rate, nil
}

// Institutions lists payout destinations for a fiat currency.
func (c *Client) Institutions(ctx context.Context, currency string) ([]Institution, error) {
	if currency == "" {
		currency = c.currency
	}
	var out []Institution
	if err := c.do(ctx, http.MethodGet, "/institutions/"+url.PathEscape(currency), nil, &out); err != nil {
		return nil, fmt.Errorf("fetch institutions for %s: %w", currency, err)
	}
	return out, nil
}

// VerifyAccount resolves an account number at an institution to the
// holder's display name.
func (c *Client) VerifyAccount(ctx context.Context, institutionCode, accountNumber string) (string, error) {
	req := VerifyAccountRequest{
		Institution:       institutionCode,
		AccountIdentifier: accountNumber,
	}
	var name string
	if err := c.do(ctx, http.MethodPost, "/verify-account", req, &name); err != nil {
		return "", fmt.Errorf("verify account: %w", err)
	}
	return name, nil
}

// CreateOrder opens an exchange order and returns its deposit instructions.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	// The aggregator expects bare JSON numbers for amount and rate.
	wire := struct {
		Amount        json.Number `json:"amount"`
		Rate          json.Number `json:"rate"`
		Network       string      `json:"network"`
		Token         string      `json:"token"`
		Recipient     Recipient   `json:"recipient"`
		ReturnAddress string      `json:"returnAddress"`
		Reference     string      `json:"reference,omitempty"`
	}{
		Amount:        json.Number(req.Amount.String()),
		Rate:          json.Number(req.Rate.String()),
		Network:       req.Network,
		Token:         req.Token,
		Recipient:     req.Recipient,
		ReturnAddress: req.ReturnAddress,
		Reference:     req.Reference,
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/sender/orders", wire, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// SupportedCurrencies lists the fiat currencies the aggregator serves.
func (c *Client) SupportedCurrencies(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/currencies", nil, &out); err != nil {
		return nil, fmt.Errorf("fetch currencies: %w", err)
	}
	return out, nil
}

// ExpiresIn reports the whole minutes left until the order expires,
// rounding up so "59m30s" still reads as 60 minutes.
func (o *Order) ExpiresIn(now time.Time) int {
	validUntil, err := time.Parse(time.RFC3339, o.ValidUntil)
	if err != nil {
		return 0
	}
	remaining := validUntil.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Minute - 1) / time.Minute)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.key)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.API.Warn("request failed",
			slog.String("event", "api.request"),
			slog.String("method", method),
			slog.String("path", path),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		logger.API.Warn("request rejected",
			slog.String("event", "api.request"),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", msg),
		)
		return fmt.Errorf("%s %s: %s", method, path, msg)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = "provider not found"
		}
		return fmt.Errorf("%s %s: %s", method, path, msg)
	}

	logger.API.Debug("request ok",
		slog.String("event", "api.request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
