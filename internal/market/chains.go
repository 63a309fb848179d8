// Package market declares the tokens and blockchain networks the bot
// trades on, and the address shape expected for each network.
package market

import "regexp"

// Token tickers offered for sale.
const (
	TokenUSDT = "USDT"
	TokenUSDC = "USDC"
)

// Chain is a blockchain network an order can settle on.
type Chain struct {
	// ID is the network identifier used by the payment aggregator.
	ID string
	// Name is the short display name shown to users.
	Name string
	// Icon prefixes the chain name on selection buttons.
	Icon string
	// AddressPattern validates refund addresses for this chain.
	AddressPattern *regexp.Regexp
}

// Listing pairs a chain with whether a token is currently offered on it.
// Unsupported listings still render as buttons so users get an explicit
// "not supported" answer instead of a dead end.
type Listing struct {
	Chain
	Supported bool
}

// Every currently listed chain is EVM-compatible, so one address shape
// covers them all. Adding a non-EVM chain means giving it its own pattern.
var evmAddress = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

var (
	chainBSC      = Chain{ID: "bnb-smart-chain", Name: "BSC", Icon: "🟡", AddressPattern: evmAddress}
	chainPolygon  = Chain{ID: "polygon", Name: "Polygon", Icon: "🟣", AddressPattern: evmAddress}
	chainArbitrum = Chain{ID: "arbitrum-one", Name: "Arbitrum", Icon: "🔵", AddressPattern: evmAddress}
	chainBase     = Chain{ID: "base", Name: "Base", Icon: "🔵", AddressPattern: evmAddress}
)

var listings = map[string][]Listing{
	TokenUSDT: {
		{Chain: chainBSC, Supported: true},
		{Chain: chainPolygon, Supported: true},
		{Chain: chainArbitrum, Supported: false},
	},
	TokenUSDC: {
		{Chain: chainBase, Supported: true},
		{Chain: chainBSC, Supported: false},
		{Chain: chainPolygon, Supported: true},
		{Chain: chainArbitrum, Supported: false},
	},
}

// KnownToken reports whether the ticker is offered at all.
func KnownToken(token string) bool {
	_, ok := listings[token]
	return ok
}

// TokenListings returns the chains shown on a token's selection menu.
func TokenListings(token string) []Listing {
	return listings[token]
}

// Lookup finds a chain listing for a token. The second return reports
// whether the pair is listed at all; check Listing.Supported before use.
func Lookup(token, chainID string) (Listing, bool) {
	for _, l := range listings[token] {
		if l.ID == chainID {
			return l, true
		}
	}
	return Listing{}, false
}

// ValidAddress reports whether addr matches the chain's address shape.
func ValidAddress(c Chain, addr string) bool {
	if c.AddressPattern == nil {
		return false
	}
	return c.AddressPattern.MatchString(addr)
}
