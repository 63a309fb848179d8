package market

import "testing"

func TestLookup(t *testing.T) {
	cases := []struct {
		token, chain string
		listed       bool
		supported    bool
	}{
		{"USDT", "bnb-smart-chain", true, true},
		{"USDT", "polygon", true, true},
		{"USDT", "arbitrum-one", true, false},
		{"USDT", "base", false, false},
		{"USDC", "base", true, true},
		{"USDC", "bnb-smart-chain", true, false},
		{"DOGE", "polygon", false, false},
	}
	for _, tc := range cases {
		l, ok := Lookup(tc.token, tc.chain)
		if ok != tc.listed {
			t.Fatalf("Lookup(%s, %s) listed = %v, want %v", tc.token, tc.chain, ok, tc.listed)
		}
		if ok && l.Supported != tc.supported {
			t.Fatalf("Lookup(%s, %s) supported = %v, want %v", tc.token, tc.chain, l.Supported, tc.supported)
		}
	}
}

func TestValidAddress(t *testing.T) {
	chain, _ := Lookup(TokenUSDT, "bnb-smart-chain")

	valid := []string{
		"0x52908400098527886E0F7030069857D2E4169EE7",
		"0x0000000000000000000000000000000000000000",
	}
	for _, addr := range valid {
		if !ValidAddress(chain.Chain, addr) {
			t.Fatalf("expected %q to validate", addr)
		}
	}

	invalid := []string{
		"",
		"0x123",
		"52908400098527886E0F7030069857D2E4169EE7",
		"0x52908400098527886E0F7030069857D2E4169EE",
		"0x52908400098527886E0F7030069857D2E4169EE7a",
		"0xZ2908400098527886E0F7030069857D2E4169EE7",
		" 0x52908400098527886E0F7030069857D2E4169EE7",
	}
	for _, addr := range invalid {
		if ValidAddress(chain.Chain, addr) {
			t.Fatalf("expected %q to be rejected", addr)
		}
	}
}

func TestKnownToken(t *testing.T) {
	if !KnownToken("USDT") || !KnownToken("USDC") {
		t.Fatal("listed tokens must be known")
	}
	if KnownToken("DOGE") {
		t.Fatal("unlisted token must not be known")
	}
}
