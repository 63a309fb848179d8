package menu

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arkade-01/p2pbot/internal/paycrest"
)

func makeBanks(n int) []paycrest.Institution {
	banks := make([]paycrest.Institution, n)
	for i := range banks {
		banks[i] = paycrest.Institution{
			Name: fmt.Sprintf("Bank %02d", i+1),
			Code: fmt.Sprintf("%03d", i+1),
			Type: "bank",
		}
	}
	return banks
}

func TestPaginateBanksLayout(t *testing.T) {
	p := PaginateBanks(makeBanks(17), 0)

	if p.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", p.TotalPages)
	}
	// 8 banks in rows of 2, plus the navigation row.
	if len(p.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(p.Rows))
	}
	for i := 0; i < 4; i++ {
		if len(p.Rows[i]) != 2 {
			t.Fatalf("row %d has %d buttons, want 2", i, len(p.Rows[i]))
		}
	}
	if p.Rows[0][0].Text != "Bank 01" || p.Rows[0][0].Data != "001" {
		t.Fatalf("first button = %+v", p.Rows[0][0])
	}

	nav := p.Rows[4]
	// First page has no previous button.
	if len(nav) != 2 {
		t.Fatalf("nav row has %d buttons, want 2", len(nav))
	}
	if !strings.Contains(nav[0].Text, "1/3") {
		t.Fatalf("indicator = %q, want page 1/3", nav[0].Text)
	}
	if nav[1].Unique != KeyBanksPage || nav[1].Data != "1" {
		t.Fatalf("next button = %+v", nav[1])
	}
}

func TestPaginateBanksLastPage(t *testing.T) {
	p := PaginateBanks(makeBanks(17), 2)

	// 17 banks leave one on the last page, plus the navigation row.
	if len(p.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(p.Rows))
	}
	if p.Rows[0][0].Text != "Bank 17" {
		t.Fatalf("first button = %+v", p.Rows[0][0])
	}

	nav := p.Rows[1]
	// Last page has no next button.
	if len(nav) != 2 {
		t.Fatalf("nav row has %d buttons, want 2", len(nav))
	}
	if nav[0].Unique != KeyBanksPage || nav[0].Data != "1" {
		t.Fatalf("previous button = %+v", nav[0])
	}
	if !strings.Contains(nav[1].Text, "3/3") {
		t.Fatalf("indicator = %q, want page 3/3", nav[1].Text)
	}
}

func TestPaginateBanksClampsOutOfRange(t *testing.T) {
	banks := makeBanks(17)

	if p := PaginateBanks(banks, 5); p.Page != 2 {
		t.Fatalf("page 5 clamped to %d, want 2", p.Page)
	}
	if p := PaginateBanks(banks, -1); p.Page != 0 {
		t.Fatalf("page -1 clamped to %d, want 0", p.Page)
	}
}

func TestPaginateBanksEmptyList(t *testing.T) {
	p := PaginateBanks(nil, 0)
	if p.TotalPages != 1 || p.Page != 0 {
		t.Fatalf("empty list page = %d/%d, want 1 empty page", p.Page, p.TotalPages)
	}
	// Only the navigation row remains.
	if len(p.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(p.Rows))
	}
}
