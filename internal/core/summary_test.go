package core

import "testing"

func summaryFixture() []Bill {
	return []Bill{
		{ID: "1", Month: "2026-01", Name: "Aluguel", Amount: Money{Cents: 120000}, Group: "Geral", Status: StatusPaid},
		{ID: "2", Month: "2026-01", Name: "Internet", Amount: Money{Cents: 9990}, Group: "Geral", Status: StatusPending},
		{ID: "3", Month: "2026-01", Name: "Mercado", Amount: Money{Cents: 45000}, Group: "Extra", Status: StatusPaid},
		{ID: "4", Month: "2026-01", Name: "Escola", Amount: Money{Cents: 80000}, Group: "Wil", Status: StatusPending},
		{ID: "5", Month: "2026-02", Name: "Aluguel", Amount: Money{Cents: 120000}, Group: "Geral", Status: StatusPending},
	}
}

func TestFilterBills(t *testing.T) {
	bills := summaryFixture()

	all := FilterBills(bills, "2026-01", FilterAll)
	if len(all) != 4 {
		t.Fatalf("expected 4 bills in 2026-01, got %d", len(all))
	}
	// Insertion order preserved
	if all[0].ID != "1" || all[3].ID != "4" {
		t.Fatalf("filter must preserve input order, got %s..%s", all[0].ID, all[3].ID)
	}

	pending := FilterBills(bills, "2026-01", FilterPending)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending bills, got %d", len(pending))
	}

	paid := FilterBills(bills, "2026-01", FilterPaid)
	if len(paid) != 2 {
		t.Fatalf("expected 2 paid bills, got %d", len(paid))
	}

	if got := FilterBills(bills, "2026-03", FilterAll); len(got) != 0 {
		t.Fatalf("expected no bills in empty month, got %d", len(got))
	}
}

func TestComputeMonthlyStatsExcludesExtraGroup(t *testing.T) {
	stats := ComputeMonthlyStats(summaryFixture(), "2026-01", "Extra")

	// 1200.00 + 99.90 + 800.00; Mercado (Extra) not counted
	if stats.Total.Cents != 209990 {
		t.Fatalf("total = %d, want 209990", stats.Total.Cents)
	}
	if stats.Paid.Cents != 120000 {
		t.Fatalf("paid = %d, want 120000", stats.Paid.Cents)
	}
	if stats.Pending.Cents != 89990 {
		t.Fatalf("pending = %d, want 89990", stats.Pending.Cents)
	}
}

func TestGroupBills(t *testing.T) {
	grouped := GroupBills(FilterBills(summaryFixture(), "2026-01", FilterAll))
	if len(grouped) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(grouped))
	}
	// First-seen order
	if grouped[0].Name != "Geral" || grouped[1].Name != "Extra" || grouped[2].Name != "Wil" {
		t.Fatalf("unexpected group order: %s, %s, %s", grouped[0].Name, grouped[1].Name, grouped[2].Name)
	}
	if grouped[0].Total.Cents != 129990 {
		t.Fatalf("Geral subtotal = %d, want 129990", grouped[0].Total.Cents)
	}
	// The extra group still gets its own subtotal
	if grouped[1].Total.Cents != 45000 {
		t.Fatalf("Extra subtotal = %d, want 45000", grouped[1].Total.Cents)
	}
	if len(grouped[0].Bills) != 2 {
		t.Fatalf("Geral should hold 2 bills, got %d", len(grouped[0].Bills))
	}
}
