package core

import "testing"

func validBill() Bill {
	return Bill{
		ID:     "b1",
		Month:  "2026-01",
		Name:   "Internet",
		Amount: Money{Cents: 10000},
		Group:  "Geral",
		Status: StatusPending,
	}
}

func TestBillValidate(t *testing.T) {
	if err := validBill().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Bill)
	}{
		{"bad month", func(b *Bill) { b.Month = "2026-1" }},
		{"empty name", func(b *Bill) { b.Name = "  " }},
		{"negative amount", func(b *Bill) { b.Amount.Cents = -1 }},
		{"empty group", func(b *Bill) { b.Group = "" }},
		{"bad status", func(b *Bill) { b.Status = "open" }},
		{"installment index above count", func(b *Bill) {
			b.Installment = true
			b.InstallmentIndex = 4
			b.InstallmentCount = 3
		}},
		{"installment index zero", func(b *Bill) {
			b.Installment = true
			b.InstallmentIndex = 0
			b.InstallmentCount = 3
		}},
		{"numbering without installment flag", func(b *Bill) {
			b.InstallmentIndex = 1
			b.InstallmentCount = 3
		}},
	}
	for _, tc := range cases {
		b := validBill()
		tc.mutate(&b)
		if err := b.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestStatusToggle(t *testing.T) {
	if got := StatusPending.Toggle(); got != StatusPaid {
		t.Fatalf("pending toggles to %s", got)
	}
	if got := StatusPaid.Toggle(); got != StatusPending {
		t.Fatalf("paid toggles to %s", got)
	}
}

func TestSameSeries(t *testing.T) {
	a := validBill()
	b := validBill()
	b.ID = "b2"
	b.Month = "2026-02"

	// Legacy rows: name+group identity
	if !a.SameSeries(b) {
		t.Fatalf("rows with same name+group and no series id should match")
	}
	b.Name = "Internet Fibra"
	if a.SameSeries(b) {
		t.Fatalf("renamed legacy row should not match")
	}

	// Series ids are authoritative even across renames
	a.SeriesID, b.SeriesID = "s1", "s1"
	if !a.SameSeries(b) {
		t.Fatalf("rows sharing a series id should match regardless of name")
	}
	b.SeriesID = "s2"
	b.Name = a.Name
	if a.SameSeries(b) {
		t.Fatalf("rows with different series ids should not match")
	}
}
