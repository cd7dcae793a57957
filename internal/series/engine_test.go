package series

import (
	"fmt"
	"testing"

	"contas/internal/core"
)

func testPlanner(year int) Planner {
	n := 0
	return Planner{
		Calendar: YearCalendar(year),
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func TestYearCalendar(t *testing.T) {
	cal := YearCalendar(2026)
	if len(cal) != 12 {
		t.Fatalf("expected 12 months, got %d", len(cal))
	}
	if cal[0] != "2026-01" || cal[11] != "2026-12" {
		t.Fatalf("unexpected bounds: %s..%s", cal[0], cal[11])
	}
}

func TestPlanCreateSingle(t *testing.T) {
	p := testPlanner(2026)
	in := Input{Name: "IPTU", Amount: core.Money{Cents: 30000}, Group: "Geral"}

	cs, err := p.PlanCreate(in, "2026-03", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 1 || len(cs.Updates) != 0 {
		t.Fatalf("expected 1 insert, got %d inserts / %d updates", len(cs.Inserts), len(cs.Updates))
	}
	row := cs.Inserts[0]
	if row.Month != "2026-03" || row.Status != core.StatusPending || row.SeriesID == "" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestPlanCreateFixed(t *testing.T) {
	p := testPlanner(2026)
	in := Input{Name: "Aluguel", Amount: core.Money{Cents: 120000}, Group: "Geral", Fixed: true}

	cs, err := p.PlanCreate(in, "2026-04", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 9 {
		t.Fatalf("expected rows for 2026-04..2026-12, got %d", len(cs.Inserts))
	}
	if cs.Inserts[0].Month != "2026-04" || cs.Inserts[8].Month != "2026-12" {
		t.Fatalf("unexpected month range %s..%s", cs.Inserts[0].Month, cs.Inserts[8].Month)
	}
	seriesID := cs.Inserts[0].SeriesID
	for _, b := range cs.Inserts {
		if b.SeriesID != seriesID {
			t.Fatalf("all rows must share one series id")
		}
		if b.Installment {
			t.Fatalf("plain fixed rows must not carry installment numbering")
		}
	}
}

func TestPlanCreateFixedIdempotent(t *testing.T) {
	p := testPlanner(2026)
	in := Input{Name: "Aluguel", Amount: core.Money{Cents: 120000}, Group: "Geral", Fixed: true}

	first, err := p.PlanCreate(in, "2026-01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.PlanCreate(in, "2026-01", first.Inserts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Inserts) != 0 {
		t.Fatalf("regeneration over the same range must be a no-op, got %d rows", len(second.Inserts))
	}
}

func TestPlanCreateFixedSkipsOccupiedMonths(t *testing.T) {
	p := testPlanner(2026)
	existing := []core.Bill{{
		ID: "x", Month: "2026-11", Name: "Aluguel", Group: "Geral",
		Amount: core.Money{Cents: 1}, Status: core.StatusPaid,
	}}
	in := Input{Name: "Aluguel", Amount: core.Money{Cents: 120000}, Group: "Geral", Fixed: true}

	cs, err := p.PlanCreate(in, "2026-10", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 2 {
		t.Fatalf("expected 2026-10 and 2026-12 only, got %d rows", len(cs.Inserts))
	}
	if cs.Inserts[0].Month != "2026-10" || cs.Inserts[1].Month != "2026-12" {
		t.Fatalf("occupied month must be skipped, got %s and %s", cs.Inserts[0].Month, cs.Inserts[1].Month)
	}
}

func TestPlanCreateInstallments(t *testing.T) {
	p := testPlanner(2026)
	in := Input{
		Name: "Internet", Amount: core.Money{Cents: 10000}, Group: "Geral",
		Installment: true, InstallmentIndex: 1, InstallmentCount: 3,
	}

	cs, err := p.PlanCreate(in, "2026-01", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(cs.Inserts))
	}
	wantMonths := []core.MonthRef{"2026-01", "2026-02", "2026-03"}
	for i, b := range cs.Inserts {
		if b.Month != wantMonths[i] {
			t.Fatalf("row %d at %s, want %s", i, b.Month, wantMonths[i])
		}
		if !b.Installment || b.InstallmentIndex != i+1 || b.InstallmentCount != 3 {
			t.Fatalf("row %d numbering %d/%d", i, b.InstallmentIndex, b.InstallmentCount)
		}
	}
}

func TestPlanCreateInstallmentsYearRollover(t *testing.T) {
	p := testPlanner(2026)
	in := Input{
		Name: "Sofa", Amount: core.Money{Cents: 50000}, Group: "Geral",
		Installment: true, InstallmentIndex: 1, InstallmentCount: 4,
	}

	cs, err := p.PlanCreate(in, "2026-11", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMonths := []core.MonthRef{"2026-11", "2026-12", "2027-01", "2027-02"}
	if len(cs.Inserts) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(cs.Inserts))
	}
	for i, b := range cs.Inserts {
		if b.Month != wantMonths[i] {
			t.Fatalf("row %d at %s, want %s", i, b.Month, wantMonths[i])
		}
	}
}

func TestPlanCreateInstallmentsMidSeries(t *testing.T) {
	p := testPlanner(2026)
	in := Input{
		Name: "Geladeira", Amount: core.Money{Cents: 25000}, Group: "Geral",
		Installment: true, InstallmentIndex: 5, InstallmentCount: 7,
	}

	cs, err := p.PlanCreate(in, "2026-06", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 3 {
		t.Fatalf("expected installments 5..7, got %d rows", len(cs.Inserts))
	}
	if cs.Inserts[0].InstallmentIndex != 5 || cs.Inserts[2].InstallmentIndex != 7 {
		t.Fatalf("numbering %d..%d", cs.Inserts[0].InstallmentIndex, cs.Inserts[2].InstallmentIndex)
	}
}

func TestPlanCreateFixedWithInstallmentNumbering(t *testing.T) {
	p := testPlanner(2026)
	in := Input{
		Name: "Carro", Amount: core.Money{Cents: 90000}, Group: "Geral",
		Fixed: true, Installment: true, InstallmentIndex: 1, InstallmentCount: 2,
	}

	cs, err := p.PlanCreate(in, "2026-10", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(cs.Inserts))
	}
	// Numbering increments while it lasts, then drops off.
	if cs.Inserts[0].InstallmentIndex != 1 || cs.Inserts[1].InstallmentIndex != 2 {
		t.Fatalf("numbering %d, %d", cs.Inserts[0].InstallmentIndex, cs.Inserts[1].InstallmentIndex)
	}
	if cs.Inserts[2].Installment {
		t.Fatalf("rows past the final installment must not be numbered")
	}
}

func TestPlanCreateReferenceOutsideCalendar(t *testing.T) {
	p := testPlanner(2026)
	in := Input{Name: "Seguro", Amount: core.Money{Cents: 5000}, Group: "Geral", Fixed: true}

	cs, err := p.PlanCreate(in, "2027-03", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Inserts) != 1 || cs.Inserts[0].Month != "2027-03" {
		t.Fatalf("expected single-row fallback, got %d rows", len(cs.Inserts))
	}
}

func TestPlanCreateRejectsInvalidInput(t *testing.T) {
	p := testPlanner(2026)
	cases := []Input{
		{Name: "", Amount: core.Money{Cents: 1}, Group: "Geral"},
		{Name: "a", Amount: core.Money{Cents: -1}, Group: "Geral"},
		{Name: "a", Amount: core.Money{Cents: 1}, Group: ""},
		{Name: "a", Amount: core.Money{Cents: 1}, Group: "g", Installment: true, InstallmentIndex: 3, InstallmentCount: 2},
	}
	for i, in := range cases {
		if _, err := p.PlanCreate(in, "2026-01", nil); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

// installmentFixture builds the three-row "Internet" series from the
// create path.
func installmentFixture(t *testing.T, p Planner) []core.Bill {
	t.Helper()
	cs, err := p.PlanCreate(Input{
		Name: "Internet", Amount: core.Money{Cents: 10000}, Group: "Geral",
		Installment: true, InstallmentIndex: 1, InstallmentCount: 3,
	}, "2026-01", nil)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return cs.Inserts
}

func TestPlanEditCascadesForward(t *testing.T) {
	p := testPlanner(2026)
	bills := installmentFixture(t, p)

	// Rename from the second row on
	in := Input{Name: "Internet Fibra", Amount: core.Money{Cents: 12000}, Group: "Geral"}
	cs, err := p.PlanEdit(in, bills[1], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Updates) != 2 || len(cs.Inserts) != 0 {
		t.Fatalf("expected 2 updates, got %d updates / %d inserts", len(cs.Updates), len(cs.Inserts))
	}
	for _, u := range cs.Updates {
		if u.Name != "Internet Fibra" || u.Amount.Cents != 12000 {
			t.Fatalf("sibling not rewritten: %+v", u)
		}
		if u.Month.Before(bills[1].Month) {
			t.Fatalf("row before the edited month must not appear in the cascade")
		}
	}
	// The sync payload is exactly the cascade, not the whole collection.
	if got := len(cs.Bills()); got != 2 {
		t.Fatalf("sync payload has %d rows, want 2", got)
	}
}

func TestPlanEditPreservesPerRowState(t *testing.T) {
	p := testPlanner(2026)
	bills := installmentFixture(t, p)
	bills[2].Status = core.StatusPaid

	in := Input{Name: "Internet", Amount: core.Money{Cents: 15000}, Group: "Geral"}
	cs, err := p.PlanEdit(in, bills[0], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Updates) != 3 {
		t.Fatalf("expected all 3 rows updated, got %d", len(cs.Updates))
	}
	for i, u := range cs.Updates {
		if u.Status != bills[i].Status {
			t.Fatalf("row %d status changed from %s to %s", i, bills[i].Status, u.Status)
		}
		if u.InstallmentIndex != bills[i].InstallmentIndex || u.InstallmentCount != bills[i].InstallmentCount {
			t.Fatalf("row %d numbering rewritten", i)
		}
	}
}

func TestPlanEditNoFutureSiblings(t *testing.T) {
	p := testPlanner(2026)
	bills := installmentFixture(t, p)

	in := Input{Name: "Internet", Amount: core.Money{Cents: 9000}, Group: "Geral"}
	cs, err := p.PlanEdit(in, bills[2], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the row itself; nothing earlier is touched.
	if len(cs.Updates) != 1 || cs.Updates[0].ID != bills[2].ID {
		t.Fatalf("expected only the edited row, got %d updates", len(cs.Updates))
	}
}

func TestPlanEditFixedOnGeneratesMissingMonths(t *testing.T) {
	p := testPlanner(2026)
	cs, err := p.PlanCreate(Input{
		Name: "Luz", Amount: core.Money{Cents: 20000}, Group: "Geral",
	}, "2026-09", nil)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	bills := cs.Inserts
	bills[0].Status = core.StatusPaid

	in := Input{Name: "Luz", Amount: core.Money{Cents: 20000}, Group: "Geral", Fixed: true}
	edit, err := p.PlanEdit(in, bills[0], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edit.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(edit.Updates))
	}
	if !edit.Updates[0].Fixed {
		t.Fatalf("edited row must carry the fixed flag")
	}
	if len(edit.Inserts) != 3 {
		t.Fatalf("expected rows for 2026-10..2026-12, got %d", len(edit.Inserts))
	}
	for _, b := range edit.Inserts {
		if b.Status != core.StatusPending {
			t.Fatalf("generated rows are always pending, got %s", b.Status)
		}
		if b.SeriesID != edit.Updates[0].SeriesID {
			t.Fatalf("generated rows must join the series")
		}
		if !b.Month.Before("2027-01") || b.Month.Before("2026-10") {
			t.Fatalf("unexpected generated month %s", b.Month)
		}
	}
}

func TestPlanEditFixedOnSkipsExistingMonths(t *testing.T) {
	p := testPlanner(2026)
	bills := installmentFixture(t, p) // occupies 2026-01..03

	in := Input{Name: "Internet", Amount: core.Money{Cents: 10000}, Group: "Geral", Fixed: true}
	cs, err := p.PlanEdit(in, bills[0], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 02 and 03 exist; only 04..12 are generated.
	if len(cs.Inserts) != 9 {
		t.Fatalf("expected 9 generated rows, got %d", len(cs.Inserts))
	}
	if cs.Inserts[0].Month != "2026-04" {
		t.Fatalf("generation must start after the occupied months, got %s", cs.Inserts[0].Month)
	}
}

func TestPlanEditStampsSeriesIDOnLegacyRows(t *testing.T) {
	p := testPlanner(2026)
	bills := []core.Bill{
		{ID: "a", Month: "2026-01", Name: "Agua", Group: "Geral", Amount: core.Money{Cents: 1}, Status: core.StatusPending},
		{ID: "b", Month: "2026-02", Name: "Agua", Group: "Geral", Amount: core.Money{Cents: 1}, Status: core.StatusPending},
	}

	in := Input{Name: "Agua", Amount: core.Money{Cents: 2}, Group: "Geral"}
	cs, err := p.PlanEdit(in, bills[0], bills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs.Updates) != 2 {
		t.Fatalf("expected both legacy rows in the cascade, got %d", len(cs.Updates))
	}
	if cs.Updates[0].SeriesID == "" || cs.Updates[0].SeriesID != cs.Updates[1].SeriesID {
		t.Fatalf("legacy rows must receive a shared series id")
	}
}

func TestPlanEditUnknownBill(t *testing.T) {
	p := testPlanner(2026)
	ghost := core.Bill{ID: "ghost", Month: "2026-01", Name: "x", Group: "g", Amount: core.Money{Cents: 1}, Status: core.StatusPending}
	in := Input{Name: "x", Amount: core.Money{Cents: 1}, Group: "g"}
	if _, err := p.PlanEdit(in, ghost, nil); err == nil {
		t.Fatalf("expected error for bill missing from the collection")
	}
}
