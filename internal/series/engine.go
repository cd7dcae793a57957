// Package series plans the bill rows that a create or edit intent must
// insert or update to keep a fixed or installment series consistent
// across the calendar. It is pure computation over the in-memory
// collection; persistence and sync belong to the orchestrator.
package series

import (
	"fmt"

	"contas/internal/core"
)

type (
	// Calendar is the ordered sequence of months the tracker knows about.
	Calendar []core.MonthRef

	// Input carries the shared base fields of a save intent. Per-row state
	// (status of existing siblings, installment numbering) is never part
	// of an edit's rewrite.
	Input struct {
		Name             string
		Amount           core.Money
		Group            string
		Fixed            bool
		Installment      bool
		InstallmentIndex int
		InstallmentCount int
		Status           core.Status
		Notes            string
	}

	// ChangeSet is the exact outcome of planning: rows to insert and
	// existing rows rewritten. Its union is the remote sync payload;
	// untouched rows are never included.
	ChangeSet struct {
		Inserts []core.Bill
		Updates []core.Bill
	}

	// Planner generates series rows over a calendar. NewID must return a
	// unique opaque identifier per call.
	Planner struct {
		Calendar Calendar
		NewID    func() string
	}
)

// YearCalendar returns the twelve months of one year.
func YearCalendar(year int) Calendar {
	cal := make(Calendar, 0, 12)
	for m := 1; m <= 12; m++ {
		cal = append(cal, core.NewMonthRef(year, m))
	}
	return cal
}

// Bills returns updates followed by inserts, the full sync payload.
func (cs ChangeSet) Bills() []core.Bill {
	out := make([]core.Bill, 0, len(cs.Updates)+len(cs.Inserts))
	out = append(out, cs.Updates...)
	out = append(out, cs.Inserts...)
	return out
}

func (cs ChangeSet) Empty() bool {
	return len(cs.Inserts) == 0 && len(cs.Updates) == 0
}

// Validate rejects bad input before any planning happens. No partial
// state is ever produced from invalid input.
func (in Input) Validate() error {
	probe := core.Bill{
		ID:     "probe",
		Month:  core.NewMonthRef(1, 1),
		Name:   in.Name,
		Amount: in.Amount,
		Group:  in.Group,
		Status: in.status(),
	}
	if in.Installment {
		probe.Installment = true
		probe.InstallmentIndex = in.InstallmentIndex
		probe.InstallmentCount = in.InstallmentCount
	}
	return probe.Validate()
}

func (in Input) status() core.Status {
	if in.Status == "" {
		return core.StatusPending
	}
	return in.Status
}

// PlanCreate computes the rows for a new bill starting at the reference
// month. Months already occupied by a row with the same (name, group,
// month) are silently skipped; regeneration is idempotent.
func (p Planner) PlanCreate(in Input, ref core.MonthRef, existing []core.Bill) (ChangeSet, error) {
	if err := in.Validate(); err != nil {
		return ChangeSet{}, err
	}
	if err := ref.Validate(); err != nil {
		return ChangeSet{}, err
	}
	occupied := occupiedKeys(existing)
	seriesID := p.NewID()

	switch {
	case in.Fixed:
		months := p.monthsFrom(ref)
		if len(months) == 0 {
			// Reference month outside the calendar: degrade to one row.
			months = Calendar{ref}
		}
		return ChangeSet{Inserts: p.generateFixed(in, seriesID, months, occupied)}, nil

	case in.Installment && in.InstallmentCount > 1:
		return ChangeSet{Inserts: p.generateInstallments(in, seriesID, ref, occupied)}, nil

	default:
		row := p.newRow(in, seriesID, ref, in.status())
		if in.Installment {
			row.Installment = true
			row.InstallmentIndex = in.InstallmentIndex
			row.InstallmentCount = in.InstallmentCount
		}
		if _, dup := occupied[row.Key()]; dup {
			return ChangeSet{}, nil
		}
		return ChangeSet{Inserts: []core.Bill{row}}, nil
	}
}

// PlanEdit rewrites the shared fields of every future sibling of the
// original bill (same series, month >= original month) and, when the
// edit turns the fixed flag on, generates the missing months strictly
// after the original. Each sibling keeps its own status and installment
// numbering. Rows before the original month are never touched.
func (p Planner) PlanEdit(in Input, original core.Bill, existing []core.Bill) (ChangeSet, error) {
	if err := in.Validate(); err != nil {
		return ChangeSet{}, err
	}
	found := false
	for _, b := range existing {
		if b.ID == original.ID {
			found = true
			break
		}
	}
	if !found {
		return ChangeSet{}, fmt.Errorf("bill %s not in collection", original.ID)
	}

	seriesID := original.SeriesID
	if seriesID == "" {
		// Imported rows predate series ids; stamp one during the first
		// cascading edit so later cascades match exactly.
		seriesID = p.NewID()
	}

	var cs ChangeSet
	occupied := map[core.DedupeKey]struct{}{}
	for _, b := range existing {
		if original.SameSeries(b) && !b.Month.Before(original.Month) {
			updated := b
			updated.SeriesID = seriesID
			updated.Name = in.Name
			updated.Amount = in.Amount
			updated.Group = in.Group
			updated.Fixed = in.Fixed
			updated.Notes = in.Notes
			cs.Updates = append(cs.Updates, updated)
			occupied[updated.Key()] = struct{}{}
			continue
		}
		occupied[b.Key()] = struct{}{}
	}

	if in.Fixed && !original.Fixed {
		gen := Input{Name: in.Name, Amount: in.Amount, Group: in.Group, Fixed: true, Notes: in.Notes}
		for _, month := range p.monthsFrom(original.Month.Next()) {
			row := p.newRow(gen, seriesID, month, core.StatusPending)
			if _, dup := occupied[row.Key()]; dup {
				continue
			}
			occupied[row.Key()] = struct{}{}
			cs.Inserts = append(cs.Inserts, row)
		}
	}
	return cs, nil
}

// generateFixed emits one row per calendar month. When the installment
// flag is also set, rows are numbered incrementally from the requested
// index; months past the final installment carry no numbering.
func (p Planner) generateFixed(in Input, seriesID string, months Calendar, occupied map[core.DedupeKey]struct{}) []core.Bill {
	var out []core.Bill
	idx := in.InstallmentIndex
	for _, month := range months {
		numbered := in.Installment && idx <= in.InstallmentCount
		row := p.newRow(in, seriesID, month, in.status())
		if numbered {
			row.Installment = true
			row.InstallmentIndex = idx
			row.InstallmentCount = in.InstallmentCount
			idx++
		}
		if _, dup := occupied[row.Key()]; dup {
			continue
		}
		occupied[row.Key()] = struct{}{}
		out = append(out, row)
	}
	return out
}

// generateInstallments walks consecutive months, one per installment
// number, rolling over year boundaries. A duplicate month consumes its
// installment number but produces no row.
func (p Planner) generateInstallments(in Input, seriesID string, ref core.MonthRef, occupied map[core.DedupeKey]struct{}) []core.Bill {
	var out []core.Bill
	month := ref
	for i := in.InstallmentIndex; i <= in.InstallmentCount; i++ {
		row := p.newRow(in, seriesID, month, in.status())
		row.Installment = true
		row.InstallmentIndex = i
		row.InstallmentCount = in.InstallmentCount
		month = month.Next()
		if _, dup := occupied[row.Key()]; dup {
			continue
		}
		occupied[row.Key()] = struct{}{}
		out = append(out, row)
	}
	return out
}

func (p Planner) newRow(in Input, seriesID string, month core.MonthRef, status core.Status) core.Bill {
	return core.Bill{
		ID:       p.NewID(),
		SeriesID: seriesID,
		Month:    month,
		Name:     in.Name,
		Amount:   in.Amount,
		Group:    in.Group,
		Fixed:    in.Fixed,
		Status:   status,
		Notes:    in.Notes,
	}
}

// monthsFrom returns the calendar months at or after ref.
func (p Planner) monthsFrom(ref core.MonthRef) Calendar {
	var out Calendar
	for _, m := range p.Calendar {
		if !m.Before(ref) {
			out = append(out, m)
		}
	}
	return out
}

func occupiedKeys(bills []core.Bill) map[core.DedupeKey]struct{} {
	keys := make(map[core.DedupeKey]struct{}, len(bills))
	for _, b := range bills {
		keys[b.Key()] = struct{}{}
	}
	return keys
}
