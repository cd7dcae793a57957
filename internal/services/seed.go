package services

import (
	"contas/internal/core"
	"contas/internal/series"
)

// DefaultExtraGroup is the group excluded from monthly committed totals.
const DefaultExtraGroup = "Extra"

// SeedGroups is the initial group list for a first run with no local
// snapshot and an empty remote store.
func SeedGroups() []string {
	return []string{"Geral", DefaultExtraGroup}
}

// SeedBills expands a few fixed starter series over the calendar so a
// first run shows a populated year instead of an empty tracker.
func SeedBills(planner series.Planner) []core.Bill {
	if len(planner.Calendar) == 0 {
		return nil
	}
	start := planner.Calendar[0]
	templates := []series.Input{
		{Name: "Aluguel", Amount: core.Money{Cents: 120000}, Group: "Geral", Fixed: true},
		{Name: "Internet", Amount: core.Money{Cents: 9990}, Group: "Geral", Fixed: true},
		{Name: "Energia", Amount: core.Money{Cents: 15000}, Group: "Geral", Fixed: true},
	}

	var bills []core.Bill
	for _, tpl := range templates {
		cs, err := planner.PlanCreate(tpl, start, bills)
		if err != nil {
			continue
		}
		bills = append(bills, cs.Inserts...)
	}
	return bills
}
