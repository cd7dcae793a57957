package core

const (
	FilterAll     StatusFilter = "all"
	FilterPending StatusFilter = StatusFilter(StatusPending)
	FilterPaid    StatusFilter = StatusFilter(StatusPaid)
)

type (
	// StatusFilter narrows a month view to one payment state.
	StatusFilter string

	// MonthlyStats sums the committed bills of one month. Bills in the
	// designated extra group are tracked but not counted here.
	MonthlyStats struct {
		Total   Money
		Paid    Money
		Pending Money
	}

	// GroupTotal is one payer/category bucket of a filtered view with its
	// own subtotal. The extra group is always included here even though it
	// is excluded from MonthlyStats.
	GroupTotal struct {
		Name  string
		Bills []Bill
		Total Money
	}
)

// FilterBills returns the bills of the given month matching the status
// filter, preserving input order.
func FilterBills(bills []Bill, month MonthRef, filter StatusFilter) []Bill {
	var out []Bill
	for _, b := range bills {
		if b.Month != month {
			continue
		}
		if filter != "" && filter != FilterAll && b.Status != Status(filter) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ComputeMonthlyStats sums amounts over the given month, split by status,
// excluding bills whose group equals extraGroup.
func ComputeMonthlyStats(bills []Bill, month MonthRef, extraGroup string) MonthlyStats {
	var stats MonthlyStats
	for _, b := range bills {
		if b.Month != month || b.Group == extraGroup {
			continue
		}
		stats.Total.Cents += b.Amount.Cents
		if b.Status == StatusPaid {
			stats.Paid.Cents += b.Amount.Cents
		} else {
			stats.Pending.Cents += b.Amount.Cents
		}
	}
	return stats
}

// GroupBills partitions an already filtered list by group name, preserving
// first-seen group order, with a per-group subtotal.
func GroupBills(bills []Bill) []GroupTotal {
	index := map[string]int{}
	var out []GroupTotal
	for _, b := range bills {
		i, ok := index[b.Group]
		if !ok {
			i = len(out)
			index[b.Group] = i
			out = append(out, GroupTotal{Name: b.Group})
		}
		out[i].Bills = append(out[i].Bills, b)
		out[i].Total.Cents += b.Amount.Cents
	}
	return out
}
