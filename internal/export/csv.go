// Package export renders the filtered bill view as a CSV document.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"contas/internal/core"
)

var header = []string{"Name", "Amount", "Group", "Installment", "Fixed", "Status"}

// WriteCSV writes the bills with the fixed header row. Amounts carry
// exactly two decimal digits; the installment column is "current/total"
// or a dash for non-installment rows.
func WriteCSV(w io.Writer, bills []core.Bill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bills {
		installment := "-"
		if b.Installment {
			installment = fmt.Sprintf("%d/%d", b.InstallmentIndex, b.InstallmentCount)
		}
		record := []string{
			b.Name,
			b.Amount.Format(),
			b.Group,
			installment,
			fmt.Sprintf("%t", b.Fixed),
			string(b.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row for %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns the export file name for a month view.
func Filename(month core.MonthRef) string {
	return fmt.Sprintf("contas-%s.csv", month)
}
