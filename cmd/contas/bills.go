package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"contas/internal/core"
	"contas/internal/export"
	"contas/internal/series"
	"contas/internal/services"
)

func listCmd() *cobra.Command {
	var monthFlag, filterFlag string
	var grouped bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(monthFlag)
			if err != nil {
				return err
			}
			filter, err := parseFilterFlag(filterFlag)
			if err != nil {
				return err
			}
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				if grouped {
					printGrouped(o.GroupedForMonth(month, filter))
				} else {
					printBills(o.BillsForMonth(month, filter))
				}
				printStats(month, o.Stats(month))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&monthFlag, "month", currentMonth(), "month to list (YYYY-MM)")
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "status filter (all, pending, paid)")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group bills by payer/category")
	return cmd
}

func addCmd() *cobra.Command {
	var (
		monthFlag, name, amount, group, notes string
		fixed                                 bool
		installments, firstInstallment        int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bill, expanding fixed and installment series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(monthFlag)
			if err != nil {
				return err
			}
			money, err := core.ParseMoney(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			in := series.Input{
				Name:   name,
				Amount: money,
				Group:  group,
				Fixed:  fixed,
				Notes:  notes,
			}
			if installments > 1 {
				in.Installment = true
				in.InstallmentIndex = firstInstallment
				in.InstallmentCount = installments
			}
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				created, err := o.CreateBill(cmd.Context(), in, month)
				if err != nil {
					return err
				}
				fmt.Printf("Created %d bill(s) starting at %s\n", len(created), month)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&monthFlag, "month", currentMonth(), "reference month (YYYY-MM)")
	cmd.Flags().StringVar(&name, "name", "", "bill name")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 123.45")
	cmd.Flags().StringVar(&group, "group", "Geral", "payer/category group")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "open-ended recurring bill")
	cmd.Flags().IntVar(&installments, "installments", 0, "total installment count")
	cmd.Flags().IntVar(&firstInstallment, "first-installment", 1, "number of the first installment")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func editCmd() *cobra.Command {
	var name, amount, group, notes string
	var fixed bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a bill, cascading shared fields to future months",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				bill, ok := o.Bill(args[0])
				if !ok {
					return fmt.Errorf("bill %s not found", args[0])
				}
				in := series.Input{
					Name:   bill.Name,
					Amount: bill.Amount,
					Group:  bill.Group,
					Fixed:  bill.Fixed,
					Notes:  bill.Notes,
				}
				if cmd.Flags().Changed("name") {
					in.Name = name
				}
				if cmd.Flags().Changed("amount") {
					money, err := core.ParseMoney(amount)
					if err != nil {
						return fmt.Errorf("invalid --amount %q: %w", amount, err)
					}
					in.Amount = money
				}
				if cmd.Flags().Changed("group") {
					in.Group = group
				}
				if cmd.Flags().Changed("fixed") {
					in.Fixed = fixed
				}
				if cmd.Flags().Changed("notes") {
					in.Notes = notes
				}
				cs, err := o.EditBill(cmd.Context(), args[0], in)
				if err != nil {
					return err
				}
				fmt.Printf("Updated %d bill(s), created %d\n", len(cs.Updates), len(cs.Inserts))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new bill name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&group, "group", "", "new group")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "open-ended recurring bill")
	return cmd
}

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Toggle a bill between pending and paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				bill, err := o.ToggleStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s is now %s\n", bill.Name, bill.Status)
				return nil
			})
		},
	}
}

func rmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a single bill row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("deleting a bill is irreversible; pass --yes to confirm")
			}
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				return o.DeleteBill(cmd.Context(), args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func exportCmd() *cobra.Command {
	var monthFlag, filterFlag, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered month view as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := parseMonthFlag(monthFlag)
			if err != nil {
				return err
			}
			filter, err := parseFilterFlag(filterFlag)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = export.Filename(month)
			}
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				if err := export.WriteCSV(f, o.BillsForMonth(month, filter)); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&monthFlag, "month", currentMonth(), "month to export (YYYY-MM)")
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "status filter (all, pending, paid)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default contas-<month>.csv)")
	return cmd
}

func printBills(bills []core.Bill) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Amount", "Group", "Installment", "Fixed", "Status"})
	for _, b := range bills {
		installment := "-"
		if b.Installment {
			installment = fmt.Sprintf("%d/%d", b.InstallmentIndex, b.InstallmentCount)
		}
		t.AppendRow(table.Row{b.ID, b.Name, b.Amount.Format(), b.Group, installment, b.Fixed, b.Status})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Amount", Align: text.AlignRight},
	})
	t.Render()
}

func printGrouped(groups []core.GroupTotal) {
	for _, g := range groups {
		fmt.Printf("\n%s (%s)\n", g.Name, g.Total.Format())
		printBills(g.Bills)
	}
}

func printStats(month core.MonthRef, stats core.MonthlyStats) {
	fmt.Printf("\n%s  total %s  paid %s  pending %s\n",
		month, stats.Total.Format(), stats.Paid.Format(), stats.Pending.Format())
}
