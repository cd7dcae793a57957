package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"contas/internal/cli"
	"contas/internal/core"
	"contas/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "contas",
	Short: "Household bill tracker",
	Long: `contas tracks recurring and installment household bills month by
month, keeps a local snapshot for offline use and syncs the collection
to a remote spreadsheet in the background.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		listCmd(),
		addCmd(),
		editCmd(),
		payCmd(),
		rmCmd(),
		groupsCmd(),
		exportCmd(),
		syncCmd(),
		statusCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withOrchestrator wires config, snapshot and remote backend, starts the
// orchestrator, runs fn, and waits for in-flight syncs before exiting.
func withOrchestrator(cmd *cobra.Command, fn func(*services.Orchestrator) error) error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	orch, cleanup, err := cli.BuildOrchestrator(cmd.Context(), logger, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(orch)
}

// currentMonth is the default --month value.
func currentMonth() string {
	now := time.Now()
	return string(core.NewMonthRef(now.Year(), int(now.Month())))
}

func parseMonthFlag(s string) (core.MonthRef, error) {
	month, err := core.ParseMonthRef(s)
	if err != nil {
		return "", fmt.Errorf("invalid --month %q: expected YYYY-MM", s)
	}
	return month, nil
}

func parseFilterFlag(s string) (core.StatusFilter, error) {
	switch core.StatusFilter(s) {
	case core.FilterAll, core.FilterPending, core.FilterPaid:
		return core.StatusFilter(s), nil
	default:
		return "", fmt.Errorf("invalid --filter %q: expected all, pending or paid", s)
	}
}
