package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contas/internal/services"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Force a full upsert of the local collection to the remote store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				if err := o.ForceSync(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("Full sync complete")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync indicator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				o.Flush()
				st := o.Status()
				fmt.Printf("state: %s\n", st.State)
				if !st.LastSync.IsZero() {
					fmt.Printf("last sync: %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
				}
				if st.LastError != "" {
					fmt.Printf("last error: %s\n", st.LastError)
				}
				return nil
			})
		},
	}
}
