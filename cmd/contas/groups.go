package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"contas/internal/services"
)

func groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage payer/category groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				for _, g := range o.Groups() {
					fmt.Println(g)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(groupsAddCmd(), groupsRenameCmd(), groupsRmCmd())
	return cmd
}

func groupsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				return o.AddGroup(cmd.Context(), args[0])
			})
		},
	}
}

func groupsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a group, rewriting it on every bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				return o.RenameGroup(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func groupsRmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a group and every bill in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("deleting a group removes all of its bills; pass --yes to confirm")
			}
			return withOrchestrator(cmd, func(o *services.Orchestrator) error {
				return o.DeleteGroup(cmd.Context(), args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
