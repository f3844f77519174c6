package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/shelfmatch/internal/service"
)

func newConflictsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List conflicts waiting for confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd.Context(), func(svc *service.CatalogService) error {
				entries := svc.ListConflicts(cmd.Context())
				if ctx.opts.json {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending conflicts")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					for _, f := range e.Differences.Fields() {
						ch := e.Differences[f]
						rows = append(rows, []string{e.ID, e.Title, string(f), orDash(ch.Old), orDash(ch.New)})
					}
				}
				printTable(cmd, []string{"ID", "Title", "Field", "Current", "Incoming"}, rows, nil)
				return nil
			})
		},
	}
}

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>...",
		Short: "Apply pending conflicts to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd.Context(), func(svc *service.CatalogService) error {
				result, err := svc.Confirm(cmd.Context(), args)
				if err != nil {
					return err
				}
				if ctx.opts.json {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if len(result.Updated) > 0 {
					fmt.Fprintf(out, "Updated: %s\n", strings.Join(result.Updated, ", "))
				}
				if len(result.NotFound) > 0 {
					fmt.Fprintf(out, "Not found: %s\n", strings.Join(result.NotFound, ", "))
				}
				fmt.Fprintf(out, "%d conflicts remaining\n", result.RemainingConflicts)
				return nil
			})
		},
	}
}
