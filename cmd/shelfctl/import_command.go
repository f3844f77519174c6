package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/shelfmatch/internal/csvimport"
	"github.com/listenupapp/shelfmatch/internal/ingest"
	"github.com/listenupapp/shelfmatch/internal/service"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Ingest a CSV file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, header, err := csvimport.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			return ctx.withCatalog(cmd.Context(), func(svc *service.CatalogService) error {
				result, err := svc.Ingest(cmd.Context(), rows)
				if err != nil {
					return err
				}
				if ctx.opts.json {
					return writeJSON(cmd, struct {
						*ingest.Result
						IgnoredColumns []string `json:"ignored_columns"`
					}{result, header.Ignored})
				}
				printImportResult(cmd, result, header.Ignored)
				return nil
			})
		},
	}
}

func printImportResult(cmd *cobra.Command, result *ingest.Result, ignored []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Summary.Message)
	if len(ignored) > 0 {
		fmt.Fprintf(out, "Ignored columns: %s\n", strings.Join(ignored, ", "))
	}

	if len(result.Conflicted) > 0 {
		rows := make([][]string, 0, len(result.Conflicted))
		for _, o := range result.Conflicted {
			fields := make([]string, 0, len(o.Differences))
			for _, f := range o.Differences.Fields() {
				fields = append(fields, string(f))
			}
			rows = append(rows, []string{strconv.Itoa(o.Row), o.ID, o.Title, strings.Join(fields, ", ")})
		}
		fmt.Fprintln(out, "Conflicts:")
		printTable(cmd, []string{"Row", "ID", "Title", "Changed"}, rows, []columnAlignment{alignRight})
	}

	if len(result.Rejected) > 0 {
		rows := make([][]string, 0, len(result.Rejected))
		for _, r := range result.Rejected {
			rows = append(rows, []string{strconv.Itoa(r.Row), string(r.Code), r.Message})
		}
		fmt.Fprintln(out, "Rejected:")
		printTable(cmd, []string{"Row", "Code", "Reason"}, rows, []columnAlignment{alignRight})
	}
}
