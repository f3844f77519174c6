package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/service"
)

func newBooksCommand(ctx *commandContext) *cobra.Command {
	var params service.ListParams

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List catalog records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd.Context(), func(svc *service.CatalogService) error {
				page := svc.ListBooks(cmd.Context(), params)
				if ctx.opts.json {
					return writeJSON(cmd, page)
				}
				if len(page.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(page.Items))
				for _, b := range page.Items {
					rows = append(rows, bookRow(b))
				}
				printTable(cmd, bookHeaders, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records\n", len(page.Items), page.Total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&params.Offset, "offset", 0, "Records to skip")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Maximum records to show (0 for all)")
	return cmd
}

var bookHeaders = []string{"ID", "Title", "Author", "Pages", "Genre", "Pace", "Plot", "Mood"}

func bookRow(b *domain.Book) []string {
	pages := "-"
	if n, ok := b.PageCount(); ok {
		pages = strconv.Itoa(n)
	}
	value := func(f domain.Field) string {
		v, _ := b.Value(f)
		return orDash(v)
	}
	return []string{
		b.ID,
		orDash(b.Title()),
		orDash(b.Author()),
		pages,
		value(domain.FieldGenreIntent),
		value(domain.FieldPace),
		value(domain.FieldPlotCharacter),
		value(domain.FieldMoodFinish),
	}
}
