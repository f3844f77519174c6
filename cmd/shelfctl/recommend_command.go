package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/service"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var (
		q      domain.PreferenceQuery
		length string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the catalog against reading preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Length = domain.LengthCategory(length)
			return ctx.withCatalog(cmd.Context(), func(svc *service.CatalogService) error {
				ranking, err := svc.Recommend(cmd.Context(), q)
				if err != nil {
					return err
				}
				books := ranking.Books
				if top > 0 && len(books) > top {
					books = books[:top]
				}
				if ctx.opts.json {
					ranking.Books = books
					return writeJSON(cmd, ranking)
				}
				if len(books) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(books))
				for _, s := range books {
					matched := make([]string, 0, len(s.Matched))
					for _, f := range s.Matched {
						matched = append(matched, string(f))
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d/%d", s.Score, ranking.MaxScore),
						s.Book.ID,
						orDash(s.Book.Title()),
						orDash(s.Book.Author()),
						orDash(strings.Join(matched, ", ")),
					})
				}
				printTable(cmd, []string{"Score", "ID", "Title", "Author", "Matched"}, rows, []columnAlignment{alignRight})
				fmt.Fprintf(cmd.OutOrStdout(), "%d records ranked\n", len(ranking.Books))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.GenreIntent, "genre", "", "Preferred genre intent")
	flags.StringVar(&q.Pace, "pace", "", "Preferred pace")
	flags.StringVar(&q.PlotCharacter, "plot", "", "Plot or character driven")
	flags.StringVar(&q.MoodFinish, "mood", "", "Preferred mood at the finish")
	flags.StringVar(&length, "length", "", "Length band (short, medium, long, epic, any)")
	flags.IntVar(&top, "top", 0, "Show only the best N records (0 for all)")
	return cmd
}
