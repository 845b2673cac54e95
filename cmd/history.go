package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/yr/internal/models"
	"github.com/joescharf/yr/internal/output"
	"github.com/joescharf/yr/internal/store"
)

var (
	historyYear   int64
	historyLimit  int
	historySource string
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "List recorded reviews",
	Long:    "List recorded reviews, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var year *int64
		if cmd.Flags().Changed("year") {
			year = &historyYear
		}
		return historyListRun(year, historyLimit, historySource)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyClearRun()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyShowRun(args[0])
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often each review has been given",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	historyCmd.Flags().Int64Var(&historyYear, "year", 0, "Only show reviews of this year")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of reviews to show (0 = all)")
	historyCmd.Flags().StringVar(&historySource, "source", "", "Only show reviews from this source (cli, api, mcp)")
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

// historyStore opens the store, refusing when history is turned off.
func historyStore() (store.Store, error) {
	if !viper.GetBool("history.enabled") {
		return nil, fmt.Errorf("review history is disabled (set history.enabled: true)")
	}
	return getStore()
}

func historyListRun(year *int64, limit int, source string) error {
	s, err := historyStore()
	if err != nil {
		return err
	}

	src, err := models.ParseSourceFilter(source)
	if err != nil {
		return err
	}

	reviews, err := s.ListReviews(context.Background(), store.ReviewListFilter{
		Year:   year,
		Source: src,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		ui.Info("No reviews recorded. Use 'yr review <year>' to add one.")
		return nil
	}

	table := ui.Table([]string{"ID", "Year", "Review", "Source", "When"})
	for _, r := range reviews {
		_ = table.Append([]string{
			r.ID,
			strconv.FormatInt(r.Year, 10),
			output.ResultColor(r.Result, r.Special),
			string(r.Source),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func historyShowRun(id string) error {
	s, err := historyStore()
	if err != nil {
		return err
	}

	r, err := s.GetReview(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(r.ID), output.ResultColor(r.Result, r.Special))
	fmt.Fprintf(ui.Out, "  Year:    %d\n", r.Year)
	fmt.Fprintf(ui.Out, "  Source:  %s\n", r.Source)
	fmt.Fprintf(ui.Out, "  When:    %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if r.Special {
		ui.VerboseLog("%d has a fixed review", r.Year)
	}
	return nil
}

func historyClearRun() error {
	s, err := historyStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete all recorded reviews")
		return nil
	}

	n, err := s.DeleteReviews(context.Background())
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	ui.Success("Deleted %d review(s)", n)
	return nil
}

func statsRun() error {
	s, err := historyStore()
	if err != nil {
		return err
	}

	counts, err := s.ReviewStats(context.Background())
	if err != nil {
		return err
	}

	if len(counts) == 0 {
		ui.Info("No reviews recorded.")
		return nil
	}

	total := 0
	table := ui.Table([]string{"Review", "Count"})
	for _, c := range counts {
		total += c.Count
		_ = table.Append([]string{
			output.ResultColor(c.Result, c.Special),
			strconv.Itoa(c.Count),
		})
	}
	_ = table.Render()
	fmt.Fprintf(ui.Out, "\nTotal: %s\n", output.Green(strconv.Itoa(total)))
	return nil
}
