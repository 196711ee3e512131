package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"quotescraper/internal/history"
	"quotescraper/internal/scrape"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 10, "The amount of rounds to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history TICKER [--limit N]",
	Short: "Prints the quotes recorded by `watch --record` for a ticker, newest first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stock, err := scrape.ParseToken(args[0])
		if err != nil {
			return err
		}
		store, err := history.Open(cmd.Context(), config.HistoryDB())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		return renderHistory(cmd.Context(), cmd.OutOrStdout(), store, stock.Ticker, *historyLimit)
	},
}

type snapshotSource interface {
	Recent(ctx context.Context, ticker string, limit int) ([]history.Snapshot, error)
}

func renderHistory(ctx context.Context, out io.Writer, store snapshotSource, ticker string, limit int) error {
	snapshots, err := store.Recent(ctx, ticker, limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintf(out, "nothing was recorded for %s\n", ticker)
		return nil
	}

	header := table.Row{"Time", "Poll"}
	for _, attr := range scrape.AllAttrs() {
		header = append(header, attr.String())
	}

	t := newTable(out)
	t.AppendHeader(header)
	for _, snapshot := range snapshots {
		row := table.Row{snapshot.Time.Format(time.DateTime), snapshot.PollId}
		for _, attr := range scrape.AllAttrs() {
			value, ok := snapshot.Values[attr]
			if !ok {
				value = scrape.Placeholder
			}
			row = append(row, value)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
