package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"quotescraper/internal/history"
	"quotescraper/internal/scrape"
	"quotescraper/lib/serviceutil"
	"quotescraper/lib/telemetry"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var (
	watchInterval *time.Duration
	watchRecord   *bool
)

func init() {
	watchInterval = watchCmd.Flags().Duration("interval", time.Minute, "The time between rounds of quotes.")
	watchRecord = watchCmd.Flags().Bool("record", false, "Records every round in the configured history database.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch TICKER[:EXCHANGE]... [--interval 1m] [--record]",
	Short: "Prints quotes for the given stocks every interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		stocks, err := parseTokens(args)
		if err != nil {
			return err
		}
		if *watchInterval <= 0 {
			return fmt.Errorf("the interval must be positive, got %s", *watchInterval)
		}
		client, err := newClient(config)
		if err != nil {
			return err
		}

		ctx := serviceutil.SignalContext(cmd.Context())
		telemetry.InstrumentPerfStats(ctx, time.Second*15)

		var recorder roundRecorder
		if *watchRecord {
			store, err := history.Open(ctx, config.HistoryDB())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()
			recorder = store
		}

		w := watcher{
			out:      cmd.OutOrStdout(),
			client:   client,
			recorder: recorder,
			now:      time.Now,
		}
		w.run(ctx, stocks, *watchInterval)
		return nil
	},
}

type roundRecorder interface {
	Record(ctx context.Context, pollId string, stock scrape.Stock, at time.Time, m scrape.ResolutionMap) error
}

type watcher struct {
	out    io.Writer
	client resolver
	// nil if rounds are not recorded
	recorder roundRecorder
	now      func() time.Time
}

// run polls once immediately and then every interval until ctx is done.
func (w watcher) run(ctx context.Context, stocks []scrape.Stock, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.round(ctx, stocks)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w watcher) round(ctx context.Context, stocks []scrape.Stock) {
	pollId, err := random.String(8)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate poll id", "err", err)
		pollId = fmt.Sprint(w.now().UnixNano())
	}
	at := w.now()

	fmt.Fprintf(w.out, "[%s]\n", at.Format(time.TimeOnly))
	for _, stock := range stocks {
		if ctx.Err() != nil {
			return
		}
		m := w.client.ResolveStock(ctx, stock, scrape.Price, scrape.PercentChange)
		fmt.Fprintln(w.out, scrape.FormatQuote(stock, m))

		if w.recorder == nil {
			continue
		}
		err := w.recorder.Record(ctx, pollId, stock, at, m)
		if err != nil {
			slog.WarnContext(ctx, "failed to record quote", "stock", stock.String(), "err", err)
		}
	}
}
