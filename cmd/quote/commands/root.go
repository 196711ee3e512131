package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"quotescraper/internal/scrape"
	"quotescraper/lib/telemetry"

	"github.com/spf13/cobra"
)

const serviceName = "quote"

var (
	verbose     *bool
	parallelism *int
	timeout     *int
	sourceNames *[]string

	config Config
	tel    telemetry.Telemetry
)

func init() {
	flags := rootCmd.PersistentFlags()
	verbose = flags.BoolP("verbose", "v", false, "Log debug output and dump http exchanges when configured.")
	parallelism = flags.Int("parallel", 0, "The amount of sources visited at once, 1 is sequential (default from config).")
	timeout = flags.Int("timeout", 0, "The per request timeout in seconds (default from config).")
	sourceNames = flags.StringSlice("sources", nil, "The sources to use, all of them if empty (default from config).")
}

var rootCmd = &cobra.Command{
	Use:   "quote [--] TICKER[:EXCHANGE]...",
	Short: "quote scrapes the price and percent change of stocks from several finance sites.",
	Long: `quote scrapes the price and percent change of stocks from several finance sites.

A ticker spelled like a subcommand (attrs, watch, history, help) runs that
subcommand instead, put -- before the tickers to quote it:

  quote -- watch help:NYSE`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), serviceName)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to setup telemetry, continuing without it", "err", err)
		}

		config, err = LoadConfig()
		if err != nil {
			return err
		}
		config = config.WithFlags(cmd)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return tel.Shutdown(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		stocks, err := parseTokens(args)
		if err != nil {
			return err
		}
		client, err := newClient(config)
		if err != nil {
			return err
		}
		printQuotes(cmd.Context(), cmd.OutOrStdout(), client, stocks)
		return nil
	},
}

// ExecuteContext runs the cli, printing the error and exiting with status 1
// if a command fails.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errNoTickers = errors.New("no tickers were provided")

func parseTokens(tokens []string) ([]scrape.Stock, error) {
	if len(tokens) == 0 {
		return nil, errNoTickers
	}
	stocks := make([]scrape.Stock, len(tokens))
	for i, token := range tokens {
		stock, err := scrape.ParseToken(token)
		if err != nil {
			return nil, err
		}
		stocks[i] = stock
	}
	return stocks, nil
}

type quoter interface {
	Quote(ctx context.Context, stock scrape.Stock) string
}

func printQuotes(ctx context.Context, out io.Writer, client quoter, stocks []scrape.Stock) {
	for _, stock := range stocks {
		fmt.Fprintln(out, client.Quote(ctx, stock))
	}
}
