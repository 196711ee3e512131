package commands

import (
	"log/slog"
	"time"

	"quotescraper/internal/scrape"
	"quotescraper/internal/sources"
	"quotescraper/lib/configutil"
	configlibsql "quotescraper/lib/configutil/libsql"
	"quotescraper/lib/restyutil"
	"quotescraper/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	UserAgent        string              `json:"user_agent"`
	TimeoutSeconds   int                 `json:"timeout_seconds"`
	Parallelism      int                 `json:"parallelism"`
	Sources          []string            `json:"sources"`
	CloudflareBypass bool                `json:"cloudflare_bypass"`
	DumpDir          string              `json:"dump_dir"`
	History          configlibsql.Struct `json:"history"`
}

func DefaultConfig() Config {
	return Config{
		UserAgent:      scrape.DefaultUserAgent,
		TimeoutSeconds: 30,
		Parallelism:    1,
		DumpDir:        "<dev_state>/resty",
	}
}

// HistoryDB is the configured history database, a local quote_history.db
// when quote.json5 names neither a file nor a url.
func (c Config) HistoryDB() configlibsql.Struct {
	if !c.History.Configured() {
		return configlibsql.Struct{File: "quote_history.db"}
	}
	return c.History
}

// LoadConfig reads quote.json5 from the cwd or any of its parents, falling
// back to the defaults for anything it leaves out.
func LoadConfig() (Config, error) {
	return configutil.ReadRecursivelyOr("quote.json5", DefaultConfig())
}

// WithFlags overrides the config with the persistent flags the user set.
func (c Config) WithFlags(cmd *cobra.Command) Config {
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		c.Parallelism = *parallelism
	}
	if flags.Changed("timeout") {
		c.TimeoutSeconds = *timeout
	}
	if flags.Changed("sources") {
		c.Sources = *sourceNames
	}
	return c
}

func newClient(c Config) (scrape.Client, error) {
	enabled, err := sources.Lookup(c.Sources)
	if err != nil {
		return scrape.Client{}, err
	}

	var dump restyutil.InstrumentOutput
	if *verbose && c.DumpDir != "" {
		out, err := restyutil.NewFilesystemOutput(c.DumpDir)
		if err != nil {
			slog.Warn("http exchanges will not be dumped", "dir", c.DumpDir, "err", err)
		} else {
			dump = out
		}
	}

	api := telemetry.SlogAPI{}
	provider := scrape.NewHttpProvider(scrape.HttpProviderOptions{
		UserAgent:        c.UserAgent,
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.CloudflareBypass,
		Telemetry:        api,
		Dump:             dump,
	})
	engine := scrape.NewEngine(provider, scrape.EngineOptions{
		Telemetry:   api,
		Parallelism: c.Parallelism,
	})
	return scrape.NewClient(engine, enabled), nil
}
