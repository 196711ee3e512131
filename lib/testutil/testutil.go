package testutil

import (
	"database/sql"
	"strings"
	"testing"

	devenv "quotescraper/dev/env"
	"quotescraper/lib/telemetry"

	_ "modernc.org/sqlite"
)

type DBParams struct {
	// if unspecified, it will skip applying a schema
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// OpenDB opens a sqlite database for a test and closes it when the test ends.
// Debug logging is enabled when tests run with -v.
func OpenDB(t testing.TB, params DBParams) *sql.DB {
	t.Helper()
	telemetry.InitSlog(testing.Verbose())

	dbpath := ":memory:"
	if params.Path != "" && params.Path != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(params.Path)
		if err != nil {
			t.Fatal(err)
		}
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is a separate database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlite.Close() })

	if params.Schema != "" {
		_, err = sqlite.Exec(params.Schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}
	return sqlite
}
