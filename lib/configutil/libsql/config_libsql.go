package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"

	devenv "quotescraper/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct selects a database, either a local sqlite file or a remote libsql
// server. File takes precedence when both are set.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) Configured() bool {
	return config.File != "" || config.Url != ""
}

func (config Struct) OpenDB() (*sql.DB, error) {
	switch {
	case config.File != "":
		return config.openFile()
	case config.Url != "":
		return config.openRemote()
	}
	return nil, fmt.Errorf("neither a file nor a url was specified")
}

func (config Struct) openFile() (*sql.DB, error) {
	dbpath, statErr := devenv.ResolvePath(config.File)
	if statErr != nil {
		return nil, statErr
	}

	_, statErr = os.Stat(dbpath)
	isNewDb := os.IsNotExist(statErr)
	if isNewDb {
		f, err := os.Create(dbpath)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (config Struct) openRemote() (*sql.DB, error) {
	dsn, err := config.remoteDsn()
	if err != nil {
		return nil, err
	}
	return sql.Open("libsql", dsn)
}

func (config Struct) remoteDsn() (string, error) {
	if config.AuthToken == "" {
		return config.Url, nil
	}
	parsed, err := url.Parse(config.Url)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	query := parsed.Query()
	query.Set("authToken", config.AuthToken)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
