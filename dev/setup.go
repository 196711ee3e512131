package main

import (
	"context"
	"fmt"
	"os"

	"quotescraper/internal/history"
	configlibsql "quotescraper/lib/configutil/libsql"
)

const (
	historyFile     = "<dev_state>/history.db"
	localConfigFile = "quote.local.json5"
)

func CreateHistoryDB() error {
	store, err := history.Open(context.Background(), configlibsql.Struct{File: historyFile})
	if err != nil {
		return err
	}
	fmt.Println("history database ready at", historyFile)
	return store.Close()
}

// WriteLocalConfig points the cli at the dev state, an existing local config
// is left alone.
func WriteLocalConfig() error {
	_, err := os.Stat(localConfigFile)
	if err == nil {
		fmt.Println("local config already exists at", localConfigFile)
		return nil
	}

	contents := fmt.Sprintf(`{
  // written by "go run ./dev", overrides quote.json5
  dump_dir: "<dev_state>/resty",
  history: { file: %q },
}
`, historyFile)
	fmt.Println("writing local config to", localConfigFile)
	return os.WriteFile(localConfigFile, []byte(contents), 0600)
}
