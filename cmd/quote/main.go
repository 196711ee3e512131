package main

import (
	"context"

	"quotescraper/cmd/quote/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
