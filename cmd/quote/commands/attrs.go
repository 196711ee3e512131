package commands

import (
	"context"
	"io"

	"quotescraper/internal/scrape"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var attrNames *string

func init() {
	attrNames = attrsCmd.Flags().String("attrs", "", "Comma separated attributes to resolve, all of them if empty.")
	rootCmd.AddCommand(attrsCmd)
}

var attrsCmd = &cobra.Command{
	Use:   "attrs TICKER[:EXCHANGE]... [--attrs price,pctch,pe]",
	Short: "Prints a table with the value or error of every attribute of the given stocks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		stocks, err := parseTokens(args)
		if err != nil {
			return err
		}
		attrs, err := scrape.ParseAttrIds(*attrNames)
		if err != nil {
			return err
		}
		client, err := newClient(config)
		if err != nil {
			return err
		}
		renderAttrs(cmd.Context(), cmd.OutOrStdout(), client, stocks, attrs)
		return nil
	},
}

type resolver interface {
	ResolveStock(ctx context.Context, stock scrape.Stock, attrs ...scrape.AttrId) scrape.ResolutionMap
}

func renderAttrs(ctx context.Context, out io.Writer, client resolver, stocks []scrape.Stock, attrs []scrape.AttrId) {
	if len(attrs) == 0 {
		attrs = scrape.AllAttrs()
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"Stock", "Attribute", "Value", "Error"})
	for _, stock := range stocks {
		m := client.ResolveStock(ctx, stock, attrs...)
		for _, attr := range attrs {
			result := m[attr]
			if result.IsOk() {
				t.AppendRow(table.Row{stock.String(), attr.String(), result.Value, ""})
				continue
			}
			t.AppendRow(table.Row{stock.String(), attr.String(), scrape.Placeholder, result.Err.Error()})
		}
	}
	t.Render()
}
