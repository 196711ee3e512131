package scrape

import (
	"fmt"
	"strings"
)

// Stock identifies the security being looked up. An empty Exchange means
// the exchange is unknown.
type Stock struct {
	Ticker   string
	Exchange string
}

func NewStock(ticker, exchange string) (Stock, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Stock{}, fmt.Errorf("a ticker is required")
	}
	return Stock{
		Ticker:   ticker,
		Exchange: strings.TrimSpace(exchange),
	}, nil
}

// ParseToken parses `TICKER` or `TICKER:EXCHANGE`.
func ParseToken(token string) (Stock, error) {
	ticker, exchange, _ := strings.Cut(token, ":")
	stock, err := NewStock(ticker, exchange)
	if err != nil {
		return Stock{}, fmt.Errorf("parse %q: %w", token, err)
	}
	return stock, nil
}

func (s Stock) HasExchange() bool {
	return s.Exchange != ""
}

func (s Stock) String() string {
	if !s.HasExchange() {
		return s.Ticker
	}
	return s.Ticker + ":" + s.Exchange
}
