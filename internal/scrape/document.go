package scrape

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"quotescraper/lib/restyutil"
	"quotescraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// DocumentProvider fetches a url and parses it into a queryable document.
type DocumentProvider interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type HttpProviderOptions struct {
	// defaults to DefaultUserAgent
	UserAgent string
	// per request timeout, 0 means 30 seconds
	Timeout time.Duration
	// wraps the transport with cloudflare-bp-go
	CloudflareBypass bool
	// if nil, reports go to telemetry.SlogAPI
	Telemetry telemetry.API
	// if not nil, every exchange is written to it while debug logging is enabled
	Dump restyutil.InstrumentOutput
}

type HttpProvider struct {
	http *resty.Client
}

func NewHttpProvider(opts HttpProviderOptions) *HttpProvider {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("document_provider", tel)

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "quotescraper/scrape/http", tel)
	restyutil.InstrumentClient(client, opts.Dump)

	return &HttpProvider{http: client}
}

func (p *HttpProvider) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := p.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		// a response without RawResponse means the request never got a reply,
		// otherwise the body failed midway
		if res == nil || res.RawResponse == nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s responded with %s", ErrFetchFailed, url, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return doc, nil
}
