package scrape

import "errors"

var (
	// ErrFetchFailed means the request for a source's page could not be made
	// or the server responded with an error status.
	ErrFetchFailed = errors.New("failed to fetch the url")
	// ErrReadFailed means the response body could not be read or parsed.
	ErrReadFailed = errors.New("failed to read the response")
	// ErrSelectorSyntax means a configured selector could not be parsed.
	ErrSelectorSyntax = errors.New("failed to parse the selector")
	// ErrExchangeMissing means a source requires an exchange the stock did not provide.
	ErrExchangeMissing = errors.New("exchange not provided, source requires exchange (e.g. NYSE, NASDAQ, etc.)")
	// ErrUnsupportedAttribute means a source has no rule for the requested attribute.
	ErrUnsupportedAttribute = errors.New("no matching attribute")
	// ErrNotFound means none of the selectors for an attribute matched.
	ErrNotFound = errors.New("no match found")
)
