package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

type fakeProvider struct {
	lock  sync.Mutex
	pages map[string]string
	fail  map[string]error
	calls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		pages: map[string]string{},
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

func (p *fakeProvider) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	p.lock.Lock()
	p.calls[url]++
	err, failed := p.fail[url]
	page, found := p.pages[url]
	p.lock.Unlock()

	if failed {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no page for %s", ErrFetchFailed, url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(page))
}

func (p *fakeProvider) callsTo(url string) int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.calls[url]
}

func (p *fakeProvider) totalCalls() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

type report struct {
	level  string
	id     string
	params []any
}

type recordingAPI struct {
	lock    sync.Mutex
	reports []report
}

func (r *recordingAPI) record(level, id string, params []any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.reports = append(r.reports, report{level: level, id: id, params: params})
}

func (r *recordingAPI) ReportBroken(id string, params ...any) { r.record("broken", id, params) }
func (r *recordingAPI) ReportWarning(id string, params ...any) { r.record("warning", id, params) }
func (r *recordingAPI) ReportDebug(msg string, params ...any) { r.record("debug", msg, params) }
func (r *recordingAPI) ReportCount(id string, count int64) {}

func (r *recordingAPI) find(level, id string) []report {
	r.lock.Lock()
	defer r.lock.Unlock()
	var out []report
	for _, rep := range r.reports {
		if rep.level == level && rep.id == id {
			out = append(out, rep)
		}
	}
	return out
}

func fixedOrder(order ...int) OrderFunc {
	return func(n int) []int {
		return order
	}
}

// page renders a minimal html document with one element per id/text pair.
func page(pairs ...string) string {
	var body strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		body.WriteString(fmt.Sprintf(`<div id="%s">%s</div>`, pairs[i], pairs[i+1]))
	}
	return "<html><body>" + body.String() + "</body></html>"
}

func idRule(id string) AttributeRule {
	return AttributeRule{
		Selectors: StaticSelectors("#" + id),
		Transform: strings.TrimSpace,
	}
}

// testSource creates a source at https://<id>.test/quote/<ticker>/ supporting
// price from #price and percent change from #pctch.
func testSource(id SourceId, attrs ...AttrId) Source {
	rules := map[AttrId]AttributeRule{}
	for _, a := range attrs {
		switch a {
		case Price:
			rules[a] = idRule("price")
		case PercentChange:
			rules[a] = idRule("pctch")
		case PriceToEarnings:
			rules[a] = idRule("pe")
		}
	}
	return Source{
		Id:      id,
		BaseUrl: fmt.Sprintf("https://%s.test/quote/", id),
		Rules:   rules,
	}
}

func sourceUrl(source Source, stock Stock) string {
	url, err := source.Url(stock)
	if err != nil {
		panic(err)
	}
	return url
}
