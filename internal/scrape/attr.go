package scrape

import (
	"fmt"
	"strings"

	"quotescraper/lib/textutil"

	"github.com/antzucaro/matchr"
)

// AttrId identifies a financial attribute of a stock.
type AttrId int

const (
	Price AttrId = iota
	PercentChange
	PriceToEarnings
)

var attrNames = map[AttrId]string{
	Price:           "price",
	PercentChange:   "pctch",
	PriceToEarnings: "pe",
}

var attrAliases = map[string]AttrId{
	"price":           Price,
	"last":            Price,
	"pctch":           PercentChange,
	"percentchange":   PercentChange,
	"percent_change":  PercentChange,
	"change":          PercentChange,
	"pe":              PriceToEarnings,
	"p/e":             PriceToEarnings,
	"pricetoearnings": PriceToEarnings,
}

// AllAttrs returns every known attribute in declaration order.
func AllAttrs() []AttrId {
	return []AttrId{Price, PercentChange, PriceToEarnings}
}

func (a AttrId) String() string {
	name, ok := attrNames[a]
	if !ok {
		return fmt.Sprintf("attr(%d)", int(a))
	}
	return name
}

// ParseAttrId looks up an attribute by one of its names, ignoring case and whitespace.
func ParseAttrId(name string) (AttrId, error) {
	normalized := textutil.NormalizeName(name)
	attr, ok := attrAliases[normalized]
	if ok {
		return attr, nil
	}

	known := make([]string, 0, len(attrAliases))
	for alias := range attrAliases {
		known = append(known, alias)
	}
	suggestion := Suggest(normalized, known)
	if suggestion != "" {
		return 0, fmt.Errorf("unknown attribute %q, did you mean %q?", name, suggestion)
	}
	return 0, fmt.Errorf("unknown attribute %q", name)
}

// ParseAttrIds parses a comma separated list of attribute names.
func ParseAttrIds(list string) ([]AttrId, error) {
	var attrs []AttrId
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		attr, err := ParseAttrId(name)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

const suggestionThreshold = 0.8

// Suggest returns the candidate most similar to `name` or an empty string
// if none of them are similar enough.
func Suggest(name string, candidates []string) string {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(name, c, false)
		if score > bestScore || (score == bestScore && c < best) {
			best = c
			bestScore = score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}

func uniqueAttrs(attrs []AttrId) []AttrId {
	seen := make(map[AttrId]struct{}, len(attrs))
	out := make([]AttrId, 0, len(attrs))
	for _, a := range attrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
