package scrape

// Result is either the value extracted for an attribute or the reason it
// could not be extracted.
type Result struct {
	Value string
	Err   error
}

func Ok(value string) Result {
	return Result{Value: value}
}

func Fail(err error) Result {
	return Result{Err: err}
}

func (r Result) IsOk() bool {
	return r.Err == nil
}

// ResolutionMap holds one Result per requested attribute.
type ResolutionMap map[AttrId]Result

// newResolutionMap creates a map where every attribute defaults to ErrNotFound.
func newResolutionMap(attrs []AttrId) ResolutionMap {
	m := make(ResolutionMap, len(attrs))
	for _, a := range attrs {
		m[a] = Fail(ErrNotFound)
	}
	return m
}

// Complete reports whether every attribute in the map has a value.
func (m ResolutionMap) Complete() bool {
	for _, r := range m {
		if !r.IsOk() {
			return false
		}
	}
	return true
}

// Coalesce merges `src` into m. A value already in m is never replaced,
// anything else is replaced by what `src` holds for the same attribute.
// Attributes that are not already keys of m are ignored.
func (m ResolutionMap) Coalesce(src ResolutionMap) {
	for attr, incoming := range src {
		current, ok := m[attr]
		if !ok || current.IsOk() {
			continue
		}
		m[attr] = incoming
	}
}

// ValueOr returns the value of `attr` or `placeholder` if it failed to resolve.
func (m ResolutionMap) ValueOr(attr AttrId, placeholder string) string {
	r, ok := m[attr]
	if !ok || !r.IsOk() {
		return placeholder
	}
	return r.Value
}
