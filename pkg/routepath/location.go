package routepath

import (
	"net/url"
	"sort"
	"strings"
)

// Location is the canonical description of where the application is.
// Path, RawQuery and Hash are stored exactly as received; nothing is
// re-encoded when the Location is serialized.
type Location struct {
	// Path is the request path, e.g. "/write" or "/write/".
	Path string

	// RawQuery is the encoded query without the leading "?".
	RawQuery string

	// Hash is the fragment without the leading "#".
	Hash string
}

// ParseLocation parses a rooted href of the form path[?query][#hash].
func ParseLocation(href string) (Location, error) {
	if href == "" {
		return Location{Path: "/"}, nil
	}
	if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return Location{}, pathError(href, "is not a rooted path")
	}

	rest, hash, _ := strings.Cut(href, "#")
	path, query, _ := strings.Cut(rest, "?")
	if err := checkEscapes(path, false); err != nil {
		return Location{}, err
	}

	return Location{Path: path, RawQuery: query, Hash: hash}, nil
}

// MustParseLocation is like ParseLocation but panics on error.
func MustParseLocation(href string) Location {
	loc, err := ParseLocation(href)
	if err != nil {
		panic("routepath: " + err.Error() + ": " + href)
	}
	return loc
}

// String serializes the location as path[?query][#hash].
func (l Location) String() string {
	var b strings.Builder
	b.Grow(len(l.Path) + len(l.RawQuery) + len(l.Hash) + 2)
	if l.Path == "" {
		b.WriteByte('/')
	} else {
		b.WriteString(l.Path)
	}
	if l.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(l.RawQuery)
	}
	if l.Hash != "" {
		b.WriteByte('#')
		b.WriteString(l.Hash)
	}
	return b.String()
}

// Query decodes the query string into a map holding the first value of
// each key. Malformed pairs are skipped.
func (l Location) Query() map[string]string {
	out := make(map[string]string)
	if l.RawQuery == "" {
		return out
	}
	values, _ := url.ParseQuery(l.RawQuery)
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// WithQuery returns a copy of l whose query is the encoding of params.
// Keys are written in sorted order so equal maps serialize identically.
func (l Location) WithQuery(params map[string]string) Location {
	l.RawQuery = EncodeQuery(params)
	return l
}

// Segments returns the path in matching form. l is not modified.
func (l Location) Segments() (Segments, error) {
	return ParseSegments(l.Path)
}

// IsZero reports whether l is the zero Location.
func (l Location) IsZero() bool {
	return l == Location{}
}

// EncodeQuery encodes params in sorted key order.
func EncodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}
