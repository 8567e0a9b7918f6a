package routepath

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidPath matches every *PathError.
var ErrInvalidPath = errors.New("invalid path")

// PathError reports a path that cannot be parsed or matched.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return "path " + strconv.Quote(e.Path) + " " + e.Reason
}

func (e *PathError) Unwrap() error { return ErrInvalidPath }

func pathError(path, reason string) error {
	return &PathError{Path: path, Reason: reason}
}

// Segments is a path in matching form: its raw, still encoded segments
// with empty and "." segments dropped and ".." applied. The root path has
// no segments.
type Segments []string

// ParseSegments brings path into matching form. A query string is ignored
// and case is kept. Backslashes, NUL bytes (raw or escaped), malformed
// percent escapes and ".." above the root are refused.
func ParseSegments(path string) (Segments, error) {
	path, _, _ = strings.Cut(path, "?")
	if strings.ContainsAny(path, "\\\x00") {
		return nil, pathError(path, "contains a backslash or NUL byte")
	}
	if err := checkEscapes(path, true); err != nil {
		return nil, err
	}

	var segs Segments
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return nil, pathError(path, "climbs above the root")
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}
	return segs, nil
}

// String returns the rooted path, "/" for no segments.
func (s Segments) String() string {
	return "/" + strings.Join(s, "/")
}

// Param decodes segment i as a single parameter value. A decoded slash
// is refused: a parameter never spans segments.
func (s Segments) Param(i int) (string, bool) {
	v, err := url.PathUnescape(s[i])
	if err != nil || strings.Contains(v, "/") {
		return "", false
	}
	return v, true
}

// Rest decodes the segments from i on, joined by "/".
func (s Segments) Rest(i int) (string, bool) {
	v, err := url.PathUnescape(strings.Join(s[i:], "/"))
	return v, err == nil
}

// checkEscapes refuses "%" not followed by two hex digits and, when noNUL
// is set, the escaped NUL byte.
func checkEscapes(path string, noNUL bool) error {
	rest := path
	for i := strings.IndexByte(rest, '%'); i >= 0; i = strings.IndexByte(rest, '%') {
		if i+2 >= len(rest) || !isHex(rest[i+1]) || !isHex(rest[i+2]) {
			return pathError(path, "has a malformed percent escape")
		}
		if noNUL && rest[i+1:i+3] == "00" {
			return pathError(path, "contains a NUL byte")
		}
		rest = rest[i+3:]
	}
	return nil
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}
