package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/vroute/pkg/routepath"
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam
	segCatchAll
)

// patternSegment is one compiled segment of a pattern.
type patternSegment struct {
	kind    segmentKind
	literal string // decoded literal for segLiteral
	name    string // parameter name for segParam and segCatchAll
	typ     paramType
	raw     string
}

// pattern is a compiled route pattern.
type pattern struct {
	source   string
	segments []patternSegment
}

// compilePattern parses a pattern into its segments.
// A trailing slash is ignored: "/write/" compiles like "/write".
func compilePattern(source string) (*pattern, error) {
	if source == "" || source[0] != '/' {
		return nil, fmt.Errorf("pattern %q must start with '/'", source)
	}
	if strings.ContainsAny(source, "?#") {
		return nil, fmt.Errorf("pattern %q must not contain a query or fragment", source)
	}

	trimmed := source
	if len(trimmed) > 1 {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}

	p := &pattern{source: source}
	seen := make(map[string]bool)

	var raw []string
	if trimmed = strings.Trim(trimmed, "/"); trimmed != "" {
		raw = strings.Split(trimmed, "/")
	}
	for i, seg := range raw {
		if seg == "" {
			return nil, fmt.Errorf("pattern %q has an empty segment", source)
		}

		switch seg[0] {
		case '*':
			name := seg[1:]
			if !validParamName(name) {
				return nil, fmt.Errorf("pattern %q: invalid catch-all name %q", source, seg)
			}
			if i != len(raw)-1 {
				return nil, fmt.Errorf("pattern %q: catch-all %q must be the last segment", source, seg)
			}
			if seen[name] {
				return nil, fmt.Errorf("pattern %q: duplicate parameter %q", source, name)
			}
			seen[name] = true
			p.segments = append(p.segments, patternSegment{kind: segCatchAll, name: name, typ: typeString, raw: seg})

		case ':':
			name, typName := parseParamSegment(seg)
			if !validParamName(name) {
				return nil, fmt.Errorf("pattern %q: invalid parameter %q", source, seg)
			}
			typ, ok := lookupParamType(typName)
			if !ok {
				return nil, fmt.Errorf("pattern %q: unknown parameter type %q", source, typName)
			}
			if seen[name] {
				return nil, fmt.Errorf("pattern %q: duplicate parameter %q", source, name)
			}
			seen[name] = true
			p.segments = append(p.segments, patternSegment{kind: segParam, name: name, typ: typ, raw: seg})

		default:
			lit, err := url.PathUnescape(seg)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: invalid escape in %q", source, seg)
			}
			p.segments = append(p.segments, patternSegment{kind: segLiteral, literal: lit, raw: seg})
		}
	}

	return p, nil
}

// params returns the parameter definitions in declaration order.
func (p *pattern) params() []ParamDef {
	var defs []ParamDef
	for _, seg := range p.segments {
		if seg.kind == segLiteral {
			continue
		}
		defs = append(defs, ParamDef{
			Name:     seg.name,
			Type:     seg.typ.String(),
			Segment:  seg.raw,
			CatchAll: seg.kind == segCatchAll,
		})
	}
	return defs
}

// match matches a path in matching form. Extracted parameters are
// percent-decoded.
func (p *pattern) match(segments routepath.Segments) (map[string]string, bool) {
	params := make(map[string]string, len(p.segments))

	for i, seg := range p.segments {
		if seg.kind == segCatchAll {
			if i >= len(segments) {
				return nil, false
			}
			value, ok := segments.Rest(i)
			if !ok {
				return nil, false
			}
			params[seg.name] = value
			return params, true
		}

		if i >= len(segments) {
			return nil, false
		}

		decoded, ok := segments.Param(i)
		if !ok {
			return nil, false
		}

		switch seg.kind {
		case segLiteral:
			if decoded != seg.literal {
				return nil, false
			}
		case segParam:
			if decoded == "" || !seg.typ.accepts(decoded) {
				return nil, false
			}
			params[seg.name] = decoded
		}
	}

	if len(segments) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// build fills the pattern with params, escaping each value.
func (p *pattern) build(params map[string]string) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		switch seg.kind {
		case segLiteral:
			b.WriteString(seg.raw)
		case segParam:
			value, ok := params[seg.name]
			if !ok || value == "" {
				return "", newParamError(p.source, seg.name, "no value given")
			}
			if !seg.typ.accepts(value) {
				return "", newParamError(p.source, seg.name, fmt.Sprintf("%q is not a valid %s", value, seg.typ))
			}
			b.WriteString(url.PathEscape(value))
		case segCatchAll:
			value, ok := params[seg.name]
			if !ok || value == "" {
				return "", newParamError(p.source, seg.name, "no value given")
			}
			parts := strings.Split(strings.Trim(value, "/"), "/")
			for i, part := range parts {
				if i > 0 {
					b.WriteByte('/')
				}
				b.WriteString(url.PathEscape(part))
			}
		}
	}
	return b.String(), nil
}

// sampleParams returns a value for every parameter of the pattern.
// Untyped parameters take untyped, so a redirect can be probed against
// both numeric and uuid targets.
func (p *pattern) sampleParams(untyped string) map[string]string {
	out := make(map[string]string)
	for _, seg := range p.segments {
		if seg.kind == segLiteral {
			continue
		}
		if seg.typ == typeString {
			out[seg.name] = untyped
		} else {
			out[seg.name] = seg.typ.sample()
		}
	}
	return out
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="" or "int"
func parseParamSegment(seg string) (name, typ string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, ""
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
