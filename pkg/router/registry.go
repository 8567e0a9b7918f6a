package router

import (
	"iter"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// route is a registered definition with its compiled pattern.
type route struct {
	def     Definition
	pattern *pattern
}

// Registry is an ordered, immutable set of route definitions.
// A Registry is safe for concurrent use: nothing mutates it after NewRegistry
// returns. Use With to derive an extended registry.
type Registry struct {
	routes []route
	byName map[string]int
}

// NewRegistry validates and registers definitions in order.
//
// It fails with a *ConfigurationError when two definitions share a name,
// when a definition sets both or neither of View and RedirectTo, when a
// pattern is malformed, or when a redirect does not resolve to any
// registered pattern. Validation happens here, not at first navigation.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		routes: make([]route, 0, len(defs)),
		byName: make(map[string]int),
	}

	for i, def := range defs {
		if (def.View == "") == (def.RedirectTo == "") {
			return nil, newConfigurationError("R003", def, i,
				"route %q sets view=%q redirect=%q", def.Pattern, def.View, def.RedirectTo)
		}

		p, err := compilePattern(def.Pattern)
		if err != nil {
			return nil, newConfigurationError("R004", def, i, "%v", err)
		}

		if def.Name != "" {
			if prev, ok := r.byName[def.Name]; ok {
				return nil, newConfigurationError("R001", def, i,
					"name %q already used by route #%d %s", def.Name, prev, r.routes[prev].def.Pattern)
			}
			r.byName[def.Name] = i
		}

		r.routes = append(r.routes, route{def: def, pattern: p})
	}

	for i, rt := range r.routes {
		if rt.def.IsRedirect() {
			if err := r.validateRedirect(rt, i); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// validateRedirect checks that a redirect only uses parameters of its
// source pattern and that it resolves to a registered pattern.
func (r *Registry) validateRedirect(rt route, index int) error {
	def := rt.def

	target, err := routepath.ParseLocation(def.RedirectTo)
	if err != nil {
		return newConfigurationError("R002", def, index, "redirect %q: %v", def.RedirectTo, err)
	}

	tp, err := compilePattern(target.Path)
	if err != nil {
		return newConfigurationError("R004", def, index, "redirect %q: %v", def.RedirectTo, err)
	}

	declared := make(map[string]bool)
	for _, p := range rt.pattern.params() {
		declared[p.Name] = true
	}
	for _, p := range tp.params() {
		if !declared[p.Name] {
			return newConfigurationError("R005", def, index,
				"redirect %q uses %q, which %s does not declare", def.RedirectTo, p.Name, def.Pattern)
		}
	}

	for _, probe := range redirectProbes {
		sample, err := tp.build(rt.pattern.sampleParams(probe))
		if err != nil {
			continue
		}
		if _, ok := r.Match(sample); ok {
			return nil
		}
	}
	return newConfigurationError("R002", def, index,
		"redirect %q does not match any registered pattern", def.RedirectTo)
}

// With returns a new registry holding r's definitions followed by defs.
// r is left untouched, so matches in progress keep a consistent snapshot.
func (r *Registry) With(defs ...Definition) (*Registry, error) {
	all := make([]Definition, 0, len(r.routes)+len(defs))
	for def := range r.All() {
		all = append(all, def)
	}
	return NewRegistry(append(all, defs...)...)
}

// LookupByName returns the definition registered under name.
func (r *Registry) LookupByName(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.routes[i].def, true
}

// All yields the definitions in registration order.
// The sequence is finite and may be ranged over any number of times.
func (r *Registry) All() iter.Seq[Definition] {
	return func(yield func(Definition) bool) {
		for _, rt := range r.routes {
			if !yield(rt.def) {
				return
			}
		}
	}
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.routes)
}

// Params returns the parameters declared by the named route.
func (r *Registry) Params(name string) ([]ParamDef, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.routes[i].pattern.params(), true
}

// Match resolves a path to the first registered route that matches it.
//
// The path may carry a query string, which is ignored. Matching is
// case-sensitive and a trailing slash is equivalent to its absence.
// Registration order decides between overlapping patterns: the earliest
// registered match wins, even over a more specific later pattern.
func (r *Registry) Match(path string) (*Match, bool) {
	segments, err := routepath.ParseSegments(path)
	if err != nil {
		return nil, false
	}

	for _, rt := range r.routes {
		if params, ok := rt.pattern.match(segments); ok {
			return &Match{Route: rt.def, Params: params, Path: segments.String()}, true
		}
	}
	return nil, false
}

// MatchLocation matches the path of loc.
func (r *Registry) MatchLocation(loc routepath.Location) (*Match, bool) {
	return r.Match(loc.Path)
}

// BuildPath fills pattern with params. Values are path-escaped; a missing
// or mistyped parameter yields a *ParamError.
func BuildPath(patternSource string, params map[string]string) (string, error) {
	p, err := compilePattern(patternSource)
	if err != nil {
		return "", err
	}
	return p.build(params)
}

// PathFor builds the path of the named route.
func (r *Registry) PathFor(name string, params map[string]string) (string, bool, error) {
	i, ok := r.byName[name]
	if !ok {
		return "", false, nil
	}
	path, err := r.routes[i].pattern.build(params)
	return path, true, err
}
