package router

// Definition declares one route. Exactly one of View and RedirectTo is set.
// Definitions are plain values; the registry keeps its own copies.
type Definition struct {
	// Pattern is the path pattern (e.g., "/entries/:id").
	Pattern string `json:"path" yaml:"path" mapstructure:"path"`

	// Name identifies the route for named navigation. Optional.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// View is the identifier of the view rendered for this route.
	View string `json:"view,omitempty" yaml:"view,omitempty" mapstructure:"view"`

	// RedirectTo is the path this route redirects to.
	// Parameters of Pattern may be referenced (e.g., "/entries/:id").
	RedirectTo string `json:"redirect,omitempty" yaml:"redirect,omitempty" mapstructure:"redirect"`
}

// IsRedirect reports whether the definition redirects.
func (d Definition) IsRedirect() bool {
	return d.RedirectTo != ""
}

// ParamDef defines a route parameter.
type ParamDef struct {
	// Name is the parameter name (e.g., "id").
	Name string

	// Type is the parameter type (e.g., "int", "string", "uuid").
	Type string

	// Segment is the original segment (e.g., ":id", ":id:int").
	Segment string

	// CatchAll is set for "*name" segments.
	CatchAll bool
}

// Match is the result of matching a path against the registry.
type Match struct {
	// Route is the matched definition.
	Route Definition

	// Params are the extracted, percent-decoded route parameters.
	Params map[string]string

	// Path is the canonical path that was matched.
	Path string
}

// Param returns the named parameter, or "" if absent.
func (m *Match) Param(name string) string {
	if m == nil {
		return ""
	}
	return m.Params[name]
}
