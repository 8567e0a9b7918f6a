package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/vroute/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Declaration Errors (R001-R009)
	// ============================================

	"R001": {
		Category: CategoryConfig,
		Message:  "Duplicate route name",
		Detail:   "Two route declarations share the same name. Named navigation needs every name to identify exactly one route.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryConfig,
		Message:  "Redirect target not registered",
		Detail:   "A redirect points at a path that no registered pattern matches.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryConfig,
		Message:  "Route must declare a view or a redirect",
		Detail:   "Each route declaration sets exactly one of view and redirect.",
		DocURL:   docBase + "R003",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "Invalid route pattern",
		Detail:   "Patterns start with '/', use ':name' or ':name:type' for parameters and '*name' only as the last segment.",
		DocURL:   docBase + "R004",
	},
	"R005": {
		Category: CategoryConfig,
		Message:  "Redirect uses undeclared parameter",
		Detail:   "A redirect target references a parameter the source pattern does not declare.",
		DocURL:   docBase + "R005",
	},
	"R006": {
		Category: CategoryValidation,
		Message:  "Missing route parameter",
		Detail:   "Building a path from a pattern requires a value for every parameter.",
		DocURL:   docBase + "R006",
	},
	"R007": {
		Category: CategoryValidation,
		Message:  "Invalid navigation path",
		Detail:   "Navigation targets are rooted paths without scheme or host.",
		DocURL:   docBase + "R007",
	},

	// ============================================
	// Navigation Errors (R010-R019)
	// ============================================

	"R010": {
		Category: CategoryNavigation,
		Message:  "Redirect loop",
		Detail:   "A redirect chain revisited a pattern it had already passed through.",
		DocURL:   docBase + "R010",
	},
	"R011": {
		Category: CategoryNavigation,
		Message:  "Navigation rejected",
		Detail:   "A navigation guard rejected the navigation.",
		DocURL:   docBase + "R011",
	},
	"R012": {
		Category: CategoryNavigation,
		Message:  "Unknown route name",
		Detail:   "No registered route carries the requested name.",
		DocURL:   docBase + "R012",
	},
	"R013": {
		Category: CategoryNavigation,
		Message:  "Too many redirects",
		Detail:   "The redirect chain exceeded the configured maximum length.",
		DocURL:   docBase + "R013",
	},

	// ============================================
	// History Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryHistory,
		Message:  "History update failed",
		Detail:   "The history adapter could not apply a push or replace.",
		DocURL:   docBase + "R020",
	},
	"R021": {
		Category: CategoryHistory,
		Message:  "History store failed",
		Detail:   "Persisting or restoring the history stack failed.",
		DocURL:   docBase + "R021",
	},
	"R022": {
		Category: CategoryHistory,
		Message:  "Remote history closed",
		Detail:   "The remote history connection is closed.",
		DocURL:   docBase + "R022",
	},

	// ============================================
	// Configuration Errors (R030-R039)
	// ============================================

	"R030": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No vroute.json or vroute.yaml was found.",
		DocURL:   docBase + "R030",
	},
	"R031": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   docBase + "R031",
	},
	"R032": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   docBase + "R032",
	},

	// ============================================
	// CLI Errors (R040-R049)
	// ============================================

	"R040": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with invalid arguments.",
		DocURL:   docBase + "R040",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
