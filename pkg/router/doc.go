// Package router holds the route registry and path matcher of vroute.
//
// The router provides:
//   - An ordered registry of route definitions, validated eagerly
//   - Pattern compilation with literal, parameter and catch-all segments
//   - First-match-wins path matching in registration order
//   - Path building for named navigation and parameterized redirects
//   - Typed parameter validation and struct decoding
//
// # Patterns
//
// Patterns are rooted paths split on "/":
//
//	/write             literal segments
//	/entries/:id       parameter, any single segment
//	/entries/:id:int   typed parameter (int, uint, uuid, string)
//	/files/*path       catch-all, must be the last segment
//
// # Declarations
//
// Each definition targets either a view or a redirect:
//
//	reg, err := router.NewRegistry(
//	    router.Definition{Pattern: "/", RedirectTo: "/write"},
//	    router.Definition{Pattern: "/write", Name: "write", View: "WriteJournaling"},
//	    router.Definition{Pattern: "/daily", Name: "daily", View: "DailyReport"},
//	    router.Definition{Pattern: "/monthly", Name: "monthly", View: "MonthlyReport"},
//	)
//
//	m, ok := reg.Match("/write/")
//	if ok {
//	    // m.Route.View == "WriteJournaling"
//	}
//
// # Precedence
//
// Registration order is the only tie-break. When two patterns match the same
// path, the one registered first wins, even if a later one is more specific.
// Register specific patterns before general ones.
package router
