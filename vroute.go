// Package vroute is the entry point of the vroute single-page-application
// router.
//
// CreateRouter wires a route registry, a history adapter, a navigation
// controller and a view outlet together:
//
//	r, err := vroute.CreateRouter(vroute.Config{
//	    Routes: vroute.JournalRoutes(),
//	}, history.NewMemory(routepath.Location{Path: "/"}),
//	    vroute.WithView("WriteJournaling", writeView),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := r.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	r.NavigateTo(ctx, "daily", nil)
//
// Lower-level building blocks live in pkg/router, pkg/history,
// pkg/navigation and pkg/view.
package vroute

import (
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/router"
)

// Definition is a route declaration.
type Definition = router.Definition

// Navigation is the outcome of one navigation.
type Navigation = navigation.Navigation

// Guard vets a navigation before it is committed.
type Guard = navigation.Guard

// Re-exported navigate options.
var (
	WithReplace = navigation.WithReplace
	WithQuery   = navigation.WithQuery
	WithHash    = navigation.WithHash
)

// JournalRoutes returns the route declarations of the journaling app:
// the root redirects to the writing view, and each view has a named path.
func JournalRoutes() []Definition {
	return []Definition{
		{Pattern: "/", RedirectTo: "/write"},
		{Pattern: "/write", Name: "write", View: "WriteJournaling"},
		{Pattern: "/daily", Name: "daily", View: "DailyReport"},
		{Pattern: "/monthly", Name: "monthly", View: "MonthlyReport"},
	}
}
