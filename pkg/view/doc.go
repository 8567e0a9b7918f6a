// Package view connects route views to a navigation controller.
//
// A View is mounted when a navigation commits to its identifier and
// unmounted when a later navigation commits to a different one. Views that
// also implement Loader load their data during the Guarding phase, before
// the navigation commits: a failed load rejects the navigation, and a
// superseded navigation cancels the load's context.
//
// Views may navigate from their lifecycle methods; the resulting navigation
// is rendered once the current one has been.
//
//	outlet := view.NewOutlet(view.WithLogger(logger))
//	outlet.Register("DailyReport", daily)
//	ctrl.Use(outlet.Guard())
//	detach := outlet.Attach(ctrl)
package view
