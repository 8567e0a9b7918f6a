package navigation

import (
	"context"

	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Transition is what a guard inspects.
type Transition struct {
	Record  Record
	Trigger Trigger

	// To is the location being navigated to, after redirects so far.
	To routepath.Location

	// Match is the route To resolved to. It is never nil.
	Match *router.Match

	// Redirects is the number of redirects followed so far.
	Redirects int
}

// Guard decides whether a navigation may proceed. Guards run in order;
// the first non-approving decision wins. A guard may block, and should
// return when ctx is cancelled: ctx ends when the navigation is superseded.
type Guard func(ctx context.Context, t *Transition) Decision

type decisionKind uint8

const (
	decisionApprove decisionKind = iota
	decisionRedirect
	decisionReject
)

// Decision is the result of a guard: approve, redirect or reject.
// The zero Decision approves.
type Decision struct {
	kind   decisionKind
	target string
	err    error
}

// Approve lets the navigation continue.
func Approve() Decision {
	return Decision{kind: decisionApprove}
}

// RedirectTo sends the navigation to target, a path with optional query
// and fragment. The redirect re-enters matching and counts toward loop
// detection.
func RedirectTo(target string) Decision {
	return Decision{kind: decisionRedirect, target: target}
}

// Reject stops the navigation. err is wrapped in the returned
// *NavigationError and may be nil.
func Reject(err error) Decision {
	return Decision{kind: decisionReject, err: err}
}

// IsApprove reports whether d approves.
func (d Decision) IsApprove() bool { return d.kind == decisionApprove }

// IsRedirect reports whether d redirects.
func (d Decision) IsRedirect() bool { return d.kind == decisionRedirect }

// IsReject reports whether d rejects.
func (d Decision) IsReject() bool { return d.kind == decisionReject }

// Target returns the redirect target of a redirect decision.
func (d Decision) Target() string { return d.target }

// Err returns the reason of a reject decision.
func (d Decision) Err() error { return d.err }

func (d Decision) String() string {
	switch d.kind {
	case decisionRedirect:
		return "redirect " + d.target
	case decisionReject:
		if d.err != nil {
			return "reject: " + d.err.Error()
		}
		return "reject"
	default:
		return "approve"
	}
}

// ForRoutes limits guard to navigations whose matched route has one of the
// given names. Other navigations are approved.
func ForRoutes(guard Guard, names ...string) Guard {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(ctx context.Context, t *Transition) Decision {
		if _, ok := set[t.Match.Route.Name]; !ok {
			return Approve()
		}
		return guard(ctx, t)
	}
}
