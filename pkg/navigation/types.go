package navigation

import (
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Phase is a state of the navigation state machine.
type Phase uint8

const (
	PhaseRequested Phase = iota
	PhaseMatching
	PhaseRedirecting
	PhaseGuarding
	PhaseCommitting
	PhaseCompleted
	PhaseAborted
)

var phaseNames = [...]string{
	PhaseRequested:   "requested",
	PhaseMatching:    "matching",
	PhaseRedirecting: "redirecting",
	PhaseGuarding:    "guarding",
	PhaseCommitting:  "committing",
	PhaseCompleted:   "completed",
	PhaseAborted:     "aborted",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Terminal reports whether p ends a navigation.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseAborted
}

// Status is the outcome of a navigation.
type Status uint8

const (
	// StatusCompleted: a route matched and was committed.
	StatusCompleted Status = iota

	// StatusNotFound: no route matched. The location was committed.
	StatusNotFound

	// StatusRejected: a guard rejected the navigation.
	StatusRejected

	// StatusAborted: a newer navigation superseded this one, or the
	// caller's context was cancelled.
	StatusAborted

	// StatusFailed: the navigation failed with an error (invalid target,
	// redirect loop, history failure).
	StatusFailed
)

var statusNames = [...]string{
	StatusCompleted: "completed",
	StatusNotFound:  "not_found",
	StatusRejected:  "rejected",
	StatusAborted:   "aborted",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Committed reports whether a navigation with this status changed the
// current location.
func (s Status) Committed() bool {
	return s == StatusCompleted || s == StatusNotFound
}

// Trigger identifies where a navigation came from.
type Trigger uint8

const (
	// TriggerUser is a NavigateTo call.
	TriggerUser Trigger = iota

	// TriggerPop is a location change reported by the history adapter.
	TriggerPop

	// TriggerInitial is the navigation made by Start.
	TriggerInitial
)

func (t Trigger) String() string {
	switch t {
	case TriggerUser:
		return "user"
	case TriggerPop:
		return "pop"
	case TriggerInitial:
		return "initial"
	default:
		return "unknown"
	}
}

// HistoryAction is what a navigation did to the history adapter.
type HistoryAction uint8

const (
	ActionNone HistoryAction = iota
	ActionPush
	ActionReplace
)

func (a HistoryAction) String() string {
	switch a {
	case ActionPush:
		return "push"
	case ActionReplace:
		return "replace"
	default:
		return "none"
	}
}

// Record identifies one navigation attempt.
type Record struct {
	// ID increases monotonically per controller.
	ID uint64

	// From is the location committed when the navigation started.
	// It is nil for the first navigation.
	From *routepath.Location

	// To is the requested location, before any redirect.
	To routepath.Location
}

// Navigation is the outcome of one navigation. Subscribers receive it for
// committed navigations only; NavigateTo returns it for every outcome.
type Navigation struct {
	Record Record

	// Location is the final location: committed for committed outcomes,
	// last attempted otherwise.
	Location routepath.Location

	// Match is the resolved route. It is nil for StatusNotFound.
	Match *router.Match

	// View is the identifier of the view to render.
	View string

	Status  Status
	Phase   Phase
	Trigger Trigger
	Action  HistoryAction

	// Redirects lists the locations left through redirects, in order.
	Redirects []routepath.Location
}

// Redirected reports whether at least one redirect was followed.
func (n Navigation) Redirected() bool {
	return len(n.Redirects) > 0
}
