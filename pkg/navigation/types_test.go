package navigation

import (
	"errors"
	"testing"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseRequested, "requested"},
		{PhaseMatching, "matching"},
		{PhaseRedirecting, "redirecting"},
		{PhaseGuarding, "guarding"},
		{PhaseCommitting, "committing"},
		{PhaseCompleted, "completed"},
		{PhaseAborted, "aborted"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
	if !PhaseAborted.Terminal() || !PhaseCompleted.Terminal() || PhaseGuarding.Terminal() {
		t.Error("Terminal() wrong")
	}
}

func TestStatusCommitted(t *testing.T) {
	committed := map[Status]bool{
		StatusCompleted: true,
		StatusNotFound:  true,
		StatusRejected:  false,
		StatusAborted:   false,
		StatusFailed:    false,
	}
	for s, want := range committed {
		if got := s.Committed(); got != want {
			t.Errorf("%s.Committed() = %v, want %v", s, got, want)
		}
	}
	if StatusNotFound.String() != "not_found" {
		t.Errorf("StatusNotFound.String() = %q", StatusNotFound.String())
	}
}

func TestCommitAction(t *testing.T) {
	tests := []struct {
		name       string
		trigger    Trigger
		replace    bool
		redirected bool
		want       HistoryAction
	}{
		{"user", TriggerUser, false, false, ActionPush},
		{"user replace", TriggerUser, true, false, ActionReplace},
		{"user redirected", TriggerUser, false, true, ActionReplace},
		{"initial", TriggerInitial, false, false, ActionReplace},
		{"pop", TriggerPop, false, false, ActionNone},
		{"pop redirected", TriggerPop, false, true, ActionReplace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commitAction(tt.trigger, NavigateOptions{Replace: tt.replace}, tt.redirected)
			if got != tt.want {
				t.Errorf("commitAction() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecision(t *testing.T) {
	var zero Decision
	if !zero.IsApprove() {
		t.Error("zero Decision should approve")
	}

	r := RedirectTo("/write")
	if !r.IsRedirect() || r.Target() != "/write" || r.String() != "redirect /write" {
		t.Errorf("RedirectTo: got %v", r)
	}

	cause := errors.New("nope")
	j := Reject(cause)
	if !j.IsReject() || j.Err() != cause || j.String() != "reject: nope" {
		t.Errorf("Reject: got %v", j)
	}
	if Reject(nil).String() != "reject" {
		t.Errorf("Reject(nil).String() = %q", Reject(nil).String())
	}
}

func TestNavigateOptions(t *testing.T) {
	var o NavigateOptions
	for _, opt := range []NavigateOption{WithReplace(), WithQuery(map[string]string{"d": "1"}), WithHash("")} {
		opt(&o)
	}
	if !o.Replace || o.Query["d"] != "1" || !o.HasHash || o.Hash != "" {
		t.Errorf("options = %+v", o)
	}
}

func TestRedirectLoopErrorMessage(t *testing.T) {
	err := newRedirectLoopError([]string{"/a", "/b", "/a"})
	want := "navigation: R010: Redirect loop: /a -> /b -> /a"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrRedirectLoop) {
		t.Error("errors.Is(err, ErrRedirectLoop) = false")
	}
}
