package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/routepath"
)

func navigateCmd(flags *globalFlags) *cobra.Command {
	var (
		start   string
		replace bool
		params  []string
	)

	cmd := &cobra.Command{
		Use:   "navigate <target>...",
		Short: "Run navigations and print each outcome",
		Long: `Start a router at --start and run each target in order.

A target is a path ("/daily?d=1"), a route name ("daily"), or one
of back, forward and go:<delta> to move through the history the
way a browser's buttons would.

With history.mode=sqlite the stack is saved and the next run
continues where this one stopped.

Examples:
  vroute navigate daily monthly back
  vroute navigate --param id=42 entry`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			initial, err := routepath.ParseLocation(start)
			if err != nil {
				return cliError("invalid --start %q: %v", start, err)
			}
			p, err := parseParams(params)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			h, release, err := e.openHistory(ctx, initial)
			if err != nil {
				return err
			}
			defer release()

			r, err := e.createRouter(h)
			if err != nil {
				return err
			}
			defer r.Stop()

			var opts []navigation.NavigateOption
			if replace {
				opts = append(opts, navigation.WithReplace())
			}
			return runNavigations(ctx, cmd.OutOrStdout(), r, h, args, p, opts)
		},
	}

	cmd.Flags().StringVar(&start, "start", "/", "Initial location when no history is saved")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace instead of push")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Route parameter for named targets (key=value)")

	return cmd
}

func runNavigations(ctx context.Context, w io.Writer, r *vroute.Router, h browserHistory, targets []string, params map[string]string, opts []navigation.NavigateOption) error {
	nav, err := r.Start(ctx)
	printNavigation(w, "start", nav, err)

	for _, target := range targets {
		if delta, ok, err := historyDelta(target); err != nil {
			return err
		} else if ok {
			before := r.Current()
			if !h.Go(delta) {
				warn(w, "%s: no history entry", target)
				continue
			}
			info(w, "%s: %s -> %s", target, before, r.Current())
			continue
		}

		var p map[string]string
		if !strings.HasPrefix(target, "/") {
			p = params
		}
		nav, err := r.NavigateTo(ctx, target, p, opts...)
		printNavigation(w, target, nav, err)
	}

	fmt.Fprintln(w)
	info(w, "current: %s", r.Current())
	printStack(w, h)
	return nil
}

func historyDelta(target string) (int, bool, error) {
	switch target {
	case "back":
		return -1, true, nil
	case "forward":
		return 1, true, nil
	}
	if rest, ok := strings.CutPrefix(target, "go:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false, cliError("invalid history delta %q", target)
		}
		return n, true, nil
	}
	return 0, false, nil
}

func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, cliError("invalid --param %q, want key=value", pair)
		}
		out[k] = v
	}
	return out, nil
}

func printNavigation(w io.Writer, target string, nav navigation.Navigation, err error) {
	switch {
	case err != nil:
		warn(w, "%s: %s: %v", target, nav.Status, err)
	case nav.Status == navigation.StatusAborted:
		warn(w, "%s: aborted", target)
	default:
		line := fmt.Sprintf("%s: %s %s (%s", target, nav.Location, nav.Status, nav.Action)
		if nav.Redirected() {
			line += fmt.Sprintf(", %d redirect(s)", len(nav.Redirects))
		}
		line += ")"
		if nav.View != "" {
			line += " view=" + nav.View
		}
		success(w, "%s", line)
	}
}

func printStack(w io.Writer, h browserHistory) {
	idx := h.Index()
	for i, loc := range h.Entries() {
		marker := " "
		if i == idx {
			marker = ">"
		}
		info(w, "%s %d %s", marker, i, loc)
	}
}
