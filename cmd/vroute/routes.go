package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/pkg/routepath"
	"github.com/vango-dev/vroute/pkg/router"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the declared routes",
		Long: `List the declared routes in registration order.

Routes come from the config file. Without one, the journal
routes are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			reg, err := router.NewRegistry(e.routerConfig().Routes...)
			if err != nil {
				return err
			}

			defs := make([]router.Definition, 0, reg.Len())
			for def := range reg.All() {
				defs = append(defs, def)
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(w, defs)
			}
			printRouteTable(w, defs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// printRouteTable prints routes in a human-readable table format.
func printRouteTable(out io.Writer, defs []router.Definition) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tPATH\tNAME\tTARGET")
	fmt.Fprintln(w, "-\t----\t----\t------")
	for i, def := range defs {
		name := def.Name
		if name == "" {
			name = "-"
		}
		target := "view " + def.View
		if def.IsRedirect() {
			target = "redirect " + def.RedirectTo
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, def.Pattern, name, target)
	}
	w.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(out, "Total: %d route(s)\n", len(defs))
}

// matchResult is the JSON form of a match.
type matchResult struct {
	Location string            `json:"location"`
	Matched  bool              `json:"matched"`
	Pattern  string            `json:"pattern,omitempty"`
	Name     string            `json:"name,omitempty"`
	View     string            `json:"view,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

func matchCmd(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Show the route a path resolves to",
		Long: `Match a path against the declared routes without navigating.

Redirects are reported, not followed. Use "vroute navigate" to
run the full navigation.

Examples:
  vroute match /write/
  vroute match '/entries/42?draft=1'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			reg, err := router.NewRegistry(e.routerConfig().Routes...)
			if err != nil {
				return err
			}

			loc, err := routepath.ParseLocation(args[0])
			if err != nil {
				return cliError("invalid path %q: %v", args[0], err)
			}

			res := matchResult{Location: loc.String()}
			if m, ok := reg.MatchLocation(loc); ok {
				res.Matched = true
				res.Pattern = m.Route.Pattern
				res.Name = m.Route.Name
				res.View = m.Route.View
				res.Redirect = m.Route.RedirectTo
				res.Params = m.Params
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(w, res)
			}
			printMatch(w, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func printMatch(w io.Writer, res matchResult) {
	if !res.Matched {
		warn(w, "No route matches %s", res.Location)
		return
	}
	success(w, "%s matches %s", res.Location, res.Pattern)
	if res.Name != "" {
		info(w, "name:     %s", res.Name)
	}
	if res.Redirect != "" {
		info(w, "redirect: %s", res.Redirect)
	} else {
		info(w, "view:     %s", res.View)
	}

	keys := make([]string, 0, len(res.Params))
	for k := range res.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info(w, "param:    %s=%s", k, res.Params[k])
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
