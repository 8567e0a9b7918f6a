package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/routepath"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	pageStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
)

func tuiCmd(flags *globalFlags) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the routes in a terminal UI",
		Long: `Browse the declared routes in a terminal UI.

Number keys navigate to named routes, "/" opens an address bar,
left and right move back and forward through the history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs would tear the alternate screen.
			e, err := loadEnv(flags, io.Discard)
			if err != nil {
				return err
			}
			initial, err := routepath.ParseLocation(start)
			if err != nil {
				return cliError("invalid --start %q: %v", start, err)
			}

			ctx := cmd.Context()
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

			p := tea.NewProgram(newTUIModel(ctx, r, h), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&start, "start", "/", "Initial location when no history is saved")

	return cmd
}

// navigatedMsg carries the outcome of a navigation started by a key.
type navigatedMsg struct {
	target string
	nav    navigation.Navigation
	err    error
}

// movedMsg reports a back/forward move.
type movedMsg struct {
	label string
	ok    bool
}

type tuiModel struct {
	ctx     context.Context
	router  *vroute.Router
	history browserHistory
	names   []string

	typing  bool
	address string

	status    string
	statusErr bool
	width     int
}

func newTUIModel(ctx context.Context, r *vroute.Router, h browserHistory) tuiModel {
	var names []string
	for def := range r.Registry().All() {
		if def.Name != "" {
			names = append(names, def.Name)
		}
	}
	return tuiModel{ctx: ctx, router: r, history: h, names: names}
}

func (m tuiModel) Init() tea.Cmd {
	return func() tea.Msg {
		nav, err := m.router.Start(m.ctx)
		return navigatedMsg{target: "start", nav: nav, err: err}
	}
}

func (m tuiModel) navigate(target string) tea.Cmd {
	return func() tea.Msg {
		nav, err := m.router.NavigateTo(m.ctx, target, nil)
		return navigatedMsg{target: target, nav: nav, err: err}
	}
}

func (m tuiModel) move(delta int, label string) tea.Cmd {
	return func() tea.Msg {
		return movedMsg{label: label, ok: m.history.Go(delta)}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case navigatedMsg:
		m.status, m.statusErr = describeNavigation(msg.target, msg.nav, msg.err)
		return m, nil

	case movedMsg:
		if msg.ok {
			m.status, m.statusErr = fmt.Sprintf("%s: %s", msg.label, m.router.Current()), false
		} else {
			m.status, m.statusErr = fmt.Sprintf("%s: no history entry", msg.label), true
		}
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m.updateAddress(msg)
		}
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.typing = true
			m.address = "/"
			return m, nil
		case "left", "h":
			return m, m.move(-1, "back")
		case "right", "l":
			return m, m.move(1, "forward")
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.names) {
				return m, m.navigate(m.names[n-1])
			}
		}
	}
	return m, nil
}

func (m tuiModel) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.typing = false
		return m, nil
	case tea.KeyEnter:
		m.typing = false
		return m, m.navigate(m.address)
	case tea.KeyBackspace:
		if len(m.address) > 0 {
			m.address = m.address[:len(m.address)-1]
		}
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.address += string(msg.Runes)
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("vroute") + "  " + statusStyle.Render(m.router.Current().String()) + "\n\n")

	active := m.router.Outlet().Active()
	tabs := make([]string, 0, len(m.names))
	for i, name := range m.names {
		label := fmt.Sprintf("%d %s", i+1, name)
		def, _ := m.router.Registry().LookupByName(name)
		if def.View != "" && def.View == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n")

	page := active
	if page == "" {
		page = "(no view)"
	}
	body := page
	if match := m.router.CurrentMatch(); match != nil {
		body += "\n" + statusStyle.Render("route "+match.Route.Pattern)
		for k, v := range match.Params {
			body += "\n" + statusStyle.Render(k+"="+v)
		}
	}
	b.WriteString(pageStyle.Render(body) + "\n")

	idx := m.history.Index()
	for i, loc := range m.history.Entries() {
		marker := "  "
		if i == idx {
			marker = "> "
		}
		b.WriteString(statusStyle.Render(marker+loc.String()) + "\n")
	}
	b.WriteString("\n")

	if m.typing {
		b.WriteString("go to: " + m.address + "█\n")
	} else if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(m.status + "\n")
		}
	}

	b.WriteString(footerStyle.Render("1-9 route  / address  ←/→ back/forward  q quit"))
	return b.String()
}

// describeNavigation returns a one-line status for a navigation outcome.
func describeNavigation(target string, nav navigation.Navigation, err error) (string, bool) {
	if err != nil {
		return fmt.Sprintf("%s: %s: %v", target, nav.Status, err), true
	}
	switch nav.Status {
	case navigation.StatusAborted:
		return target + ": superseded", false
	case navigation.StatusNotFound:
		return fmt.Sprintf("%s: no route matches %s", target, nav.Location), true
	}
	s := fmt.Sprintf("%s: %s (%s)", target, nav.Location, nav.Action)
	if nav.Redirected() {
		s += fmt.Sprintf(" after %d redirect(s)", len(nav.Redirects))
	}
	return s, false
}
