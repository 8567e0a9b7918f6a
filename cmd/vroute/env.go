package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/vango-dev/vroute"
	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/internal/store"
	"github.com/vango-dev/vroute/pkg/history"
	"github.com/vango-dev/vroute/pkg/routepath"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

// env is the loaded configuration and logger of one command.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// browserHistory is a history the CLI can move through.
type browserHistory interface {
	history.History
	Back() bool
	Forward() bool
	Go(delta int) bool
	Entries() []routepath.Location
	Index() int
}

var (
	_ browserHistory = (*history.Memory)(nil)
	_ browserHistory = (*history.Persistent)(nil)
)

// loadEnv loads the configuration named by --config, falling back to
// the defaults when no file exists in the working directory.
func loadEnv(flags *globalFlags, logOut io.Writer) (*env, error) {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: newLogger(cfg.Log, logOut)}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg, err := config.Load(".")
		if stderrors.Is(err, errors.Code("R030")) {
			return config.FromEnv()
		}
		return cfg, err
	}

	fi, err := os.Stat(path)
	if err == nil && fi.IsDir() {
		return config.Load(path)
	}
	return config.LoadFile(path)
}

func newLogger(c config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// routerConfig returns the router configuration of e.
func (e *env) routerConfig() vroute.Config {
	return vroute.ConfigFromFile(e.cfg, e.logger)
}

// createRouter builds a router over h with a hosted view for every
// view the routes declare.
func (e *env) createRouter(h history.History) (*vroute.Router, error) {
	cfg := e.routerConfig()
	return vroute.CreateRouter(cfg, h, hostedViews(cfg, e.logger)...)
}

// hostedViews registers a view for every declared view identifier. The
// CLI renders no pages itself, so the views only log their lifecycle.
func hostedViews(cfg vroute.Config, logger *slog.Logger) []vroute.Option {
	ids := make(map[string]struct{})
	for _, def := range cfg.Routes {
		if def.View != "" {
			ids[def.View] = struct{}{}
		}
	}
	if cfg.NotFoundView != "" {
		ids[cfg.NotFoundView] = struct{}{}
	}

	opts := make([]vroute.Option, 0, len(ids))
	for id := range ids {
		opts = append(opts, vroute.WithView(id, view.Funcs{
			OnMount: func(_ context.Context, m *router.Match) error {
				if m == nil {
					logger.Debug("view mounted", "view", id)
					return nil
				}
				logger.Debug("view mounted", "view", id, "pattern", m.Route.Pattern, "path", m.Path)
				return nil
			},
			OnUnmount: func() {
				logger.Debug("view unmounted", "view", id)
			},
		}))
	}
	return opts
}

// openHistory opens the configured history, starting at initial when
// nothing was saved. The returned func releases it.
func (e *env) openHistory(ctx context.Context, initial routepath.Location) (browserHistory, func(), error) {
	if e.cfg.History.Mode != config.HistorySQLite {
		return history.NewMemory(initial), func() {}, nil
	}

	st, err := store.Open(ctx, e.cfg.HistoryPath())
	if err != nil {
		return nil, nil, err
	}
	h, err := history.OpenPersistent(ctx, st, e.cfg.History.Key, initial, e.logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return h, func() {
		if err := h.Err(); err != nil {
			e.logger.Warn("history was not fully saved", "error", err)
		}
		st.Close()
	}, nil
}

// cliError returns a coded invalid-arguments error.
func cliError(format string, args ...any) error {
	return errors.New("R040").WithDetailf(format, args...)
}
