package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vroute"
	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/pkg/history"
	"github.com/vango-dev/vroute/pkg/middleware"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/router"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port  int
		host  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the router to browser tabs over a WebSocket",
		Long: `Serve history sockets for browser tabs.

Each tab connects to /ws?href=<its address> and gets a router of
its own. The router answers with push and replace frames; the tab
reports back/forward with pop frames.

Endpoints:
  /ws       history socket
  /routes   declared routes as JSON
  /healthz  liveness
  /metrics  Prometheus metrics (server.metrics)

Examples:
  vroute serve
  vroute serve --port=9000 --host=0.0.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port > 0 {
				e.cfg.Server.Port = port
			}
			if host != "" {
				e.cfg.Server.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, e, watch)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload routes when the config file changes")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, e *env, watch bool) error {
	s, err := newHistoryServer(e)
	if err != nil {
		return err
	}
	if watch {
		if e.cfg.Path() == "" {
			return cliError("--watch needs a config file")
		}
		if err := config.Watch(e.cfg.Path(), s.reload); err != nil {
			return err
		}
		info(cmd.OutOrStdout(), "Watching %s", e.cfg.Path())
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              e.cfg.Address(),
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	w := cmd.OutOrStdout()
	printBanner(w)
	success(w, "Serving history sockets on ws://%s/ws", e.cfg.Address())
	info(w, "%d routes, max %d redirects", len(s.routes()), e.cfg.MaxRedirects)

	g.Go(func() error {
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		e.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// historyServer hands every connecting tab a router of its own.
type historyServer struct {
	env    *env
	remote history.RemoteConfig

	mu       sync.Mutex
	config   vroute.Config
	sessions map[*vroute.Router]struct{}
}

func newHistoryServer(e *env) (*historyServer, error) {
	cfg := e.routerConfig()
	if _, err := router.NewRegistry(cfg.Routes...); err != nil {
		return nil, err
	}
	cfg.Middleware = []navigation.Middleware{
		middleware.OpenTelemetry(),
		middleware.Prometheus(),
	}

	return &historyServer{
		env:      e,
		config:   cfg,
		sessions: make(map[*vroute.Router]struct{}),
		remote: history.RemoteConfig{
			WriteTimeout: e.cfg.WriteTimeout(),
			CheckOrigin:  checkOrigin(e.cfg.Server.AllowedOrigins),
			Logger:       e.logger,
		},
	}, nil
}

func (s *historyServer) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleSocket)
	r.Get("/routes", s.handleRoutes)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.env.cfg.Server.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

func (s *historyServer) handleSocket(w http.ResponseWriter, req *http.Request) {
	remote, err := history.Upgrade(w, req, s.remote)
	if err != nil {
		s.env.logger.Warn("history socket rejected", "remote_addr", req.RemoteAddr, "error", err)
		return
	}
	defer remote.Close()

	logger := s.env.logger.With("history_session", remote.ID())
	middleware.RecordSessionOpen()
	defer middleware.RecordSessionClose()

	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()
	cfg.Logger = logger
	rt, err := vroute.CreateRouter(cfg, remote, hostedViews(cfg, logger)...)
	if err != nil {
		logger.Error("router setup failed", "error", err)
		return
	}
	defer rt.Stop()

	s.track(rt)
	defer s.untrack(rt)

	ctx := req.Context()
	logger.Info("history session opened", "href", remote.Current().String())
	if nav, err := rt.Start(ctx); err != nil {
		logger.Warn("initial navigation failed", "path", nav.Location.String(), "error", err)
	}

	if err := remote.Run(ctx); err != nil {
		logger.Warn("history session ended", "error", err)
		return
	}
	logger.Info("history session closed")
}

func (s *historyServer) handleRoutes(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, s.routes()); err != nil {
		http.Error(w, fmt.Sprintf("encode routes: %v", err), http.StatusInternalServerError)
	}
}

func (s *historyServer) routes() []router.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Routes
}

func (s *historyServer) track(rt *vroute.Router) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rt] = struct{}{}
}

func (s *historyServer) untrack(rt *vroute.Router) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, rt)
}

// reload swaps the route table of new and connected sessions. A config
// that fails to load keeps the current routes.
func (s *historyServer) reload(fc *config.Config, err error) {
	if err != nil {
		s.env.logger.Error("config reload failed, keeping current routes", "error", err)
		return
	}
	next := vroute.ConfigFromFile(fc, s.env.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Routes = next.Routes
	s.config.NotFoundView = next.NotFoundView
	for rt := range s.sessions {
		if err := rt.SetRoutes(next.Routes...); err != nil {
			s.env.logger.Error("route reload failed", "error", err)
			return
		}
	}
	s.env.logger.Info("routes reloaded", "routes", len(next.Routes), "sessions", len(s.sessions))
}

// checkOrigin allows the listed origins. Nil keeps the gorilla default,
// which accepts same-origin requests only.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
