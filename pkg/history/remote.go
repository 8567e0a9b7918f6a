package history

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Frame operations exchanged with the browser tab.
const (
	// OpPush asks the tab to pushState the URL.
	OpPush = "push"

	// OpReplace asks the tab to replaceState the URL.
	OpReplace = "replace"

	// OpPop reports a popstate (back/forward) from the tab.
	OpPop = "pop"
)

// Frame is one JSON message on the history socket.
type Frame struct {
	Op  string `json:"op"`
	URL string `json:"url"`
}

// RemoteConfig configures a Remote history.
type RemoteConfig struct {
	// WriteTimeout bounds each frame write. Default: 10s.
	WriteTimeout time.Duration

	// CheckOrigin is passed to the WebSocket upgrader by Upgrade.
	// Nil uses the gorilla default (same origin only).
	CheckOrigin func(r *http.Request) bool

	// Logger receives connection events. Default: slog.Default().
	Logger *slog.Logger
}

func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Remote mirrors the history of a browser tab connected over a WebSocket.
// Push and Replace send frames the tab applies with pushState/replaceState;
// pop frames from the tab are reported to OnChange handlers.
type Remote struct {
	id     string
	conn   *websocket.Conn
	config RemoteConfig
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	current routepath.Location
	closed  bool

	listeners listeners
	done      chan struct{}
	closeOnce sync.Once
}

// NewRemote wraps an established connection. initial is the address the tab
// showed when it connected.
func NewRemote(conn *websocket.Conn, initial routepath.Location, config RemoteConfig) *Remote {
	config = config.withDefaults()
	if initial.Path == "" {
		initial.Path = "/"
	}
	id := uuid.NewString()
	return &Remote{
		id:      id,
		conn:    conn,
		config:  config,
		logger:  config.Logger.With("history_session", id),
		current: initial,
		done:    make(chan struct{}),
	}
}

// Upgrade upgrades an HTTP request to a history socket. The tab passes its
// current address in the "href" query parameter.
func Upgrade(w http.ResponseWriter, req *http.Request, config RemoteConfig) (*Remote, error) {
	initial := routepath.Location{Path: "/"}
	if href := req.URL.Query().Get("href"); href != "" {
		loc, err := routepath.ParseLocation(href)
		if err != nil {
			http.Error(w, "invalid href", http.StatusBadRequest)
			return nil, errors.New("R007").WithDetailf("href %q", href).Wrap(err)
		}
		initial = loc
	}

	upgrader := websocket.Upgrader{CheckOrigin: config.CheckOrigin}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}
	return NewRemote(conn, initial, config), nil
}

// ID returns the session identifier of this connection.
func (r *Remote) ID() string {
	return r.id
}

// Current returns the address the tab currently shows.
func (r *Remote) Current() routepath.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push sends a push frame and makes loc current once it is written.
func (r *Remote) Push(loc routepath.Location) error {
	return r.send(OpPush, loc)
}

// Replace sends a replace frame and makes loc current once it is written.
func (r *Remote) Replace(loc routepath.Location) error {
	return r.send(OpReplace, loc)
}

// OnChange registers fn for pop frames.
func (r *Remote) OnChange(fn func(routepath.Location)) func() {
	return r.listeners.add(fn)
}

// AsyncChanges reports true: pop frames arrive on the read loop, which must
// keep reading so a newer pop can supersede one still in flight.
func (r *Remote) AsyncChanges() bool {
	return true
}

func (r *Remote) send(op string, loc routepath.Location) error {
	if r.isClosed() {
		return errors.New("R022").WithDetailf("%s %s", op, loc)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.conn.SetWriteDeadline(time.Now().Add(r.config.WriteTimeout))
	if err := r.conn.WriteJSON(Frame{Op: op, URL: loc.String()}); err != nil {
		return errors.New("R020").WithDetailf("%s %s", op, loc).Wrap(err)
	}

	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()
	return nil
}

// Run reads frames until the connection closes or ctx is done.
// A normal close returns nil.
func (r *Remote) Run(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			r.Close()
		case <-r.done:
		}
	}()

	for {
		var f Frame
		if err := r.conn.ReadJSON(&f); err != nil {
			closed := r.isClosed()
			r.Close()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			r.logger.Error("history socket read error", "error", err)
			return errors.New("R022").Wrap(err)
		}

		switch f.Op {
		case OpPop:
			loc, err := routepath.ParseLocation(f.URL)
			if err != nil {
				r.logger.Warn("ignoring pop with invalid url", "url", f.URL, "error", err)
				continue
			}
			r.mu.Lock()
			r.current = loc
			r.mu.Unlock()
			r.listeners.notify(loc)

		default:
			r.logger.Warn("unknown history frame", "op", f.Op)
		}
	}
}

var _ Async = (*Remote)(nil)

// Done is closed when the connection is closed.
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

// Close closes the connection. It is safe to call more than once.
func (r *Remote) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.done)

		r.writeMu.Lock()
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		r.writeMu.Unlock()

		err = r.conn.Close()
	})
	return err
}

func (r *Remote) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
