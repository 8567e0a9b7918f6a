package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/routepath"
)

type remotePair struct {
	remote *Remote
	client *websocket.Conn
	runErr chan error
}

func dialRemote(t *testing.T, href string) *remotePair {
	t.Helper()

	remotes := make(chan *Remote, 1)
	runErr := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, err := Upgrade(w, r, RemoteConfig{WriteTimeout: time.Second})
		if err != nil {
			return
		}
		remotes <- h
		runErr <- h.Run(context.Background())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/history"
	if href != "" {
		url += "?href=" + href
	}
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case h := <-remotes:
		t.Cleanup(func() { h.Close() })
		return &remotePair{remote: h, client: client, runErr: runErr}
	case <-time.After(2 * time.Second):
		t.Fatal("server never upgraded")
		return nil
	}
}

func (p *remotePair) readFrame(t *testing.T) Frame {
	t.Helper()
	var f Frame
	require.NoError(t, p.client.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, p.client.ReadJSON(&f))
	return f
}

func TestRemoteInitialLocationFromHref(t *testing.T) {
	p := dialRemote(t, "%2Fdaily%3Fd%3D1")
	assert.Equal(t, "/daily?d=1", p.remote.Current().String())
	assert.NotEmpty(t, p.remote.ID())
}

func TestRemoteDefaultsToRoot(t *testing.T) {
	p := dialRemote(t, "")
	assert.Equal(t, "/", p.remote.Current().String())
}

func TestRemotePushAndReplaceSendFrames(t *testing.T) {
	p := dialRemote(t, "")

	require.NoError(t, p.remote.Replace(routepath.MustParseLocation("/write")))
	assert.Equal(t, Frame{Op: OpReplace, URL: "/write"}, p.readFrame(t))
	assert.Equal(t, "/write", p.remote.Current().String())

	require.NoError(t, p.remote.Push(routepath.MustParseLocation("/monthly?m=2024-02#top")))
	assert.Equal(t, Frame{Op: OpPush, URL: "/monthly?m=2024-02#top"}, p.readFrame(t))
	assert.Equal(t, "/monthly?m=2024-02#top", p.remote.Current().String())
}

func TestRemotePopNotifiesOnChange(t *testing.T) {
	p := dialRemote(t, "")

	got := make(chan routepath.Location, 4)
	p.remote.OnChange(func(l routepath.Location) { got <- l })

	require.NoError(t, p.client.WriteJSON(Frame{Op: "bogus", URL: "/x"}))
	require.NoError(t, p.client.WriteJSON(Frame{Op: OpPop, URL: "bad\\path"}))
	require.NoError(t, p.client.WriteJSON(Frame{Op: OpPop, URL: "/daily"}))

	select {
	case l := <-got:
		assert.Equal(t, "/daily", l.String())
	case <-time.After(2 * time.Second):
		t.Fatal("pop was not reported")
	}
	assert.Equal(t, "/daily", p.remote.Current().String())
	assert.Empty(t, got, "only the valid pop frame is reported")
}

func TestRemoteClientCloseEndsRun(t *testing.T) {
	p := dialRemote(t, "")

	require.NoError(t, p.client.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	select {
	case err := <-p.runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after close")
	}

	<-p.remote.Done()
	err := p.remote.Push(routepath.MustParseLocation("/write"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.Code("R022"))
}

func TestUpgradeRejectsInvalidHref(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/history?href=daily", nil)
	rec := httptest.NewRecorder()

	_, err := Upgrade(rec, req, RemoteConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.Code("R007"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
