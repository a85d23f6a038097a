package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-bounce/internal/app"
	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/render"
	"github.com/coreman2200/funtimes-bounce/internal/store"
)

type fakePlayer struct {
	mu    sync.Mutex
	calls []string
	rate  float64
	seek  float64
}

func (p *fakePlayer) record(s string, set func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, s)
	if set != nil {
		set()
	}
}

func (p *fakePlayer) Play(rate float64)   { p.record("play", func() { p.rate = rate }) }
func (p *fakePlayer) Pause()              { p.record("pause", nil) }
func (p *fakePlayer) Seek(offset float64) { p.record("seek", func() { p.seek = offset }) }
func (p *fakePlayer) RunTest(name string) { p.record("test:"+name, nil) }
func (p *fakePlayer) Status() app.Status  { return app.Status{Movie: "demo", State: "playing"} }

type fakeLibrary struct{ loaded []string }

func (l *fakeLibrary) List() ([]store.Entry, error) {
	return []store.Entry{{ID: "abc", Name: "demo", Events: 19}}, nil
}

func (l *fakeLibrary) LoadInto(id string) error {
	if id != "abc" {
		return store.ErrNotFound
	}
	l.loaded = append(l.loaded, id)
	return nil
}

func serve(t *testing.T, s *State) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/movies", s.HandleMovies)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestControlCommands(t *testing.T) {
	p := &fakePlayer{}
	lib := &fakeLibrary{}
	srv := serve(t, NewState(p, lib))
	conn := dial(t, srv, "/control")

	for _, msg := range []string{
		`{"cmd":"play","rate":0.5}`,
		`{"cmd":"seek","offset":1.25}`,
		`{"cmd":"pause"}`,
		`{"cmd":"runTest","name":"jitter"}`,
		`{"cmd":"load","id":"abc"}`,
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var st app.Status
		require.NoError(t, json.Unmarshal(data, &st))
		assert.Equal(t, "demo", st.Movie)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []string{"play", "seek", "pause", "test:jitter"}, p.calls)
	assert.Equal(t, 0.5, p.rate)
	assert.Equal(t, 1.25, p.seek)
	assert.Equal(t, []string{"abc"}, lib.loaded)
}

func TestFramesBroadcast(t *testing.T) {
	s := NewState(&fakePlayer{}, nil)
	srv := serve(t, s)
	conn := dial(t, srv, "/ws")
	require.Eventually(t, func() bool { n, _ := s.Clients(); return n == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Write(&render.Frame{ID: 7, Offset: 1.5, Balls: []render.BallState{{Number: 0}}}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f render.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, uint64(7), f.ID)
	assert.Len(t, f.Balls, 1)
}

func TestDiagnosticsReachClients(t *testing.T) {
	s := NewState(&fakePlayer{}, &fakeLibrary{})
	srv := serve(t, s)
	d := dial(t, srv, "/diag")
	require.Eventually(t, func() bool { _, n := s.Clients(); return n == 1 }, 2*time.Second, 10*time.Millisecond)

	ctl := dial(t, srv, "/control")
	require.NoError(t, ctl.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"load","id":"zzz"}`)))

	d.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := d.ReadMessage()
	require.NoError(t, err)
	var got diag.Diagnostic
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "MOVIE.LOAD_FAILED", got.Code)
	assert.Equal(t, "zzz", got.Evidence["id"])
}

func TestHealthAndMovies(t *testing.T) {
	s := NewState(&fakePlayer{}, &fakeLibrary{})
	srv := serve(t, s)
	require.NoError(t, s.Write(&render.Frame{ID: 42, Offset: 2}))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, 42.0, h["frame_id"])
	assert.Equal(t, 2.0, h["offset"])
	assert.Equal(t, "demo", h["movie"])

	resp, err = http.Get(srv.URL + "/movies")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []store.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "abc", list[0].ID)
}

func TestMoviesWithoutLibrary(t *testing.T) {
	srv := serve(t, NewState(&fakePlayer{}, nil))
	resp, err := http.Get(srv.URL + "/movies")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
