package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-bounce/internal/app"
	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/render"
	"github.com/coreman2200/funtimes-bounce/internal/store"
)

// Player is the control surface of the replay loop.
type Player interface {
	Play(rate float64)
	Pause()
	Seek(offset float64)
	RunTest(name string)
	Status() app.Status
}

// Library lists and loads stored movies.
type Library interface {
	List() ([]store.Entry, error)
	LoadInto(id string) error
}

// State is the websocket hub. It is the frame driver of the replay loop and
// forwards control messages to the Player.
type State struct {
	Player  Player
	Library Library

	mu          sync.RWMutex
	diagMu      sync.Mutex
	frameID     uint64
	offset      float64
	startTime   time.Time
	clients     map[*websocket.Conn]string
	diagClients map[*websocket.Conn]string
}

func NewState(p Player, lib Library) *State {
	return &State{
		Player:      p,
		Library:     lib,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]string{},
		diagClients: map[*websocket.Conn]string{},
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Write implements render.Driver by broadcasting the frame to /ws clients.
func (s *State) Write(f *render.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.frameID = f.ID
	s.offset = f.Offset
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c, id := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("client", id).Msg("write frame")
		}
	}
	return nil
}

// Clients reports connected frame and diagnostics clients.
func (s *State) Clients() (frames, diags int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients), len(s.diagClients)
}

// register adds conn to set and drops it once the peer goes away.
func (s *State) register(set map[*websocket.Conn]string, conn *websocket.Conn, kind string) {
	id := uuid.New().String()
	s.mu.Lock()
	set[conn] = id
	s.mu.Unlock()
	log.Info().Str("client", id).Str("kind", kind).Msg("client connected")

	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
			log.Info().Str("client", id).Str("kind", kind).Msg("client gone")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.register(s.clients, conn, "frames")
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.register(s.diagClients, conn, "diag")
}

// HandleControlWS reads JSON commands and answers each with the status.
func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Push(diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.BAD_JSON", Summary: "Control message is not JSON", Detail: err.Error()})
			continue
		}
		s.applyControl(msg)
		b, _ := json.Marshal(s.Player.Status())
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Player.Status()
	s.mu.RLock()
	resp := map[string]any{
		"frame_id":     s.frameID,
		"uptime_s":     time.Since(s.startTime).Seconds(),
		"offset":       s.offset,
		"movie":        st.Movie,
		"state":        st.State,
		"clients":      len(s.clients),
		"diag_clients": len(s.diagClients),
	}
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) HandleMovies(w http.ResponseWriter, r *http.Request) {
	if s.Library == nil {
		http.Error(w, "no movie library", http.StatusServiceUnavailable)
		return
	}
	list, err := s.Library.List()
	if err != nil {
		log.Error().Err(err).Msg("list movies")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (s *State) applyControl(msg map[string]any) {
	cmd, _ := msg["cmd"].(string)
	switch cmd {
	case "play":
		rate := 1.0
		if v, ok := msg["rate"].(float64); ok {
			rate = v
		}
		s.Player.Play(rate)
	case "pause":
		s.Player.Pause()
	case "seek":
		if v, ok := msg["offset"].(float64); ok {
			s.Player.Seek(v)
		}
	case "load":
		id, _ := msg["id"].(string)
		if s.Library == nil {
			return
		}
		if err := s.Library.LoadInto(id); err != nil {
			s.Push(diag.Diagnostic{
				Severity: diag.Err, Code: "MOVIE.LOAD_FAILED", Summary: "Could not load movie",
				Detail: err.Error(), Evidence: map[string]any{"id": id},
			})
		}
	case "runTest":
		name, _ := msg["name"].(string)
		s.Player.RunTest(name)
	default:
		s.Push(diag.Diagnostic{
			Severity: diag.Warn, Code: "CONTROL.UNKNOWN", Summary: "Unknown control command",
			Evidence: map[string]any{"cmd": cmd},
		})
	}
}

// Push sends d to every /diag client. It is a diag.Sink.
func (s *State) Push(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
