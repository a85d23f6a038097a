package render

import (
	"errors"
	"time"
)

// Driver consumes rendered frames (websocket hub, stdout, test capture).
type Driver interface {
	Write(*Frame) error
}

// AudioSink is drained once per frame.
type AudioSink interface {
	TakePlayed() []int
	Drain(samples int) float64
}

// Engine snapshots the scene graph each frame and hands the result to the
// driver.
type Engine struct {
	Room  *Node
	Drv   Driver
	Audio AudioSink
	// SamplesPerFrame is how much audio each frame consumes.
	SamplesPerFrame int

	frame uint64
	t0    time.Time

	// metrics (last durations in ms)
	Last struct {
		SnapshotMS float64
		WriteMS    float64
		TotalMS    float64
	}
}

func NewEngine(room *Node, drv Driver, sink AudioSink, samplesPerFrame int) (*Engine, error) {
	if room == nil {
		return nil, errors.New("nil scene root")
	}
	return &Engine{
		Room:            room,
		Drv:             drv,
		Audio:           sink,
		SamplesPerFrame: samplesPerFrame,
		t0:              time.Now(),
	}, nil
}

// Uptime is the time since the engine was created.
func (e *Engine) Uptime() time.Duration { return time.Since(e.t0) }

// FrameID is the id of the last rendered frame.
func (e *Engine) FrameID() uint64 { return e.frame }

// RenderOnce snapshots the graph at timeline offset t, drains audio and
// writes the frame.
func (e *Engine) RenderOnce(t float64) error {
	start := time.Now()
	e.frame++
	f := Snapshot(e.Room)
	f.ID = e.frame
	f.Offset = t
	if e.Audio != nil {
		f.Cues = e.Audio.TakePlayed()
		f.Peak = e.Audio.Drain(e.SamplesPerFrame)
	}
	e.Last.SnapshotMS = float64(time.Since(start).Microseconds()) / 1000.0

	writeStart := time.Now()
	if e.Drv != nil {
		if err := e.Drv.Write(f); err != nil {
			return err
		}
	}
	e.Last.WriteMS = float64(time.Since(writeStart).Microseconds()) / 1000.0
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

// Snapshot collects shown balls and every obstacle under root.
func Snapshot(root *Node) *Frame {
	f := &Frame{Balls: []BallState{}, Obstacles: []ObstacleState{}}
	root.Walk(func(n *Node) {
		switch n.Kind {
		case BallNode:
			if n.Shown() {
				f.Balls = append(f.Balls, BallState{Number: n.ID, Pos: vec(n.World())})
			}
		case ObstacleNode:
			o := ObstacleState{
				ID:      n.ID,
				Kind:    "target",
				Width:   n.Width,
				Height:  n.Height,
				Visible: n.Shown(),
				Pos:     vec(n.World()),
			}
			if n.Barrier {
				o.Kind = "barrier"
			}
			if len(n.children) > 0 {
				move := n.children[0]
				o.Depth = move.Pos.Z
				o.Pos = vec(move.World())
			}
			f.Obstacles = append(f.Obstacles, o)
		}
	})
	return f
}
