// Package scene keeps a mutable scene graph in step with a Movie.
//
// The Controller holds a cursor into the event log. SetOffset walks the
// cursor forward, applying events whose time has been reached, or backward,
// undoing events that lie after the requested time. Balls and obstacles are
// created lazily the first time an event needs them and are never destroyed
// while the Controller lives; a ball that leaves the rig is only hidden.
//
// Creation events are expected at or before the earliest offset ever
// requested, so they are never undone.
package scene

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r3"

	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/layout"
	"github.com/coreman2200/funtimes-bounce/internal/movie"
)

type obstacle struct {
	kind   ObstacleKind
	handle ObstacleHandle
	cue    Cue
}

// Controller maps timeline offsets onto scene state. It is not safe for
// concurrent use; drive it from the frame loop.
type Controller struct {
	movie   *movie.Movie
	factory EntityFactory
	cues    CueAttacher
	rig     layout.Rig
	warn    diag.Sink
	log     zerolog.Logger

	cursor    int
	balls     map[int]BallHandle
	obstacles map[int]*obstacle
	current   int
	maxBall   int

	// prev[i] links event i to the event whose state undoing it restores:
	// the previous placement of the same ball (positions, hits, exits),
	// the previous fade of the same target, or the previous launch.
	// -1 when there is none.
	prev []int
}

type Option func(*Controller)

// WithRig overrides the rig geometry used for rest position and fade depth.
func WithRig(r layout.Rig) Option { return func(c *Controller) { c.rig = r } }

// WithWarnings routes data-consistency warnings to sink.
func WithWarnings(sink diag.Sink) Option { return func(c *Controller) { c.warn = sink } }

// WithLogger replaces the package logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// New builds a Controller for m and synchronizes it to offset. cues may be
// nil, in which case targets are silent.
func New(m *movie.Movie, factory EntityFactory, cues CueAttacher, offset float64, opts ...Option) *Controller {
	c := &Controller{
		movie:     m,
		factory:   factory,
		cues:      cues,
		rig:       layout.Default(),
		log:       log.With().Str("component", "scene").Logger(),
		cursor:    -1,
		balls:     map[int]BallHandle{},
		obstacles: map[int]*obstacle{},
		current:   -1,
		maxBall:   -1,
	}
	for _, o := range opts {
		o(c)
	}
	c.link()
	c.SetOffset(offset)
	return c
}

func (c *Controller) link() {
	c.prev = make([]int, c.movie.Len())
	placed := map[int]int{}
	faded := map[int]int{}
	launched := -1
	for i := range c.prev {
		c.prev[i] = -1
		e := c.movie.At(i)
		switch ev := e.(type) {
		case movie.BallLaunch:
			c.prev[i] = launched
			launched = i
			placed[ev.Ball] = i
		case movie.BallExit:
			if j, ok := placed[ev.Ball]; ok {
				c.prev[i] = j
			}
		case movie.ObstacleFade:
			if j, ok := faded[ev.TargetID]; ok {
				c.prev[i] = j
			}
			faded[ev.TargetID] = i
		default:
			if ball, _, ok := movie.Placed(e); ok {
				if j, ok := placed[ball]; ok {
					c.prev[i] = j
				}
				placed[ball] = i
			}
		}
	}
}

// SetOffset brings the scene to the state where every event with
// time <= ts has been applied and no other. Only one of the two loops
// runs for any call.
func (c *Controller) SetOffset(ts float64) {
	n := c.movie.Len()
	for c.cursor+1 < n && c.movie.At(c.cursor+1).At() <= ts {
		c.cursor++
		c.apply(c.cursor, c.movie.At(c.cursor))
	}

	for c.cursor > 0 && ts < c.movie.At(c.cursor).At() {
		c.undo(c.cursor, c.movie.At(c.cursor))
		c.cursor--
	}
}

func (c *Controller) apply(i int, e movie.Event) {
	switch ev := e.(type) {
	case movie.MakeBarrier:
		c.makeObstacle(Barrier, ev.ID, ev.Rect)
	case movie.MakeTarget:
		c.makeObstacle(Target, ev.ID, ev.Rect)
	case movie.BallLaunch:
		c.launch(ev)
	case movie.BallPosition:
		c.place(i, ev.Ball, ev.X, ev.Y)
	case movie.HitBarrier:
		c.place(i, ev.Ball, ev.X, ev.Y)
		c.ring(i, ev.BarrierID)
	case movie.HitTarget:
		c.place(i, ev.Ball, ev.X, ev.Y)
		c.ring(i, ev.TargetID)
	case movie.ObstacleFade:
		c.fade(i, ev.TargetID, ev.FadeLevel)
	case movie.BallExit:
		if b, ok := c.ball(i, ev.Ball); ok {
			b.SetVisible(false)
			c.log.Debug().Int("ball", ev.Ball).Msg("ball exit")
		}
	case movie.HitEdge:
		if _, ok := c.ball(i, ev.Ball); ok {
			c.current = ev.Ball
		}
	default:
		c.warnf(i, diag.Warn, "SCENE.UNHANDLED", "unhandled event kind %s", e.Kind())
	}
}

func (c *Controller) undo(i int, e movie.Event) {
	switch ev := e.(type) {
	case movie.MakeBarrier, movie.MakeTarget:
		// Creation precedes every requested offset.
	case movie.BallLaunch:
		b, ok := c.ball(i, ev.Ball)
		if !ok {
			return
		}
		b.SetPosition(c.rig.Rest())
		b.SetVisible(false)
		if c.current == ev.Ball {
			c.current = -1
			if j := c.prev[i]; j >= 0 {
				c.current = c.movie.At(j).(movie.BallLaunch).Ball
			}
		}
	case movie.BallPosition:
		c.restore(i, ev.Ball)
	case movie.HitBarrier:
		c.restore(i, ev.Ball)
	case movie.HitTarget:
		c.restore(i, ev.Ball)
	case movie.ObstacleFade:
		level := 0.0
		if j := c.prev[i]; j >= 0 {
			level = c.movie.At(j).(movie.ObstacleFade).FadeLevel
		}
		c.fade(i, ev.TargetID, level)
	case movie.BallExit:
		b, ok := c.ball(i, ev.Ball)
		if !ok {
			return
		}
		c.restore(i, ev.Ball)
		b.SetVisible(true)
		if ev.Ball == c.maxBall {
			c.current = ev.Ball
		}
	case movie.HitEdge:
		if _, ok := c.ball(i, ev.Ball); ok {
			c.current = ev.Ball
		}
	default:
		c.warnf(i, diag.Warn, "SCENE.UNHANDLED", "unhandled event kind %s", e.Kind())
	}
}

func (c *Controller) makeObstacle(kind ObstacleKind, id int, rect movie.Rect) {
	o, ok := c.obstacles[id]
	if !ok {
		o = &obstacle{kind: kind, handle: c.factory.CreateObstacle(kind, id, rect)}
		if kind == Target && c.cues != nil {
			o.cue = c.cues.AttachCue(id)
		}
		c.obstacles[id] = o
		c.log.Debug().Int("id", id).Stringer("kind", kind).Msg("made obstacle")
	}
	o.handle.SetPosition(rect.Center())
	o.handle.SetVisible(true)
}

func (c *Controller) launch(ev movie.BallLaunch) {
	b, ok := c.balls[ev.Ball]
	if ok {
		c.log.Debug().Int("ball", ev.Ball).Msg("revealed ball")
	} else {
		b = c.factory.CreateBall(ev.Ball)
		c.balls[ev.Ball] = b
		c.maxBall = max(c.maxBall, ev.Ball)
		c.log.Debug().Int("ball", ev.Ball).Msg("made ball")
	}
	b.SetVisible(true)
	b.SetPosition(r3.Vec{X: ev.X, Y: ev.Y})
	c.current = ev.Ball
}

func (c *Controller) place(i, ball int, x, y float64) {
	if c.current < 0 {
		c.warnf(i, diag.Warn, diag.NoBall, "no ball to position (ball %d)", ball)
		return
	}
	if b, ok := c.ball(i, ball); ok {
		b.SetPosition(r3.Vec{X: x, Y: y})
	}
}

// restore puts ball back where the event before i left it.
func (c *Controller) restore(i, ball int) {
	b, ok := c.ball(i, ball)
	if !ok {
		return
	}
	j := c.prev[i]
	if j < 0 {
		b.SetPosition(c.rig.Rest())
		return
	}
	_, pos, _ := movie.Placed(c.movie.At(j))
	b.SetPosition(pos)
}

func (c *Controller) ring(i, id int) {
	o, ok := c.obstacles[id]
	if !ok {
		c.warnf(i, diag.Warn, diag.UnknownObstacle, "hit on unknown obstacle %d", id)
		return
	}
	if o.cue != nil {
		o.cue.Play()
	}
}

func (c *Controller) fade(i, id int, level float64) {
	o, ok := c.obstacles[id]
	if !ok {
		c.warnf(i, diag.Warn, diag.UnknownObstacle, "fade on unknown obstacle %d", id)
		return
	}
	o.handle.SetDepthOffset(c.rig.FadeDepth(level))
}

func (c *Controller) ball(i, n int) (BallHandle, bool) {
	b, ok := c.balls[n]
	if !ok {
		c.warnf(i, diag.Warn, diag.UnknownBall, "ball %d has not been launched", n)
	}
	return b, ok
}

func (c *Controller) warnf(i int, sev diag.Severity, code, format string, args ...any) {
	e := c.movie.At(i)
	msg := fmt.Sprintf(format, args...)
	c.log.Warn().Int("event", i).Float64("time", e.At()).Str("code", code).Msg(msg)
	c.warn.Push(diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Summary:  msg,
		Evidence: map[string]any{"event": i, "time": e.At(), "type": string(e.Kind())},
	})
}

// Cursor is the index of the last applied event, -1 before any.
func (c *Controller) Cursor() int { return c.cursor }

// Movie returns the movie this Controller replays.
func (c *Controller) Movie() *movie.Movie { return c.movie }

// CurrentBall reports the most recently active ball.
func (c *Controller) CurrentBall() (int, bool) { return c.current, c.current >= 0 }

func (c *Controller) Ball(n int) (BallHandle, bool) {
	b, ok := c.balls[n]
	return b, ok
}

func (c *Controller) Obstacle(id int) (ObstacleHandle, bool) {
	o, ok := c.obstacles[id]
	if !ok {
		return nil, false
	}
	return o.handle, true
}

// Close releases every handle the Controller created. The Controller must
// not be used afterwards.
func (c *Controller) Close() {
	for n, b := range c.balls {
		if r, ok := b.(releaser); ok {
			r.Release()
		}
		delete(c.balls, n)
	}
	for id, o := range c.obstacles {
		if r, ok := o.handle.(releaser); ok {
			r.Release()
		}
		delete(c.obstacles, id)
	}
	c.cursor = -1
	c.current = -1
}
