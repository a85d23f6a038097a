package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-bounce/internal/audio"
	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/layout"
	"github.com/coreman2200/funtimes-bounce/internal/movie"
	"github.com/coreman2200/funtimes-bounce/internal/playback"
	"github.com/coreman2200/funtimes-bounce/internal/render"
	"github.com/coreman2200/funtimes-bounce/internal/scene"
	"github.com/coreman2200/funtimes-bounce/internal/tests"
)

// StartOffset places a freshly loaded movie just before t=0 so setup
// events at t<0 are applied and nothing else.
const StartOffset = -0.01

type Options struct {
	Rig        layout.Rig
	Driver     render.Driver
	SampleRate beep.SampleRate
	FrameRate  physic.Frequency
	// Ping is the wav played on target hits; empty means silent.
	Ping string
	// Diag receives warnings and lifecycle notices.
	Diag diag.Sink
}

// Status is a copy of the playback state, safe to read from any goroutine.
type Status struct {
	Movie    string  `json:"movie"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
	State    string  `json:"state"`
	Rate     float64 `json:"rate"`
	FrameID  uint64  `json:"frame_id"`
	Test     string  `json:"test,omitempty"`
	Audio    bool    `json:"audio"`
}

// Core owns the controller, clock, engine and audio bank. Everything except
// Do and Status runs on the loop goroutine.
type Core struct {
	opts Options
	cmds chan func()

	Movie *movie.Movie
	Scene *scene.Controller
	Clock *playback.Clock
	Eng   *render.Engine
	Bank  *audio.Bank
	Sink  *audio.MixerSink

	ping   *beep.Buffer
	runner *tests.Runner
	ended  bool

	mu     sync.RWMutex
	status Status
}

func NewCore(opts Options) (*Core, error) {
	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.FrameRate == 0 {
		opts.FrameRate = 60 * physic.Hertz
	}
	if opts.Rig == (layout.Rig{}) {
		opts.Rig = layout.Default()
	}
	sink := audio.NewMixerSink()
	eng, err := render.NewEngine(render.NewNode("room"), opts.Driver, sink, opts.SampleRate.N(opts.FrameRate.Period()))
	if err != nil {
		return nil, err
	}
	return &Core{
		opts: opts,
		cmds: make(chan func(), 256),
		Eng:  eng,
		Sink: sink,
	}, nil
}

// Do queues fn to run on the loop goroutine before the next frame.
func (c *Core) Do(fn func()) {
	select {
	case c.cmds <- fn:
	default:
		log.Warn().Msg("command queue full, dropping")
	}
}

// Load swaps in m, rebuilding the scene graph, controller, clock and
// audio bank. Loop goroutine only.
func (c *Core) Load(m *movie.Movie) {
	if c.Scene != nil {
		c.Scene.Close()
	}
	f := render.NewFactory(c.opts.Rig)
	c.Eng.Room = f.Room
	c.Bank = audio.NewBank(c.Sink)
	if c.ping != nil {
		if err := c.Bank.Bind(c.ping); err != nil {
			log.Error().Err(err).Msg("bind ping")
		}
	}
	c.Movie = m
	c.Scene = scene.New(m, f, c.Bank, StartOffset,
		scene.WithRig(c.opts.Rig),
		scene.WithWarnings(c.opts.Diag),
	)
	c.Clock = playback.New(m.Duration(), c.Scene.SetOffset)
	c.Clock.Seek(StartOffset)
	c.runner = nil
	c.ended = false

	log.Info().Str("movie", m.Name).Int("events", m.Len()).Float64("duration", m.Duration()).Msg("movie loaded")
	c.opts.Diag.Push(diag.Diagnostic{
		Severity: diag.Info,
		Code:     diag.MovieLoaded,
		Summary:  fmt.Sprintf("Loaded %q", m.Name),
		Evidence: map[string]any{"events": m.Len(), "duration": m.Duration()},
	})
	c.publish()
}

// LoadPing starts the async ping load; the buffer is bound on the loop
// goroutine when it arrives and reused for every later movie.
func (c *Core) LoadPing(ctx context.Context) {
	if c.opts.Ping == "" {
		return
	}
	audio.LoadAsync(ctx, c.opts.Ping, c.Do, func(buf *beep.Buffer, err error) {
		if err != nil {
			c.opts.Diag.Push(diag.Diagnostic{
				Severity:       diag.Warn,
				Code:           diag.CueLoadFailed,
				Summary:        "Hit sound unavailable; targets will be silent",
				Detail:         err.Error(),
				SuggestedFixes: []string{"check the ping path in config.yaml"},
			})
			return
		}
		c.BindPing(buf)
	})
}

// BindPing caches buf for later movies and binds the current bank. Loop
// goroutine only.
func (c *Core) BindPing(buf *beep.Buffer) {
	c.ping = buf
	if c.Bank != nil && !c.Bank.Bound() {
		if err := c.Bank.Bind(buf); err != nil {
			log.Error().Err(err).Msg("bind ping")
		}
	}
}

func (c *Core) Play(rate float64) { c.Do(func() { c.play(rate) }) }
func (c *Core) Pause()            { c.Do(func() { c.pause() }) }
func (c *Core) Seek(offset float64) {
	c.Do(func() {
		if c.Clock != nil {
			c.Clock.Seek(offset)
		}
	})
}

// RunTest starts a scrub plan by name. Playback pauses while it runs.
func (c *Core) RunTest(name string) { c.Do(func() { c.runTest(tests.Kind(name)) }) }

func (c *Core) play(rate float64) {
	if c.Clock == nil {
		return
	}
	c.runner = nil
	c.ended = false
	c.Clock.Play(rate)
}

func (c *Core) pause() {
	if c.Clock != nil {
		c.Clock.Pause()
	}
}

func (c *Core) runTest(kind tests.Kind) {
	if !slices.Contains(tests.Kinds(), kind) {
		c.opts.Diag.Push(diag.Diagnostic{
			Severity: diag.Warn, Code: diag.TestUnknown, Summary: "Unknown test name",
			Evidence: map[string]any{"name": string(kind)},
		})
		return
	}
	if c.Movie == nil {
		return
	}
	c.Clock.Pause()
	c.runner = tests.NewRunner(tests.PlanFor(kind, c.Movie.Start(), c.Movie.Duration()))
	c.opts.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.TestRunning, Summary: "Running test", Detail: string(kind)})
}

// Tick drains queued commands, advances the clock to frame time nowMs and
// renders one frame.
func (c *Core) Tick(nowMs float64) error {
drain:
	for {
		select {
		case fn := <-c.cmds:
			fn()
		default:
			break drain
		}
	}
	if c.Clock == nil {
		return nil
	}
	if c.runner != nil && !c.runner.Step(c.Clock.Seek) {
		c.opts.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.TestDone, Summary: "Test complete", Detail: string(c.runner.Kind())})
		c.runner = nil
	}
	c.Clock.Animate(nowMs)
	if c.Clock.Ended() && !c.ended {
		c.ended = true
		log.Info().Float64("offset", c.Clock.Offset()).Msg("end of movie")
		c.opts.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.EndOfMovie, Summary: "Playback reached the end"})
	}
	err := c.Eng.RenderOnce(c.Clock.Offset())
	c.publish()
	return err
}

// Ended reports whether playback stopped at the end of the movie.
func (c *Core) Ended() bool { return c.ended }

func (c *Core) publish() {
	st := Status{FrameID: c.Eng.FrameID(), Audio: c.Bank != nil && c.Bank.Bound()}
	if c.Movie != nil {
		st.Movie = c.Movie.Name
	}
	if c.Clock != nil {
		st.Offset = c.Clock.Offset()
		st.Duration = c.Clock.Duration()
		st.State = c.Clock.State().String()
		st.Rate = c.Clock.Rate()
	}
	if c.runner != nil {
		st.Test = string(c.runner.Kind())
	}
	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
}

func (c *Core) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Run drives Tick at the configured frame rate until ctx is done.
func (c *Core) Run(ctx context.Context) error {
	c.LoadPing(ctx)
	tick := time.NewTicker(c.opts.FrameRate.Period())
	defer tick.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			if c.Scene != nil {
				c.Scene.Close()
			}
			return ctx.Err()
		case <-tick.C:
			ms := float64(time.Since(start).Microseconds()) / 1000.0
			if err := c.Tick(ms); err != nil {
				log.Debug().Err(err).Msg("render")
			}
		}
	}
}
