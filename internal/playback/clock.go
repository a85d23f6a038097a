// Package playback turns frame callbacks into timeline offsets.
package playback

import (
	"math"

	"github.com/rs/zerolog/log"
)

type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// Clock tracks the current offset into a movie and forwards every change to
// setOffset. It performs no scheduling; the frame loop calls Animate.
type Clock struct {
	duration  float64
	setOffset func(float64)

	state  State
	rate   float64
	offset float64
	// anchor is the frame time, in seconds, that maps to offset 0 at the
	// current rate. NaN when it must be recomputed on the next frame.
	anchor float64
}

// New returns a paused Clock at offset 0. setOffset may be nil.
func New(duration float64, setOffset func(float64)) *Clock {
	return &Clock{
		duration:  duration,
		setOffset: setOffset,
		rate:      1,
		anchor:    math.NaN(),
	}
}

// Play starts or continues playback at rate. A changed rate re-anchors on
// the next frame so the offset does not jump. Playing from the end restarts
// at 0. A zero rate pauses.
func (c *Clock) Play(rate float64) {
	if rate == 0 {
		log.Debug().Msg("play at rate 0, pausing")
		c.Pause()
		return
	}
	c.state = Playing
	if rate != c.rate {
		c.rate = rate
		c.anchor = math.NaN()
	}
	if c.offset >= c.duration {
		c.offset = 0
		c.anchor = math.NaN()
	}
}

// Pause stops playback; the next Play re-anchors at the current offset.
func (c *Clock) Pause() {
	c.state = Paused
	c.anchor = math.NaN()
}

// Animate advances the clock to frame time ms (milliseconds, monotonic).
func (c *Clock) Animate(ms float64) {
	if c.state != Playing {
		return
	}
	now := ms / 1000
	if math.IsNaN(c.anchor) {
		c.anchor = now - c.offset/c.rate
	}
	if c.offset > c.duration {
		log.Debug().Float64("offset", c.offset).Msg("end of movie")
		c.Pause()
		return
	}
	next := (now - c.anchor) * c.rate
	if next != c.offset {
		c.push(next)
	}
}

// Seek jumps to offset and pushes it immediately. Playback, if running,
// continues from there on the next frame.
func (c *Clock) Seek(offset float64) {
	c.anchor = math.NaN()
	if offset != c.offset {
		c.push(offset)
	}
}

func (c *Clock) push(offset float64) {
	c.offset = offset
	if c.setOffset != nil {
		c.setOffset(offset)
	}
}

func (c *Clock) Offset() float64   { return c.offset }
func (c *Clock) Rate() float64     { return c.rate }
func (c *Clock) State() State      { return c.state }
func (c *Clock) Duration() float64 { return c.duration }

// Ended reports whether the clock has stopped past the last event.
func (c *Clock) Ended() bool { return c.state == Paused && c.offset > c.duration }
