// Package audio plays a shared one-shot sound when a target is hit.
//
// Every target gets a Cue from the Bank. Cues start Unbound and ignore Play
// until the Bank binds the shared buffer, which happens once per movie when
// the loader finishes.
package audio

import (
	"errors"

	"github.com/faiface/beep"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-bounce/internal/scene"
)

var ErrAlreadyBound = errors.New("audio: buffer already bound")

type CueState int

const (
	Unbound CueState = iota
	Bound
)

func (s CueState) String() string {
	if s == Bound {
		return "bound"
	}
	return "unbound"
}

// Sink receives the streamer for each cue that fires.
type Sink interface {
	Play(id int, s beep.Streamer)
}

// Cue is attached to one target.
type Cue struct {
	id    int
	bank  *Bank
	state CueState
}

func (c *Cue) State() CueState { return c.state }

// Play starts a fresh streamer over the shared buffer. No-op while unbound.
func (c *Cue) Play() {
	if c.state != Bound {
		log.Debug().Int("id", c.id).Msg("cue not ready")
		return
	}
	buf := c.bank.buf
	c.bank.sink.Play(c.id, buf.Streamer(0, buf.Len()))
}

// Bank hands out cues and binds them all to one buffer.
type Bank struct {
	sink Sink
	buf  *beep.Buffer
	cues []*Cue
}

func NewBank(sink Sink) *Bank {
	return &Bank{sink: sink}
}

// AttachCue implements scene.CueAttacher.
func (b *Bank) AttachCue(id int) scene.Cue {
	c := &Cue{id: id, bank: b}
	if b.buf != nil {
		c.state = Bound
	}
	b.cues = append(b.cues, c)
	return c
}

// Bind sets the shared buffer and moves every cue to Bound. It succeeds once.
func (b *Bank) Bind(buf *beep.Buffer) error {
	if buf == nil {
		return errors.New("audio: nil buffer")
	}
	if b.buf != nil {
		return ErrAlreadyBound
	}
	b.buf = buf
	for _, c := range b.cues {
		c.state = Bound
	}
	log.Info().Int("cues", len(b.cues)).Dur("length", buf.Format().SampleRate.D(buf.Len())).Msg("audio bound")
	return nil
}

func (b *Bank) Bound() bool { return b.buf != nil }

// Cues returns the number of attached cues.
func (b *Bank) Cues() int { return len(b.cues) }
