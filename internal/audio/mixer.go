package audio

import (
	"math"

	"github.com/faiface/beep"
)

// MixerSink mixes fired cues into one stream that the frame loop drains.
type MixerSink struct {
	mixer  beep.Mixer
	played []int
	buf    [][2]float64
}

func NewMixerSink() *MixerSink { return &MixerSink{} }

func (m *MixerSink) Play(id int, s beep.Streamer) {
	m.mixer.Add(s)
	m.played = append(m.played, id)
}

// TakePlayed returns the ids fired since the last call.
func (m *MixerSink) TakePlayed() []int {
	p := m.played
	m.played = nil
	return p
}

// Active is the number of cues still sounding.
func (m *MixerSink) Active() int { return m.mixer.Len() }

// Drain consumes n samples from the mix and returns their peak amplitude.
// Finished cues drop out of the mixer.
func (m *MixerSink) Drain(n int) float64 {
	if n <= 0 {
		return 0
	}
	if cap(m.buf) < n {
		m.buf = make([][2]float64, n)
	}
	buf := m.buf[:n]
	m.mixer.Stream(buf)
	peak := 0.0
	for _, s := range buf {
		peak = math.Max(peak, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return peak
}
