package audio

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog/log"
)

// Load decodes the WAV file at path into memory.
func Load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a whole WAV stream into a Buffer.
func Decode(r io.Reader) (*beep.Buffer, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer s.Close()
	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return buf, nil
}

// LoadAsync loads path on a new goroutine and hands the result to done via
// post, which must run it on the goroutine that owns the Bank. Nothing is
// posted once ctx is done.
func LoadAsync(ctx context.Context, path string, post func(func()), done func(*beep.Buffer, error)) {
	go func() {
		buf, err := Load(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("audio load failed")
		}
		if ctx.Err() != nil {
			return
		}
		post(func() { done(buf, err) })
	}()
}
