package fake

import (
	"fmt"
	"io"
	"os"

	"github.com/coreman2200/funtimes-bounce/internal/render"
)

// Driver prints a compact summary of each frame, useful for headless runs.
type Driver struct {
	Out   io.Writer
	Count int
	// Every prints only every Nth frame when > 1.
	Every int
}

func (d *Driver) Write(f *render.Frame) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 && len(f.Cues) == 0 {
		return nil
	}
	w := d.Out
	if w == nil {
		w = os.Stdout
	}
	retracted := 0
	for _, o := range f.Obstacles {
		if o.Depth < 0 {
			retracted++
		}
	}
	line := fmt.Sprintf("[frame %04d] t=%6.3f balls=%d obstacles=%d retracted=%d",
		f.ID, f.Offset, len(f.Balls), len(f.Obstacles), retracted)
	for _, b := range f.Balls {
		line += fmt.Sprintf(" ball%d=(%.2f,%.2f)", b.Number, b.Pos.X, b.Pos.Y)
	}
	if len(f.Cues) > 0 {
		line += fmt.Sprintf(" ping=%v", f.Cues)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
