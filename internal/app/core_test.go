package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/movie"
	"github.com/coreman2200/funtimes-bounce/internal/playback"
	"github.com/coreman2200/funtimes-bounce/internal/render"
	"github.com/coreman2200/funtimes-bounce/internal/store"
)

type recordDriver struct{ frames []*render.Frame }

func (d *recordDriver) Write(f *render.Frame) error {
	d.frames = append(d.frames, f)
	return nil
}

func (d *recordDriver) last() *render.Frame { return d.frames[len(d.frames)-1] }

type diagLog struct{ got []diag.Diagnostic }

func (l *diagLog) push(d diag.Diagnostic) { l.got = append(l.got, d) }

func (l *diagLog) codes() []string {
	var out []string
	for _, d := range l.got {
		out = append(out, d.Code)
	}
	return out
}

func demo(t *testing.T) *movie.Movie {
	t.Helper()
	f, err := os.Open("../movie/testdata/demo.json")
	require.NoError(t, err)
	defer f.Close()
	m, err := movie.Decode(f)
	require.NoError(t, err)
	return m
}

func newCore(t *testing.T) (*Core, *recordDriver, *diagLog) {
	t.Helper()
	drv := &recordDriver{}
	dl := &diagLog{}
	c, err := NewCore(Options{Driver: drv, Diag: dl.push})
	require.NoError(t, err)
	c.Load(demo(t))
	return c, drv, dl
}

func silence(n int) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2})
	buf.Append(beep.Silence(n))
	return buf
}

func TestLoadStartsBeforeZero(t *testing.T) {
	c, drv, dl := newCore(t)
	require.NoError(t, c.Tick(0))

	f := drv.last()
	assert.Equal(t, StartOffset, f.Offset)
	assert.Len(t, f.Obstacles, 3, "setup events before t=0 are applied")
	assert.Empty(t, f.Balls)
	assert.Equal(t, []string{diag.MovieLoaded}, dl.codes())
	assert.Equal(t, "paused", c.Status().State)
}

func TestPlayThroughToEnd(t *testing.T) {
	c, drv, dl := newCore(t)
	c.BindPing(silence(100))

	c.Play(1)
	require.NoError(t, c.Tick(1000))
	assert.Equal(t, playback.Playing, c.Clock.State())

	require.NoError(t, c.Tick(1500))
	f := drv.last()
	require.Len(t, f.Balls, 1)
	assert.Equal(t, 0, f.Balls[0].Number)

	require.NoError(t, c.Tick(5000))
	assert.Equal(t, []int{0}, drv.last().Cues, "one target hit rang once")
	assert.Empty(t, drv.last().Balls, "both balls exited")

	require.NoError(t, c.Tick(5016))
	assert.True(t, c.Ended())
	assert.Equal(t, playback.Paused, c.Clock.State())
	assert.Contains(t, dl.codes(), diag.EndOfMovie)

	st := c.Status()
	assert.Equal(t, "demo", st.Movie)
	assert.True(t, st.Audio)
	assert.Equal(t, uint64(4), st.FrameID)
}

func TestSilentWithoutPing(t *testing.T) {
	c, drv, _ := newCore(t)
	c.Play(1)
	require.NoError(t, c.Tick(0))
	require.NoError(t, c.Tick(5000))
	assert.Empty(t, drv.last().Cues)
	assert.False(t, c.Status().Audio)
}

func TestPingBindsLateAndCarriesOver(t *testing.T) {
	c, _, _ := newCore(t)
	assert.False(t, c.Bank.Bound())

	c.Do(func() { c.BindPing(silence(10)) })
	require.NoError(t, c.Tick(0))
	assert.True(t, c.Bank.Bound())

	c.Load(demo(t))
	assert.True(t, c.Bank.Bound(), "a new movie reuses the loaded buffer")
}

func TestLoadPingFailureIsDiagnosed(t *testing.T) {
	drv := &recordDriver{}
	dl := &diagLog{}
	c, err := NewCore(Options{Driver: drv, Diag: dl.push, Ping: "/nonexistent/ping.wav"})
	require.NoError(t, err)
	c.Load(demo(t))

	c.LoadPing(context.Background())
	fn := <-c.cmds
	fn()
	assert.Contains(t, dl.codes(), diag.CueLoadFailed)
	assert.False(t, c.Bank.Bound())
}

func TestSeekCommand(t *testing.T) {
	c, drv, _ := newCore(t)
	c.Seek(2.1)
	require.NoError(t, c.Tick(0))
	f := drv.last()
	assert.Equal(t, 2.1, f.Offset)
	require.Len(t, f.Balls, 1)
	assert.Equal(t, 1, f.Balls[0].Number)
}

func TestRunTestSweepsThenReports(t *testing.T) {
	c, _, dl := newCore(t)
	c.RunTest("reverse_sweep")
	require.NoError(t, c.Tick(0))
	assert.Equal(t, "reverse_sweep", c.Status().Test)
	assert.InDelta(t, c.Movie.Duration(), c.Clock.Offset(), 1e-9)

	for i := 0; i < 200 && c.Status().Test != ""; i++ {
		require.NoError(t, c.Tick(float64(i)))
	}
	assert.Empty(t, c.Status().Test)
	assert.Contains(t, dl.codes(), diag.TestDone)
	assert.InDelta(t, c.Movie.Start(), c.Clock.Offset(), 1e-9)

	c.RunTest("spin")
	require.NoError(t, c.Tick(0))
	assert.Contains(t, dl.codes(), diag.TestUnknown)
}

func TestReloadRebuildsGraph(t *testing.T) {
	c, drv, _ := newCore(t)
	c.Seek(1)
	require.NoError(t, c.Tick(0))
	old := c.Eng.Room

	c.Load(demo(t))
	require.NoError(t, c.Tick(0))
	assert.NotSame(t, old, c.Eng.Room)
	assert.Len(t, drv.last().Obstacles, 3)
	assert.Empty(t, drv.last().Balls)
	assert.Equal(t, StartOffset, c.Clock.Offset())
}

func TestOpenMovieAndLibrary(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	defer st.Close()

	m, err := OpenMovie("../movie/testdata/demo.json", st)
	require.NoError(t, err)
	id, err := st.Save(m)
	require.NoError(t, err)

	byID, err := OpenMovie(id, st)
	require.NoError(t, err)
	assert.Equal(t, m.Len(), byID.Len())

	_, err = OpenMovie("missing", st)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = OpenMovie("missing", nil)
	assert.Error(t, err)

	c, drv, _ := newCore(t)
	lib := &Library{Store: st, Core: c}
	list, err := lib.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, lib.LoadInto(id))
	require.NoError(t, c.Tick(0))
	assert.Len(t, drv.last().Obstacles, 3)
	assert.ErrorIs(t, lib.LoadInto("nope"), store.ErrNotFound)
}
