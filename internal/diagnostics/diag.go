package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the replay core.
const (
	NoBall          = "SCENE.NO_BALL"
	UnknownBall     = "SCENE.UNKNOWN_BALL"
	UnknownObstacle = "SCENE.UNKNOWN_OBSTACLE"
	CueNotReady     = "AUDIO.NOT_READY"
	CueLoadFailed   = "AUDIO.LOAD_FAILED"
	MovieLoaded     = "MOVIE.LOADED"
	EndOfMovie      = "PLAYBACK.END"
	TestRunning     = "TEST.RUNNING"
	TestDone        = "TEST.DONE"
	TestUnknown     = "TEST.UNKNOWN"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sink receives diagnostics. A nil Sink drops them.
type Sink func(Diagnostic)

func (s Sink) Push(d Diagnostic) {
	if s != nil {
		s(d)
	}
}
