package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/coreman2200/funtimes-bounce/internal/movie"
)

// ObstacleKind distinguishes static barriers from retractable targets.
type ObstacleKind int

const (
	Barrier ObstacleKind = iota
	Target
)

func (k ObstacleKind) String() string {
	if k == Target {
		return "target"
	}
	return "barrier"
}

// Handle is a positionable, showable renderable owned by the Controller.
type Handle interface {
	SetPosition(p r3.Vec)
	SetVisible(v bool)
}

type BallHandle interface {
	Handle
}

type ObstacleHandle interface {
	Handle
	// SetDepthOffset moves the obstacle face along Z relative to its mount.
	SetDepthOffset(z float64)
}

// EntityFactory builds renderables. Implementations keep no per-entity state;
// the Controller owns every handle it receives.
type EntityFactory interface {
	CreateBall(number int) BallHandle
	CreateObstacle(kind ObstacleKind, id int, rect movie.Rect) ObstacleHandle
}

// Cue is a one-shot sound attached to a target. Play is a no-op until the
// shared buffer has been bound.
type Cue interface {
	Play()
}

type CueAttacher interface {
	AttachCue(id int) Cue
}

// releaser is implemented by handles that hold renderer resources.
type releaser interface {
	Release()
}
