package movie

import "gonum.org/v1/gonum/spatial/r3"

// Kind names an event variant. The string form is the JSON "type" value.
type Kind string

const (
	KindMakeBarrier  Kind = "MakeBarrier"
	KindMakeTarget   Kind = "MakeTarget"
	KindBallLaunch   Kind = "BallLaunch"
	KindBallPosition Kind = "BallPosition"
	KindHitBarrier   Kind = "HitBarrier"
	KindHitTarget    Kind = "HitTarget"
	KindObstacleFade Kind = "ObstacleFade"
	KindBallExit     Kind = "BallExit"
	KindHitEdge      Kind = "HitEdge"
)

// Event is one timestamped occurrence in a Movie. The set of
// implementations is closed; switch on the concrete type.
type Event interface {
	At() float64
	Kind() Kind
	event()
}

// Stamp carries the event time in seconds. Setup events may be negative.
type Stamp struct {
	Time float64
}

func (s Stamp) At() float64 { return s.Time }
func (Stamp) event()         {}

// Rect is an axis-aligned obstacle footprint in rig coordinates (meters).
type Rect struct {
	LoX, LoY, HiX, HiY float64
}

func (r Rect) Width() float64  { return r.HiX - r.LoX }
func (r Rect) Height() float64 { return r.HiY - r.LoY }

// Center returns the midpoint of the rectangle on the rig plane (Z = 0).
func (r Rect) Center() r3.Vec {
	return r3.Vec{X: r.LoX + r.Width()/2, Y: r.LoY + r.Height()/2}
}

type MakeBarrier struct {
	Stamp
	ID   int
	Rect Rect
}

type MakeTarget struct {
	Stamp
	ID   int
	Rect Rect
}

type BallLaunch struct {
	Stamp
	Ball int
	X, Y float64
}

type BallPosition struct {
	Stamp
	Ball int
	X, Y float64
}

type HitBarrier struct {
	Stamp
	BarrierID int
	Ball      int
	X, Y      float64
}

type HitTarget struct {
	Stamp
	TargetID int
	Ball     int
	X, Y     float64
}

// ObstacleFade retracts a target toward the wall. FadeLevel is in [0,1]:
// 0 fully extended, 1 fully retracted.
type ObstacleFade struct {
	Stamp
	TargetID  int
	FadeLevel float64
}

type BallExit struct {
	Stamp
	Ball int
}

type HitEdge struct {
	Stamp
	Ball int
}

func (MakeBarrier) Kind() Kind  { return KindMakeBarrier }
func (MakeTarget) Kind() Kind   { return KindMakeTarget }
func (BallLaunch) Kind() Kind   { return KindBallLaunch }
func (BallPosition) Kind() Kind { return KindBallPosition }
func (HitBarrier) Kind() Kind   { return KindHitBarrier }
func (HitTarget) Kind() Kind    { return KindHitTarget }
func (ObstacleFade) Kind() Kind { return KindObstacleFade }
func (BallExit) Kind() Kind     { return KindBallExit }
func (HitEdge) Kind() Kind      { return KindHitEdge }

// Placed reports the ball number and rig position carried by events that
// locate a ball: launches, position updates and hits.
func Placed(e Event) (ball int, pos r3.Vec, ok bool) {
	switch ev := e.(type) {
	case BallLaunch:
		return ev.Ball, r3.Vec{X: ev.X, Y: ev.Y}, true
	case BallPosition:
		return ev.Ball, r3.Vec{X: ev.X, Y: ev.Y}, true
	case HitBarrier:
		return ev.Ball, r3.Vec{X: ev.X, Y: ev.Y}, true
	case HitTarget:
		return ev.Ball, r3.Vec{X: ev.X, Y: ev.Y}, true
	}
	return 0, r3.Vec{}, false
}
