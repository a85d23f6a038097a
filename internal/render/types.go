package render

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is the wire form of a position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec(p r3.Vec) Vec3 { return Vec3{X: p.X, Y: p.Y, Z: p.Z} }

type BallState struct {
	Number int  `json:"ball"`
	Pos    Vec3 `json:"pos"`
}

type ObstacleState struct {
	ID      int     `json:"id"`
	Kind    string  `json:"kind"`
	Pos     Vec3    `json:"pos"`
	Width   float64 `json:"w"`
	Height  float64 `json:"h"`
	Depth   float64 `json:"depth"`
	Visible bool    `json:"visible"`
}

// Frame is one rendered snapshot of the room, in room coordinates.
type Frame struct {
	ID        uint64          `json:"frame"`
	Offset    float64         `json:"offset"`
	Balls     []BallState     `json:"balls"`
	Obstacles []ObstacleState `json:"obstacles"`
	// Cues lists the obstacle ids whose sound fired since the last frame.
	Cues []int   `json:"cues,omitempty"`
	Peak float64 `json:"peak"`
}
