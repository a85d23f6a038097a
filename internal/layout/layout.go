package layout

import "gonum.org/v1/gonum/spatial/r3"

// Rig describes the room and the 10m x 10m rig hung on its back wall.
// All units are meters. Rig coordinates put the origin at the lower-left
// front of the rig base.
type Rig struct {
	Size        float64 `yaml:"size"`         // rig is Size x Size
	Depth       float64 `yaml:"depth"`        // rig distance from back wall
	GutterWidth float64 `yaml:"gutter_width"` // targets retract this far when fully faded
	RoomWidth   float64 `yaml:"room_width"`
	RoomHeight  float64 `yaml:"room_height"`
	BallRadius  float64 `yaml:"ball_radius"`
}

// Default matches the 3D and VR views.
func Default() Rig {
	return Rig{
		Size:        10,
		Depth:       1,
		GutterWidth: .75,
		RoomWidth:   14,
		RoomHeight:  12,
		BallRadius:  .1,
	}
}

// Origin is the rig origin in room coordinates; the rig is centered
// across the room width.
func (r Rig) Origin() r3.Vec {
	return r3.Vec{X: (r.RoomWidth - r.Size) / 2, Z: r.Depth}
}

// World maps a rig-space point to room space.
func (r Rig) World(p r3.Vec) r3.Vec {
	return r3.Add(r.Origin(), p)
}

// Rest is where a ball waits before launch: upper-left corner of the rig.
func (r Rig) Rest() r3.Vec {
	return r3.Vec{Y: r.Size}
}

// FadeDepth converts a fade level in [0,1] into the target's Z offset.
// 0 is fully extended, 1 fully retracted into the gutter.
func (r Rig) FadeDepth(level float64) float64 {
	return -r.GutterWidth * level
}

// Contains reports whether p lies on the rig face.
func (r Rig) Contains(p r3.Vec) bool {
	return p.X >= 0 && p.X <= r.Size && p.Y >= 0 && p.Y <= r.Size
}
