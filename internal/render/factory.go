package render

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/coreman2200/funtimes-bounce/internal/layout"
	"github.com/coreman2200/funtimes-bounce/internal/movie"
	"github.com/coreman2200/funtimes-bounce/internal/scene"
)

// Factory builds ball and obstacle nodes under a rig node placed in a room.
// It keeps only the graph; the scene controller owns the handles.
type Factory struct {
	Room *Node
	Rig  *Node
}

func NewFactory(rig layout.Rig) *Factory {
	room := NewNode("room")
	r := NewNode("rig")
	r.Pos = rig.Origin()
	room.Add(r)
	return &Factory{Room: room, Rig: r}
}

func (f *Factory) CreateBall(number int) scene.BallHandle {
	n := NewNode(fmt.Sprintf("ball-%d", number))
	n.Kind = BallNode
	n.ID = number
	f.Rig.Add(n)
	return &nodeHandle{node: n}
}

// CreateObstacle adds a group at the rect centre with a "move" child that
// carries the depth offset.
func (f *Factory) CreateObstacle(kind scene.ObstacleKind, id int, rect movie.Rect) scene.ObstacleHandle {
	g := NewNode(fmt.Sprintf("%s-%d", kind, id))
	g.Kind = ObstacleNode
	g.ID = id
	g.Width = rect.Width()
	g.Height = rect.Height()
	g.Barrier = kind == scene.Barrier
	g.Pos = rect.Center()
	move := NewNode("move")
	g.Add(move)
	f.Rig.Add(g)
	return &obstacleHandle{nodeHandle: nodeHandle{node: g}, move: move}
}

type nodeHandle struct{ node *Node }

func (h *nodeHandle) SetPosition(p r3.Vec) { h.node.Pos = p }
func (h *nodeHandle) SetVisible(v bool)    { h.node.Visible = v }
func (h *nodeHandle) Release()             { h.node.Detach() }
func (h *nodeHandle) Node() *Node          { return h.node }

type obstacleHandle struct {
	nodeHandle
	move *Node
}

func (h *obstacleHandle) SetDepthOffset(z float64) { h.move.Pos.Z = z }
