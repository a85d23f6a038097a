package render

import "gonum.org/v1/gonum/spatial/r3"

type NodeKind int

const (
	Group NodeKind = iota
	BallNode
	ObstacleNode
)

// Node is a transform in the headless scene graph. Positions are relative
// to the parent.
type Node struct {
	Name    string
	Kind    NodeKind
	ID      int
	Pos     r3.Vec
	Visible bool

	// Obstacle extent, set on ObstacleNode groups.
	Width, Height float64
	Barrier       bool

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{Name: name, Visible: true}
}

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// World returns the node origin in root coordinates.
func (n *Node) World() r3.Vec {
	p := n.Pos
	for a := n.parent; a != nil; a = a.parent {
		p = r3.Add(p, a.Pos)
	}
	return p
}

// Shown reports whether n and all its ancestors are visible.
func (n *Node) Shown() bool {
	for a := n; a != nil; a = a.parent {
		if !a.Visible {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
