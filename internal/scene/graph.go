// Package scene holds the transform hierarchy that simulated objects are
// attached to. Nodes store a local translation and rotation relative to
// their parent; absolute transforms are composed on demand.
package scene

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrDetached = errors.New("scene: node is not attached to a graph")

type Graph struct {
	mu     sync.RWMutex
	root   *Node
	nextID int
	count  int
}

// Node is a single entry in the hierarchy. The zero value is not usable;
// nodes are created through Graph.Root().CreateChild.
type Node struct {
	graph    *Graph
	id       int
	parent   *Node
	children []*Node

	translation mgl32.Vec3
	rotation    mgl32.Quat
}

func NewGraph() *Graph {
	g := &Graph{}
	g.root = &Node{graph: g, rotation: mgl32.QuatIdent()}
	return g
}

func (g *Graph) Root() *Node {
	return g.root
}

// NumNodes counts every node below the root.
func (g *Graph) NumNodes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.count
}

func (n *Node) ID() int {
	return n.id
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Attached() bool {
	return n.graph != nil
}

func (n *Node) Children() []*Node {
	if n.graph == nil {
		return nil
	}
	n.graph.mu.RLock()
	defer n.graph.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// CreateChild attaches a new node with an identity local transform.
func (n *Node) CreateChild() (*Node, error) {
	g := n.graph
	if g == nil {
		return nil, ErrDetached
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	child := &Node{
		graph:    g,
		id:       g.nextID,
		parent:   n,
		rotation: mgl32.QuatIdent(),
	}
	n.children = append(n.children, child)
	g.count++
	return child, nil
}

// Remove detaches n and its whole subtree. Removing the root or an
// already detached node is a no-op.
func (n *Node) Remove() {
	g := n.graph
	if g == nil || n.parent == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	g.count -= n.detach()
	n.parent = nil
}

func (n *Node) detach() int {
	removed := 1
	for _, c := range n.children {
		removed += c.detach()
	}
	n.children = nil
	n.graph = nil
	return removed
}

func (n *Node) Translation() mgl32.Vec3 {
	n.rlock()
	defer n.runlock()
	return n.translation
}

func (n *Node) Rotation() mgl32.Quat {
	n.rlock()
	defer n.runlock()
	return n.rotation
}

func (n *Node) SetTranslation(t mgl32.Vec3) {
	n.lock()
	defer n.unlock()
	n.translation = t
}

func (n *Node) SetRotation(r mgl32.Quat) {
	n.lock()
	defer n.unlock()
	n.rotation = r.Normalize()
}

// AbsoluteTranslation and AbsoluteRotation compose every ancestor's local
// transform with n's own.
func (n *Node) AbsoluteTranslation() mgl32.Vec3 {
	t, _ := n.AbsoluteTransformation()
	return t
}

func (n *Node) AbsoluteRotation() mgl32.Quat {
	_, r := n.AbsoluteTransformation()
	return r
}

func (n *Node) AbsoluteTransformation() (mgl32.Vec3, mgl32.Quat) {
	n.rlock()
	defer n.runlock()
	return n.absolute()
}

func (n *Node) absolute() (mgl32.Vec3, mgl32.Quat) {
	if n.parent == nil {
		return n.translation, n.rotation
	}
	pt, pr := n.parent.absolute()
	return pt.Add(pr.Rotate(n.translation)), pr.Mul(n.rotation).Normalize()
}

// SetAbsoluteTransform places n at the given world pose by solving for the
// local transform under the current parent.
func (n *Node) SetAbsoluteTransform(t mgl32.Vec3, r mgl32.Quat) {
	n.lock()
	defer n.unlock()
	if n.parent == nil {
		n.translation, n.rotation = t, r.Normalize()
		return
	}
	pt, pr := n.parent.absolute()
	inv := pr.Inverse()
	n.translation = inv.Rotate(t.Sub(pt))
	n.rotation = inv.Mul(r).Normalize()
}

// Matrix returns the absolute transform as a 4x4 matrix.
func (n *Node) Matrix() mgl32.Mat4 {
	t, r := n.AbsoluteTransformation()
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).Mul4(r.Mat4())
}

func (n *Node) lock() {
	if n.graph != nil {
		n.graph.mu.Lock()
	}
}

func (n *Node) unlock() {
	if n.graph != nil {
		n.graph.mu.Unlock()
	}
}

func (n *Node) rlock() {
	if n.graph != nil {
		n.graph.mu.RLock()
	}
}

func (n *Node) runlock() {
	if n.graph != nil {
		n.graph.mu.RUnlock()
	}
}
