package lopper

import (
	"path"
	"strings"
)

// Node is a single point in the tree: an absolute path, an ordered set
// of properties, an ordered set of children, optional labels, an
// optional phandle, and a parent back-pointer (nil for the root).
type Node struct {
	name     string
	parent   *Node
	children []*Node
	propList []*Property
	propIdx  map[string]*Property
	labels   []string
	phandle  uint32
}

// NewNode creates a detached node with the given short name.
func NewNode(name string) *Node {
	return &Node{
		name:    name,
		propIdx: make(map[string]*Property),
	}
}

// Name returns the node's short name (last path segment).
func (n *Node) Name() string { return n.name }

// SetName renames the node in place. Callers are responsible for
// re-syncing the owning tree's path index afterward.
func (n *Node) SetName(name string) { n.name = name }

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// AbsPath computes the node's absolute slash-separated path by walking
// parent pointers. The root's path is "/".
func (n *Node) AbsPath() string {
	if n.parent == nil {
		if n.name == "" || n.name == "/" {
			return "/"
		}
		return "/" + n.name
	}
	parentPath := n.parent.AbsPath()
	if parentPath == "/" {
		return "/" + n.name
	}
	return parentPath + "/" + n.name
}

// Children returns the node's direct children in document order.
func (n *Node) Children() []*Node { return n.children }

// Labels returns the node's symbolic labels.
func (n *Node) Labels() []string { return n.labels }

// AddLabel attaches a symbolic label to the node.
func (n *Node) AddLabel(label string) {
	for _, l := range n.labels {
		if l == label {
			return
		}
	}
	n.labels = append(n.labels, label)
}

// Phandle returns the node's phandle, or 0 if it has none.
func (n *Node) Phandle() uint32 { return n.phandle }

// SetPhandle assigns the node's phandle.
func (n *Node) SetPhandle(ph uint32) { n.phandle = ph }

// Properties returns the node's properties in document order.
func (n *Node) Properties() []*Property { return n.propList }

// Property looks up a property by name.
func (n *Node) Property(name string) (*Property, bool) {
	p, ok := n.propIdx[name]
	return p, ok
}

// SetProperty assigns (creating or replacing) a property by name,
// preserving document order when replacing an existing one.
func (n *Node) SetProperty(name string, v Value) *Property {
	if p, ok := n.propIdx[name]; ok {
		p.Set(v)
		return p
	}
	p := &Property{Name: name, Value: v, dirty: true}
	n.propList = append(n.propList, p)
	n.propIdx[name] = p
	return p
}

// DeleteProperty removes a property by name. Reports whether it existed.
func (n *Node) DeleteProperty(name string) bool {
	p, ok := n.propIdx[name]
	if !ok {
		return false
	}
	delete(n.propIdx, name)
	for i, c := range n.propList {
		if c == p {
			n.propList = append(n.propList[:i], n.propList[i+1:]...)
			break
		}
	}
	return true
}

// addChild appends a child node, setting its parent pointer.
func (n *Node) addChild(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
}

// removeChild detaches a direct child by identity.
func (n *Node) removeChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

// Subnodes returns the node followed by all of its transitive
// descendants in pre-order.
func (n *Node) Subnodes() []*Node {
	out := []*Node{n}
	for _, c := range n.children {
		out = append(out, c.Subnodes()...)
	}
	return out
}

// DeepCopy returns a new, detached node reproducing this node's
// properties and children. Phandle allocation is deferred: the copy
// keeps the source phandle only if the caller re-assigns it explicitly,
// since two live nodes must never share one.
func (n *Node) DeepCopy() *Node {
	cp := NewNode(n.name)
	cp.labels = append([]string{}, n.labels...)
	for _, p := range n.propList {
		cp.SetProperty(p.Name, p.Value)
	}
	for _, c := range n.children {
		cp.addChild(c.DeepCopy())
	}
	return cp
}

// splitPath normalizes and splits an absolute path into segments,
// dropping the leading slash and any empty segments.
func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	return segs
}
