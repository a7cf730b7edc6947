package lopper

import (
	"fmt"
	"regexp"
	"strings"
)

// Tree owns a single root Node and the derived indices/selection
// state: a path index, a label index, a transient selection set, and
// a strict flag governing phandle-resolution policy.
type Tree struct {
	Root     *Node
	Strict   bool
	pathIdx  map[string]*Node
	labelIdx map[string]*Node
	phIdx    map[uint32]*Node
	selected []*Node
}

// NewTree creates a tree with an empty root and synced (empty) indices.
func NewTree() *Tree {
	t := &Tree{Root: NewNode("")}
	_ = t.Sync() // empty root: cannot have a dangling phandle
	return t
}

// LookupByPath returns the node at an absolute path, or (nil, false).
func (t *Tree) LookupByPath(p string) (*Node, bool) {
	p = normalizePath(p)
	n, ok := t.pathIdx[p]
	return n, ok
}

// LookupByLabel returns the first node carrying the given label.
func (t *Tree) LookupByLabel(label string) (*Node, bool) {
	n, ok := t.labelIdx[label]
	return n, ok
}

// Pnode returns the node with the given phandle, if any.
func (t *Tree) Pnode(phandle uint32) (*Node, bool) {
	if phandle == 0 {
		return nil, false
	}
	n, ok := t.phIdx[phandle]
	return n, ok
}

// nodeRegexp compiles a selector/nodes() path pattern, applying the
// backward-compatible ".*" prefix when the pattern contains no "/",
// and anchoring it to the full path.
func nodeRegexp(pattern string) (*regexp.Regexp, error) {
	if !strings.Contains(pattern, "/") {
		pattern = ".*" + pattern
	}
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern = pattern + "$"
	}
	return regexp.Compile(pattern)
}

// Nodes returns every node whose absolute path matches regex, in
// pre-order.
func (t *Tree) Nodes(pattern string) ([]*Node, error) {
	re, err := nodeRegexp(pattern)
	if err != nil {
		return nil, NewError(ParseFailure, pattern, "invalid node regex: "+err.Error(), err)
	}
	var out []*Node
	for _, n := range t.Root.Subnodes() {
		if re.MatchString(n.AbsPath()) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Lnodes returns every node whose label matches regex.
func (t *Tree) Lnodes(pattern string) ([]*Node, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, NewError(ParseFailure, pattern, "invalid label regex: "+err.Error(), err)
	}
	var out []*Node
	for _, n := range t.Root.Subnodes() {
		for _, l := range n.Labels() {
			if re.MatchString(l) {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

// Subnodes returns n followed by all of its transitive descendants.
func (t *Tree) Subnodes(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return n.Subnodes()
}

// Add inserts n (and its subtree) under the parent implied by its
// intended absolute path. Fails if the path is already occupied or
// the parent does not yet exist.
func (t *Tree) Add(destPath string, n *Node) error {
	destPath = normalizePath(destPath)
	if _, exists := t.pathIdx[destPath]; exists {
		return NewError(InvariantViolation, destPath, "path already occupied", nil)
	}
	segs := splitPath(destPath)
	if len(segs) == 0 {
		return NewError(InvariantViolation, destPath, "cannot add at root", nil)
	}
	parentPath := "/" + strings.Join(segs[:len(segs)-1], "/")
	parent, ok := t.pathIdx[normalizePath(parentPath)]
	if !ok {
		return NewError(InvariantViolation, parentPath, "parent node does not exist", nil)
	}
	n.name = segs[len(segs)-1]
	parent.addChild(n)
	return t.Sync()
}

// Delete removes n and its descendants, updating indices and pruning
// any stale selection-set entries.
func (t *Tree) Delete(n *Node) error {
	if n == nil || n == t.Root {
		return nil
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	return t.Sync()
}

// Sync rebuilds the path/label/phandle indices, cleans every
// property's dirty bit, and enforces the phandle invariant: in strict
// mode a dangling phandle reference is a hard error, otherwise it is a
// warning (promotable to an error by --werror).
func (t *Tree) Sync() error {
	t.pathIdx = make(map[string]*Node)
	t.labelIdx = make(map[string]*Node)
	t.phIdx = make(map[uint32]*Node)

	for _, n := range t.Root.Subnodes() {
		t.pathIdx[n.AbsPath()] = n
		for _, l := range n.Labels() {
			if _, exists := t.labelIdx[l]; !exists {
				t.labelIdx[l] = n
			}
		}
		if n.phandle != 0 {
			t.phIdx[n.phandle] = n
		}
		for _, p := range n.propList {
			p.Clean()
		}
	}

	// A selection set references nodes that still belong to the tree;
	// deletes remove stale entries.
	live := t.selected[:0]
	for _, n := range t.selected {
		if _, ok := t.pathIdx[n.AbsPath()]; ok {
			live = append(live, n)
		}
	}
	t.selected = live

	return t.checkPhandles()
}

// checkPhandles validates the phandle invariant: every phandle-typed
// property value must be 0 or resolve to a node in this tree. Only
// properties whose value is TypePhandleList are checked;
// PhandleDescriptors is not consulted. In strict mode a violation is a hard error; in
// non-strict mode it is a warning, which --werror still promotes.
func (t *Tree) checkPhandles() error {
	for _, n := range t.Root.Subnodes() {
		for _, p := range n.propList {
			if p.Value.Type() != TypePhandleList {
				continue
			}
			for _, item := range p.Value.items {
				ph, ok := asU32(item)
				if !ok || ph == 0 {
					continue
				}
				if _, found := t.phIdx[ph]; found {
					continue
				}
				if t.Strict {
					return NewError(InvariantViolation, n.AbsPath(),
						fmt.Sprintf("dangling phandle %d referenced by %s", ph, p.Name), nil)
				}
				if err := NewWarning("dangling phandle %d referenced by %s.%s", ph, n.AbsPath(), p.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func asU32(v interface{}) (uint32, bool) {
	switch n := v.(type) {
	case uint32:
		return n, true
	case int:
		return uint32(n), true
	}
	return 0, false
}

// Selected returns the current selection set.
func (t *Tree) Selected() []*Node { return t.selected }

// SetSelected replaces the selection set.
func (t *Tree) SetSelected(nodes []*Node) { t.selected = nodes }

// ClearSelected empties the selection set.
func (t *Tree) ClearSelected() { t.selected = nil }

// normalizePath canonicalizes a path for index lookups.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	segs := splitPath(p)
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}
