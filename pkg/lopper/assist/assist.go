// Package assist implements the plug-in dispatch mechanism that
// `assist-v1` lops use to hand a selected node off to external logic.
// An Assist is identified by a registry id or a compatible-string
// predicate, not by file extension, and the same registry holds
// builtins registered at startup and ones a `load` lop registers by
// name from the builtin table.
package assist

import (
	"context"
	"fmt"
	"sync"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// Assist is a unit of pluggable behaviour bound to one or more
// `compatible` strings. Args come from the invoking node's `options`
// property (space-separated, shell-style); arguments given after `--`
// on the command line are not passed to assists.
type Assist interface {
	// ID is the assist's registry name (typically its file stem).
	ID() string
	// IsCompatible reports whether this assist should handle a node,
	// usually by checking node's "compatible" property against a list
	// the assist recognizes.
	IsCompatible(node *lopper.Node) bool
	// Run executes the assist against the selected node (or the main
	// tree's current root, for whole-tree assists) with the merged
	// option set. A returned error is always treated as a warning by
	// the lop interpreter, never a hard failure, unless
	// --werror is set.
	Run(ctx context.Context, tree *lopper.Tree, node *lopper.Node, args []string) error
}

// Registry holds assists loaded via `load` lops plus any builtins
// registered at startup, and resolves which one a directive wants.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]Assist
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Assist)}
}

// Register adds or replaces an assist under its own ID.
func (r *Registry) Register(a Assist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[a.ID()]; !exists {
		r.order = append(r.order, a.ID())
	}
	r.byID[a.ID()] = a
}

// Lookup returns the assist registered under id, if any.
func (r *Registry) Lookup(id string) (Assist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns the registered assist IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FindCompatible returns every registered assist willing to claim node,
// in registration order.
func (r *Registry) FindCompatible(node *lopper.Node) []Assist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Assist
	for _, id := range r.order {
		a := r.byID[id]
		if a.IsCompatible(node) {
			out = append(out, a)
		}
	}
	return out
}

// ErrNoAssist is returned when neither an explicit id nor a compatible
// scan resolves a target assist.
type ErrNoAssist struct {
	Node string
	ID   string
}

func (e *ErrNoAssist) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("no assist registered with id %q for node %s", e.ID, e.Node)
	}
	return fmt.Sprintf("no compatible assist found for node %s", e.Node)
}

// Resolve picks the assist an assist-v1 lop invokes: the
// explicit id if given, else the first compatible match by
// registration order.
func (r *Registry) Resolve(id string, node *lopper.Node) (Assist, error) {
	if id != "" {
		a, ok := r.Lookup(id)
		if !ok {
			return nil, &ErrNoAssist{Node: node.AbsPath(), ID: id}
		}
		return a, nil
	}
	candidates := r.FindCompatible(node)
	if len(candidates) == 0 {
		return nil, &ErrNoAssist{Node: node.AbsPath()}
	}
	return candidates[0], nil
}
