// Package lop implements the lop interpreter: loading lop trees,
// bucketing them into a priority runqueue, walking each in document
// order, and dispatching each directive node (by its
// "system-device-tree-v1,lop,KIND" compatible tag) to a handler that
// can read/modify the main tree, extract subtrees, write output, or
// call an assist.
package lop

import (
	"errors"
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
	"github.com/sdt-tools/lopper/pkg/lopper/assist"
	"github.com/sdt-tools/lopper/pkg/lopper/merge"
)

// ErrLopFalse is the sentinel a Handler returns to signal "I ran fine,
// but the embedded script/expression evaluated falsy". It is not a
// failure: a conditional's true/false chain treats it as "stop
// running this match's remaining child lops", and the top-level
// interpreter walk ignores it.
var ErrLopFalse = errors.New("lop signaled false")

// compatiblePrefix identifies a lop tree's directive nodes.
const compatiblePrefix = "system-device-tree-v1,lop"

// Kind is the decoded lop KIND, the suffix of a directive's compatible
// tag after "system-device-tree-v1,lop,".
type Kind string

const (
	KindLoad        Kind = "load"
	KindAssist      Kind = "assist-v1"
	KindAdd         Kind = "add"
	KindModify      Kind = "modify"
	KindConditional Kind = "conditional"
	KindCode        Kind = "code"
	KindXlate       Kind = "xlate"
	KindOutput      Kind = "output"
	KindTree        Kind = "tree"
	KindSelect      Kind = "select"
	KindPrint       Kind = "print"
	KindMeta        Kind = "meta"
	KindExec        Kind = "exec"
)

// Handler executes one lop directive against the engine's state.
type Handler interface {
	Run(ctx *Context, node *lopper.Node) error
}

// Context bundles the mutable state a lop handler needs: the main tree,
// the subtree table, the phandle-descriptor map, the assist registry,
// the lop tree the directive came from (for local label/phandle
// resolution), and run-wide flags.
type Context struct {
	Main       *lopper.Tree
	Subtrees   *lopper.SubtreeTable
	Phandles   *lopper.PhandleDescriptors
	Assists    *assist.Registry
	LopTree    *lopper.Tree
	// StartNode is bound by a conditional lop to the current
	// true/false match while running that match's child lops, and by
	// an exec lop to its start node while its target runs; nil
	// otherwise.
	StartNode  *lopper.Node
	OutputDir  string
	Verbose    int
	Dryrun     bool
	Permissive bool
	Force      bool
	Enhanced   bool

	// Render renders a tree to bytes for an `output` lop. Set once by
	// the CLI from -O or the extension of -o, not per output file;
	// defaults to a plain JSON export when nil.
	Render func(*lopper.Tree) ([]byte, error)

	// AssistSearchPath is listed in loadHandler's error message when an
	// assist name is not in the builtin table; the directories
	// themselves are not searched.
	AssistSearchPath []string

	// MergeConflicts records any leaf collisions the main tree's
	// multi-file merge resolved by keeping the later file's value, for
	// the CLI to report.
	MergeConflicts []merge.Conflict

	writtenOut map[string][]byte // outfile -> rendered bytes, for tests/dryrun diffing
}

// NewContext builds a fresh interpreter context around a main tree.
func NewContext(main *lopper.Tree) *Context {
	return &Context{
		Main:       main,
		Subtrees:   lopper.NewSubtreeTable(),
		Phandles:   lopper.NewPhandleDescriptors(),
		Assists:    assist.NewRegistry(),
		writtenOut: make(map[string][]byte),
	}
}

// WrittenOutputs exposes files the run emitted (or would have emitted
// under --dryrun), keyed by path, for tests and --dryrun diffing.
func (c *Context) WrittenOutputs() map[string][]byte { return c.writtenOut }

// targetTree resolves a lop's optional "tree" property to either the
// main tree or a named subtree.
func (c *Context) targetTree(node *lopper.Node) (*lopper.Tree, error) {
	if p, ok := node.Property("tree"); ok {
		name, _ := p.Value.AsString()
		if name != "" {
			t, ok := c.Subtrees.Get(name)
			if !ok {
				return nil, lopper.NewError(lopper.LopMalformed, node.AbsPath(), "tree name provided ("+name+"), but not found", nil)
			}
			return t, nil
		}
	}
	return c.Main, nil
}

// isDirective reports whether node is a lop directive and, if so,
// returns its decoded Kind and the (possibly empty) subtype/args that
// followed the kind in the compatible list.
func isDirective(node *lopper.Node) (Kind, string, bool) {
	p, ok := node.Property("compatible")
	if !ok {
		return "", "", false
	}
	for _, item := range p.Value.List() {
		s, ok := item.(string)
		if !ok || !strings.HasPrefix(s, compatiblePrefix+",") {
			continue
		}
		rest := strings.TrimPrefix(s, compatiblePrefix+",")
		parts := strings.SplitN(rest, ",", 2)
		kind := Kind(parts[0])
		args := ""
		if len(parts) > 1 {
			args = parts[1]
		}
		return kind, args, true
	}
	return "", "", false
}

// isConditional reports whether node's compatible identifies it as a
// conditional lop (used by the top-level walk to decide which nodes
// to skip).
func isConditional(node *lopper.Node) bool {
	kind, _, ok := isDirective(node)
	return ok && kind == KindConditional
}

// noexec reports whether node carries a truthy `noexec` property; a
// noexec'd lop is skipped entirely by the interpreter walk.
func noexec(node *lopper.Node) bool {
	p, ok := node.Property("noexec")
	if !ok {
		return false
	}
	if p.Value.IsEmpty() {
		return true
	}
	s, _ := p.Value.AsString()
	return s != "" && s != "0" && s != "false"
}
