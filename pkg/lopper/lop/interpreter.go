package lop

import (
	"fmt"
	"sort"

	"github.com/sdt-tools/lopper/log"
	"github.com/sdt-tools/lopper/pkg/lopper"
)

// Interpreter dispatches lop directive nodes to their Kind's Handler
//. A fresh Interpreter is pre-wired with the thirteen
// built-in handlers; callers may Register their own to override one.
type Interpreter struct {
	handlers map[Kind]Handler
}

// NewInterpreter returns an interpreter with all thirteen lop kinds
// wired to their built-in handlers.
func NewInterpreter() *Interpreter {
	i := &Interpreter{handlers: make(map[Kind]Handler)}
	i.Register(KindLoad, loadHandler{})
	i.Register(KindAssist, assistHandler{})
	i.Register(KindAdd, addHandler{})
	i.Register(KindModify, modifyHandler{})
	i.Register(KindConditional, conditionalHandler{i})
	i.Register(KindCode, codeHandler{xlate: false})
	i.Register(KindXlate, codeHandler{xlate: true})
	i.Register(KindOutput, outputHandler{})
	i.Register(KindTree, treeHandler{})
	i.Register(KindSelect, selectHandler{})
	i.Register(KindPrint, printHandler{})
	i.Register(KindMeta, metaHandler{})
	i.Register(KindExec, execHandler{i})
	return i
}

// Register installs (or overrides) the handler for a lop kind.
func (i *Interpreter) Register(k Kind, h Handler) { i.handlers[k] = h }

// Run builds the priority runqueue from lopTrees and walks each lop
// tree's root in document order, dispatching every directive child
//.
func (i *Interpreter) Run(ctx *Context, lopTrees []*lopper.Tree) error {
	queue := BuildRunqueue(lopTrees)
	for _, lt := range queue {
		ctx.LopTree = lt
		if err := i.dispatchChildren(ctx, lt.Root); err != nil {
			return err
		}
	}
	return nil
}

// dispatchChildren walks node's direct children in document order,
// skipping noexec'd ones, and dispatches directive nodes to their
// handler. Non-directive children are plain grouping/data nodes (e.g.
// the fragment a following `add` lop grafts) and are left alone here;
// a handler that needs them reads them itself. Conditional branch
// bodies are walked by conditionalHandler, not by this loop, so they
// never run twice.
func (i *Interpreter) dispatchChildren(ctx *Context, node *lopper.Node) error {
	for _, child := range node.Children() {
		if noexec(child) {
			log.DEBUG("lop: skipping noexec'd %s", child.AbsPath())
			continue
		}
		kind, args, ok := isDirective(child)
		if !ok {
			continue
		}
		if err := i.dispatch(ctx, child, kind, args); err != nil && err != ErrLopFalse {
			return err
		}
	}
	return nil
}

// dispatch looks up kind's handler and runs it, wrapping an unknown
// kind as a lop-malformed error.
func (i *Interpreter) dispatch(ctx *Context, node *lopper.Node, kind Kind, args string) error {
	h, ok := i.handlers[kind]
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), fmt.Sprintf("unknown lop kind %q", kind), nil)
	}
	if ctx.Verbose > 0 {
		log.DEBUG("lop: %s %s%s", kind, node.AbsPath(), argsSuffix(args))
	}
	return h.Run(ctx, node)
}

func argsSuffix(args string) string {
	if args == "" {
		return ""
	}
	return " (" + args + ")"
}

// sortedSubtreeNames returns the subtree table's names in sorted
// order, for a stable diagnostics listing.
func sortedSubtreeNames(t *lopper.SubtreeTable) []string {
	names := t.Names()
	sort.Strings(names)
	return names
}
