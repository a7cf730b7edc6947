package lop

import (
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// execHandler implements the "exec" lop kind: it is a jump, not a call
// — the `exec` property is a phandle naming another node in the *lop
// tree*, and running this lop means re-dispatching that node as
// whatever kind it is, with this lop's own `options` merged on top of
// the target's and `start_node` bound from this lop's `node` property
// (or the main tree's current selection).
type execHandler struct {
	interp *Interpreter
}

func (h execHandler) Run(ctx *Context, node *lopper.Node) error {
	p, ok := node.Property("exec")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "exec lop missing `exec` property", nil)
	}
	ph, ok := p.Value.AsU32()
	if !ok || ph == 0 {
		return lopper.NewWarning("exec %s: `exec` property is not a phandle", node.AbsPath())
	}
	if ctx.LopTree == nil {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "exec lop requires a lop tree context", nil)
	}

	target, found := ctx.LopTree.Pnode(ph)
	if !found {
		return ErrLopFalse
	}

	kind, args, ok := isDirective(target)
	if !ok {
		return lopper.NewError(lopper.LopMalformed, target.AbsPath(), "exec target is not a lop directive", nil)
	}

	mergeExecOptions(node, target)

	prevStart := ctx.StartNode
	if startRef, ok := stringProp(node, "node"); ok && startRef != "" {
		if n, found := resolveTarget(ctx, startRef); found {
			ctx.StartNode = n
		}
	} else if n, found := firstSelected(ctx.Main); found {
		ctx.StartNode = n
	}
	defer func() { ctx.StartNode = prevStart }()

	return h.interp.dispatch(ctx, target, kind, args)
}

// mergeExecOptions folds node's own `options` entries onto target's,
// in place, with node's taking precedence by appearing first.
func mergeExecOptions(node, target *lopper.Node) {
	merged := mergeOptions(optionArgs(node), optionArgs(target))
	if len(merged) == 0 {
		return
	}
	target.SetProperty("options", lopper.NewStringListValue(merged))
}

// mergeOptions concatenates the lop's own options with the target
// node's, deduplicating while preserving first-seen order (lop
// options take precedence by appearing first).
func mergeOptions(lopOpts, nodeOpts []string) []string {
	seen := make(map[string]bool, len(lopOpts)+len(nodeOpts))
	var out []string
	for _, o := range append(append([]string{}, lopOpts...), nodeOpts...) {
		key := strings.TrimSpace(o)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}
