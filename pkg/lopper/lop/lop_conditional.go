package lop

import (
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// conditionalHandler implements the "conditional" lop kind (spec
// §4.4.2). The lop carries a chain of descendant nodes rooted at
// cond_root (default "/"); the deepest one's path, relative to the
// cond_root node, is looked up in the target tree. Every
// property of that deepest node is an AND-combined predicate against
// each matching target node (a trailing "__not__" on the property name
// inverts the test); nodes satisfying every predicate are true
// matches, nodes present but failing one are false matches. For each
// true match, every child lop whose name starts with "true" runs in
// document order with StartNode bound to the match; "false" children
// iterate the false matches the same way. Either chain stops the
// moment one of its child lops signals false (ErrLopFalse).
type conditionalHandler struct {
	interp *Interpreter
}

func (h conditionalHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}
	if ctx.LopTree == nil {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "conditional lop requires a lop tree context", nil)
	}

	root := "/"
	if p, ok := node.Property("cond_root"); ok {
		if s, ok := p.Value.AsString(); ok && s != "" {
			root = s
		}
	}

	condStart, ok := ctx.LopTree.LookupByPath(joinRelative(node.AbsPath(), root))
	if !ok {
		return lopper.NewWarning("conditional %s: cond_root node %q not found", node.AbsPath(), root)
	}

	condChain := ctx.LopTree.Subnodes(condStart)
	if len(condChain) == 0 {
		return nil
	}
	condLast := condChain[len(condChain)-1]

	// The path the condition chain checks against the target tree is
	// the deepest node's path with the cond_root node's own path
	// dropped, e.g. a cond_root at "/lops/lop1/cond" with chain ending
	// at "/lops/lop1/cond/cpus/cpu@0" checks "/cpus/cpu@0". When
	// cond_root is the default "/", condStart is node itself and this
	// degenerates to stripping the lop node's own path.
	condPath := strings.TrimPrefix(condLast.AbsPath(), condStart.AbsPath())
	if condPath == "" {
		condPath = "/"
	}

	targets, err := tree.Nodes(condPath)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	trueMatches, falseMatches := classifyConditionMatches(condLast, targets)

	if err := h.runMatches(ctx, node, "true", trueMatches); err != nil {
		return err
	}
	return h.runMatches(ctx, node, "false", falseMatches)
}

// classifyConditionMatches evaluates every property of condLast (the
// deepest node of the condition chain) as an AND predicate against
// each target node, producing the true-match and false-match lists in
// target order. A node moves to the false list the
// moment any predicate fails it, even if an earlier predicate passed.
func classifyConditionMatches(condLast *lopper.Node, targets []*lopper.Node) (trueMatches, falseMatches []*lopper.Node) {
	trueSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		trueSet[t.AbsPath()] = true
	}
	falseSet := make(map[string]bool)

	for _, cond := range condLast.Properties() {
		name := cond.Name
		invert := strings.HasSuffix(name, "__not__")
		if invert {
			name = strings.TrimSuffix(name, "__not__")
		}

		for _, tgt := range targets {
			path := tgt.AbsPath()
			tp, present := tgt.Property(name)
			ok := present && tp.Value.Equal(cond.Value.String())
			if invert {
				ok = !ok
			}
			if ok {
				if !falseSet[path] {
					trueSet[path] = true
				}
			} else {
				delete(trueSet, path)
				falseSet[path] = true
			}
		}
	}

	for _, tgt := range targets {
		path := tgt.AbsPath()
		if trueSet[path] {
			trueMatches = append(trueMatches, tgt)
		} else if falseSet[path] {
			falseMatches = append(falseMatches, tgt)
		}
	}
	return trueMatches, falseMatches
}

// runMatches executes every prefix-matching child lop, in document
// order, for each match in turn, binding StartNode and stopping that
// match's chain as soon as a child lop signals ErrLopFalse.
func (h conditionalHandler) runMatches(ctx *Context, node *lopper.Node, prefix string, matches []*lopper.Node) error {
	if len(matches) == 0 {
		return nil
	}
	var branch []*lopper.Node
	for _, child := range node.Children() {
		if strings.HasPrefix(child.Name(), prefix) {
			branch = append(branch, child)
		}
	}
	if len(branch) == 0 {
		return nil
	}

	prevStart := ctx.StartNode
	defer func() { ctx.StartNode = prevStart }()

	for _, match := range matches {
		ctx.StartNode = match
		for _, child := range branch {
			kind, args, ok := isDirective(child)
			if !ok {
				continue
			}
			err := h.interp.dispatch(ctx, child, kind, args)
			if err == ErrLopFalse {
				break
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// joinRelative appends a lop-local relative path to base, the same
// "node_abs_path + / + root" join the original engine uses to locate
// cond_root under the lop node itself.
func joinRelative(base, rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return base
	}
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}
