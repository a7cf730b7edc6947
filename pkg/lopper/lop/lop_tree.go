package lop

import "github.com/sdt-tools/lopper/pkg/lopper"

// treeHandler implements the "tree" lop kind: like `output`, but
// stores the filtered copy in the subtree table under the name given
// by the lop's own `tree` property, rather than writing it to a file.
// Unlike every other lop kind, `tree` here names a *destination*, not
// a source tree to operate against, so this handler does not go
// through ctx.targetTree; its source is always the main tree.
type treeHandler struct{}

func (treeHandler) Run(ctx *Context, node *lopper.Node) error {
	nameProp, ok := node.Property("tree")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "tree lop missing `tree` property", nil)
	}
	name, _ := nameProp.Value.AsString()
	if name == "" {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "tree lop's `tree` property is empty", nil)
	}

	src := ctx.Main
	nodes := src.Selected()
	if patterns, ok := nodesProperty(node); ok {
		var err error
		nodes, err = selectByPatterns(src, patterns)
		if err != nil {
			return err
		}
	}

	dst := lopper.NewTree()
	dst.Strict = src.Strict
	for _, n := range nodes {
		if err := dst.Add("/"+n.Name(), n.DeepCopy()); err != nil {
			return err
		}
	}
	ctx.Subtrees.Set(name, dst)
	return nil
}

// nodesProperty reads a lop's `nodes` property as a list of path-regex
// patterns selecting nodes out of a source tree (used by `tree` and
// `output` to emit a filtered copy instead of the whole tree or the
// pre-existing selection set).
func nodesProperty(node *lopper.Node) ([]string, bool) {
	p, ok := node.Property("nodes")
	if !ok {
		return nil, false
	}
	var out []string
	for _, item := range p.Value.List() {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, len(out) > 0
}

// selectByPatterns returns src's nodes matching any of patterns (OR
// across patterns), in tree order, deduplicated.
func selectByPatterns(src *lopper.Tree, patterns []string) ([]*lopper.Node, error) {
	seen := make(map[string]bool)
	var out []*lopper.Node
	for _, pat := range patterns {
		matches, err := src.Nodes(pat)
		if err != nil {
			return nil, err
		}
		for _, n := range matches {
			if !seen[n.AbsPath()] {
				seen[n.AbsPath()] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}
