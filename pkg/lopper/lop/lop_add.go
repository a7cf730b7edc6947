package lop

import "github.com/sdt-tools/lopper/pkg/lopper"

// addHandler implements the "add" lop kind: graft the lop node's own
// single fragment child onto the target tree at the path named by its
// `node` property. The fragment keeps its own name
// unless `node` ends in a different final segment, in which case the
// fragment is renamed to match on the way in.
type addHandler struct{}

func (addHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	p, ok := node.Property("node")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "add lop missing `node` property", nil)
	}
	destPath, _ := p.Value.AsString()
	if destPath == "" {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "add lop's `node` property is empty", nil)
	}

	fragment := addFragment(node)
	if fragment == nil {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "add lop has no fragment child to graft", nil)
	}

	if err := tree.Add(destPath, fragment.DeepCopy()); err != nil {
		return err
	}
	return nil
}

// addFragment returns the add-lop node's sole non-meta child, the
// subtree fragment to graft onto the target tree. Properties like
// `node` and `compatible` live on the lop node itself, never as
// siblings of the fragment, so the first child is always it.
func addFragment(node *lopper.Node) *lopper.Node {
	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}
