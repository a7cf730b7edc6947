package lop

import (
	"context"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// assistHandler implements the "assist-v1" lop kind: hand a node off
// to a registered Assist, identified either by an explicit `id`
// property or by scanning for the first assist whose IsCompatible
// claims the node. If the lop names no `node` to target, it falls
// back to the target tree's current selection's first member.
type assistHandler struct{}

func (assistHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	target := node
	if p, ok := node.Property("node"); ok {
		if ref, ok := p.Value.AsString(); ok {
			n, found := resolveTarget(ctx, ref)
			if !found {
				return lopper.NewWarning("assist-v1 %s: node %q not found", node.AbsPath(), ref)
			}
			target = n
		}
	} else if n, ok := firstSelected(tree); ok {
		target = n
	}

	id, _ := stringProp(node, "id")
	a, err := ctx.Assists.Resolve(id, target)
	if err != nil {
		return lopper.NewWarning("assist-v1 %s: %v", node.AbsPath(), err)
	}

	if runErr := a.Run(context.Background(), tree, target, optionArgs(node)); runErr != nil {
		return lopper.NewWarning("assist-v1 %s: %s assist: %v", node.AbsPath(), a.ID(), runErr)
	}
	return tree.Sync()
}
