package lop

import (
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// modifyHandler implements the "modify" lop kind: a `modify` property
// carries one or more "PATH:PROP:VAL" clauses applied in order (spec
// §4.4 "modify"). Per clause, PATH, PROP and VAL may each be empty:
//
//	PATH empty       target = the tree's current selection set
//	PATH nonempty    target = subnodes(lookup(PATH)) (PATH itself, plus descendants)
//
//	PROP empty, VAL empty      delete the (first) target node
//	PROP empty, VAL nonempty   move/rename the (first) target node to VAL
//	PROP nonempty, VAL empty   delete PROP from every target node
//	PROP nonempty, VAL nonempty  assign PROP on every matching node to the
//	                              typed parse (or phandle substitution) of VAL
//
// Node operations clobber before they rename-and-move: if VAL names a
// path that's already occupied, whatever sits there is deleted first
//.
type modifyHandler struct{}

func (modifyHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	p, ok := node.Property("modify")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "modify lop missing `modify` property", nil)
	}

	for _, item := range p.Value.List() {
		clause, ok := item.(string)
		if !ok {
			continue
		}
		if err := applyModify(ctx, tree, node.AbsPath(), clause); err != nil {
			return err
		}
	}
	return nil
}

func applyModify(ctx *Context, tree *lopper.Tree, lopPath, clause string) error {
	parts := strings.SplitN(clause, ":", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	path, prop, val := parts[0], parts[1], parts[2]

	// Initial target fetch: an empty PATH targets the
	// current selection set; otherwise PATH plus its descendants.
	var nodes []*lopper.Node
	if path == "" {
		nodes = tree.Selected()
	} else if target, ok := tree.LookupByPath(path); ok {
		nodes = tree.Subnodes(target)
	}

	switch {
	case prop != "" && val == "":
		// Property delete: best-effort across every target node.
		for _, n := range nodes {
			n.DeleteProperty(prop)
		}
		return tree.Sync()

	case prop != "" && val != "":
		// Property assign: re-fetched via the path regex (so a
		// PATH pattern can fan out to several nodes), or the
		// selection set when PATH was empty.
		targets := nodes
		if path != "" {
			var err error
			targets, err = tree.Nodes(path)
			if err != nil {
				return err
			}
		}
		if len(targets) == 0 {
			return lopper.NewWarning("modify %s: node %q not found, property %s not modified", lopPath, path, prop)
		}
		v, err := resolveModifyValue(ctx, val)
		if err != nil {
			return err
		}
		for _, n := range targets {
			n.SetProperty(prop, v)
		}
		return tree.Sync()

	default:
		// Node operation: only the first matching node is acted
		// on, matching the original engine's "just one target
		// node" behavior for move/rename/delete.
		if len(nodes) == 0 {
			return lopper.NewWarning("modify %s: no node at %q", lopPath, path)
		}
		target := nodes[0]
		if val == "" {
			return tree.Delete(target)
		}
		return moveNode(tree, target, val)
	}
}

// resolveModifyValue converts a modify clause's VAL into a typed
// Value, resolving &NAME[#FIELD] phandle references first (spec
// §4.4.1): NAME is looked up as a label in the main tree, then the lop
// tree; with #FIELD present the referenced property's value is
// substituted, otherwise the referenced node's phandle (0 if
// unresolved). Anything else is a best-effort literal parse.
func resolveModifyValue(ctx *Context, val string) (lopper.Value, error) {
	if !strings.HasPrefix(val, "&") {
		return lopper.ParseLiteral(val), nil
	}

	ref := strings.TrimPrefix(val, "&")
	name, field, hasField := strings.Cut(ref, "#")

	target, found := resolveTarget(ctx, "&"+name)
	if !found {
		return lopper.NewPhandleValue(0), nil
	}
	if hasField {
		if fp, ok := target.Property(field); ok {
			return fp.Value, nil
		}
		return lopper.NewPhandleValue(target.Phandle()), nil
	}
	return lopper.NewPhandleValue(target.Phandle()), nil
}

// moveNode relocates/renames target to destPath, clobbering (deleting)
// whatever already occupies destPath first.
func moveNode(tree *lopper.Tree, target *lopper.Node, destPath string) error {
	if existing, ok := tree.LookupByPath(destPath); ok {
		if err := tree.Delete(existing); err != nil {
			return err
		}
	}
	moved := target.DeepCopy()
	moved.SetPhandle(target.Phandle())
	if err := tree.Delete(target); err != nil {
		return err
	}
	return tree.Add(destPath, moved)
}
