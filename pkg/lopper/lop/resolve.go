package lop

import (
	"strconv"
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// optionArgs splits a node's "options" property into shell-style
// space-separated arguments, used by assist-v1/exec to build the
// argument vector an Assist.Run receives.
func optionArgs(node *lopper.Node) []string {
	p, ok := node.Property("options")
	if !ok {
		return nil
	}
	var out []string
	for _, item := range p.Value.List() {
		if s, ok := item.(string); ok {
			out = append(out, strings.Fields(s)...)
		}
	}
	return out
}

// resolveTarget finds the node a phandle-or-path reference names,
// trying each of the fallback sources in the order the original
// engine does: the main tree's path index, then its label index, then
// the lop tree's own path/label indices.
func resolveTarget(ctx *Context, ref string) (*lopper.Node, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}

	if strings.HasPrefix(ref, "&") {
		label := strings.TrimPrefix(ref, "&")
		if n, ok := ctx.Main.LookupByLabel(label); ok {
			return n, true
		}
		if ctx.LopTree != nil {
			if n, ok := ctx.LopTree.LookupByLabel(label); ok {
				return n, true
			}
		}
		return nil, false
	}

	if ph, err := strconv.ParseUint(ref, 0, 32); err == nil {
		if n, ok := ctx.Main.Pnode(uint32(ph)); ok {
			return n, true
		}
		if ctx.LopTree != nil {
			if n, ok := ctx.LopTree.Pnode(uint32(ph)); ok {
				return n, true
			}
		}
		return nil, false
	}

	if n, ok := ctx.Main.LookupByPath(ref); ok {
		return n, true
	}
	if n, ok := ctx.Main.LookupByLabel(ref); ok {
		return n, true
	}
	if ctx.LopTree != nil {
		if n, ok := ctx.LopTree.LookupByPath(ref); ok {
			return n, true
		}
		if n, ok := ctx.LopTree.LookupByLabel(ref); ok {
			return n, true
		}
	}
	return nil, false
}

// firstSelected returns the first member of tree's current selection,
// the fallback assist-v1/exec use when no explicit target node was
// named.
func firstSelected(t *lopper.Tree) (*lopper.Node, bool) {
	sel := t.Selected()
	if len(sel) == 0 {
		return nil, false
	}
	return sel[0], true
}
