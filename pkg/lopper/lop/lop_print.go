package lop

import (
	"github.com/sdt-tools/lopper/log"
	"github.com/sdt-tools/lopper/pkg/lopper"
)

// printHandler implements the "print" lop kind: emit a diagnostic line
// per selected node, either a literal format string (`print` property)
// or, when the property's value is phandle-typed, the target node's
// path.
type printHandler struct{}

func (printHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	p, ok := node.Property("print")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "print lop missing `print` property", nil)
	}

	if p.Value.Type() == lopper.TypePhandleList {
		for _, item := range p.Value.List() {
			ph, ok := asU32Item(item)
			if !ok {
				continue
			}
			if target, found := tree.Pnode(ph); found {
				log.Printf("%s\n", target.AbsPath())
			} else {
				log.Printf("<unresolved phandle %d>\n", ph)
			}
		}
		return nil
	}

	text, _ := p.Value.AsString()
	if text == "" {
		text = p.Value.String()
	}
	for _, n := range tree.Selected() {
		log.Printf("%s: %s\n", n.AbsPath(), text)
	}
	if len(tree.Selected()) == 0 {
		log.Printf("%s\n", text)
	}
	return nil
}

func asU32Item(v interface{}) (uint32, bool) {
	switch n := v.(type) {
	case uint32:
		return n, true
	case int:
		return uint32(n), true
	}
	return 0, false
}
