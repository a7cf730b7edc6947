package lop

import "github.com/sdt-tools/lopper/pkg/lopper"

// metaHandler implements the "meta" lop kind. The only subtype spec
// §4.3 defines is "phandle-desc": every property on the meta node
// other than `compatible` publishes that property name's
// phandle-bearing subfields to the run-wide PhandleDescriptors map.
type metaHandler struct{}

func (metaHandler) Run(ctx *Context, node *lopper.Node) error {
	_, args, _ := isDirective(node)
	switch args {
	case "phandle-desc", "":
		for _, p := range node.Properties() {
			if p.Name == "compatible" {
				continue
			}
			var subfields []string
			for _, item := range p.Value.List() {
				if s, ok := item.(string); ok {
					subfields = append(subfields, s)
				}
			}
			ctx.Phandles.Register(p.Name, subfields)
		}
		return nil
	default:
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "unknown meta subtype \""+args+"\"", nil)
	}
}
