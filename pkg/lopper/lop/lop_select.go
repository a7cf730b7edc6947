package lop

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
	"github.com/sdt-tools/lopper/pkg/lopper/selector"
)

// selectHandler implements the "select" lop kind: gather the node's
// select_1, select_2, ... properties in numeric order and hand their
// clause strings to the selector engine.
type selectHandler struct{}

func (selectHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}
	clauses := selectClauses(node)
	return selector.Apply(tree, clauses)
}

// selectClauses collects a node's select_N properties in ascending N
// order, flattening each property's value list into individual clause
// strings (a select_N may itself be a list, each entry OR'd in).
func selectClauses(node *lopper.Node) []string {
	type indexed struct {
		n      int
		values []string
	}
	var found []indexed
	for _, p := range node.Properties() {
		n, ok := selectIndex(p.Name)
		if !ok {
			continue
		}
		var vals []string
		for _, item := range p.Value.List() {
			vals = append(vals, fmt.Sprintf("%v", item))
		}
		found = append(found, indexed{n: n, values: vals})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	var out []string
	for _, f := range found {
		out = append(out, f.values...)
	}
	return out
}

func selectIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "select_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, "select_"))
	if err != nil {
		return 0, false
	}
	return n, true
}
