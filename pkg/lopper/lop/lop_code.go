package lop

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// codeHandler implements the "code" and "xlate" lop kinds: both
// evaluate a govaluate expression once per selected node, with
// `phandle()`, `prop()` and `selected()` helpers bound to that node.
// "code" lops run for side effects and optionally store their result
// in the property named by `set`; "xlate" lops always rewrite the
// property named by `xlate-prop` with the result.
type codeHandler struct {
	xlate bool
}

func (h codeHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	exprProp := "code"
	if h.xlate {
		exprProp = "xlate"
	}
	p, ok := node.Property(exprProp)
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "lop missing `"+exprProp+"` property", nil)
	}
	exprText, _ := p.Value.AsString()
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprText, codeFunctions(tree))
	if err != nil {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "invalid expression: "+err.Error(), err)
	}

	targets := tree.Selected()
	if len(targets) == 0 && ctx.StartNode != nil {
		targets = []*lopper.Node{ctx.StartNode}
	}
	if len(targets) == 0 {
		targets = []*lopper.Node{tree.Root}
	}

	destProp := ""
	if h.xlate {
		destProp, _ = stringProp(node, "xlate-prop")
	} else {
		destProp, _ = stringProp(node, "set")
	}

	sawFalse := false
	for _, n := range targets {
		params := map[string]interface{}{
			"path":  n.AbsPath(),
			"name":  n.Name(),
			"label": firstOrEmpty(n.Labels()),
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return lopper.NewWarning("%s %s: evaluate against %s: %v", exprProp, node.AbsPath(), n.AbsPath(), err)
		}
		if destProp != "" {
			n.SetProperty(destProp, lopper.InferValue(coerceResult(result)))
		} else if b, ok := result.(bool); ok && !b {
			sawFalse = true
		}
	}
	if err := tree.Sync(); err != nil {
		return err
	}

	// A bare "code"/"xlate" lop (no `set`/`xlate-prop`) that evaluates
	// falsy signals ErrLopFalse, meaningful chiefly as a conditional
	// true/false child.
	if destProp == "" && sawFalse {
		return ErrLopFalse
	}
	return nil
}

// codeFunctions binds the expression helpers available to code/xlate
// evaluation to tree: phandle(path) looks up a node's phandle,
// prop(path, name) reads a scalar property, selected() counts the
// current selection set.
func codeFunctions(tree *lopper.Tree) map[string]govaluate.ExpressionFunction {
	return map[string]govaluate.ExpressionFunction{
		"phandle": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("phandle() takes one argument")
			}
			path, _ := args[0].(string)
			n, ok := tree.LookupByPath(path)
			if !ok {
				return float64(0), nil
			}
			return float64(n.Phandle()), nil
		},
		"prop": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("prop() takes two arguments")
			}
			path, _ := args[0].(string)
			name, _ := args[1].(string)
			n, ok := tree.LookupByPath(path)
			if !ok {
				return nil, nil
			}
			p, ok := n.Property(name)
			if !ok {
				return nil, nil
			}
			return p.Value.String(), nil
		},
		"selected": func(args ...interface{}) (interface{}, error) {
			return float64(len(tree.Selected())), nil
		},
	}
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

// coerceResult narrows govaluate's float64-for-every-number result
// back toward the u32 properties this engine otherwise uses.
func coerceResult(result interface{}) interface{} {
	if f, ok := result.(float64); ok {
		return uint32(f)
	}
	return result
}
