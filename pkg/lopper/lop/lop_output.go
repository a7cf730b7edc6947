package lop

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// outputHandler implements the "output" lop kind: render the target
// tree and write it to the file named by `outfile`, refusing to
// overwrite an existing file unless -f/--force was given. A `nodes`
// property filters the render down to the matching path-regex
// patterns; absent that, a non-empty selection set is used instead;
// absent both, the whole target tree is rendered. Under --dryrun the
// render still happens and is recorded on the context, but nothing
// touches disk.
type outputHandler struct{}

func (outputHandler) Run(ctx *Context, node *lopper.Node) error {
	tree, err := ctx.targetTree(node)
	if err != nil {
		return err
	}

	p, ok := node.Property("outfile")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "output lop missing `outfile` property", nil)
	}
	outfile, _ := p.Value.AsString()
	if outfile == "" {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "output lop's `outfile` property is empty", nil)
	}
	if ctx.OutputDir != "" && !filepath.IsAbs(outfile) {
		outfile = filepath.Join(ctx.OutputDir, outfile)
	}

	subject := tree
	if patterns, ok := nodesProperty(node); ok {
		matches, err := selectByPatterns(tree, patterns)
		if err != nil {
			return err
		}
		subject = nodesAsTree(matches)
	} else if len(tree.Selected()) > 0 {
		subject = selectionAsTree(tree)
	}

	render := ctx.Render
	if render == nil {
		render = renderJSON
	}
	payload, err := render(subject)
	if err != nil {
		return lopper.NewError(lopper.CompileFailure, node.AbsPath(), "rendering output: "+err.Error(), err)
	}
	ctx.writtenOut[outfile] = payload

	if ctx.Dryrun {
		return nil
	}
	if !ctx.Force {
		if _, err := os.Stat(outfile); err == nil {
			return lopper.NewError(lopper.OutputExistsNoForce, outfile, "output file exists, use -f to overwrite", nil)
		}
	}
	return os.WriteFile(outfile, payload, 0644)
}

func renderJSON(t *lopper.Tree) ([]byte, error) {
	return json.MarshalIndent(t.Export(), "", "  ")
}

// selectionAsTree builds a throwaway tree containing deep copies of
// just t's current selection, rooted directly under "/", so `output`
// can emit a filtered view without disturbing t itself.
func selectionAsTree(t *lopper.Tree) *lopper.Tree {
	return nodesAsTree(t.Selected())
}

// nodesAsTree builds a throwaway tree containing deep copies of
// nodes, rooted directly under "/".
func nodesAsTree(nodes []*lopper.Node) *lopper.Tree {
	out := lopper.NewTree()
	out.Strict = false
	for _, n := range nodes {
		_ = out.Add("/"+n.Name(), n.DeepCopy())
	}
	return out
}
