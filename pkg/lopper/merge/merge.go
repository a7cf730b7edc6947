// Package merge implements the main tree's multi-file YAML merge
//: additive, node-by-node merge of several parsed
// YAML documents into one, with an overwrite warning on leaf conflicts
//,
// and an escape hatch into github.com/cppforlife/go-patch for operators
// who want to apply an explicit patch instead of "last file wins".
package merge

import (
	"fmt"
	"sort"

	"github.com/cppforlife/go-patch/patch"

	"github.com/sdt-tools/lopper/log"
)

// Conflict records one leaf-vs-leaf collision the additive merge
// resolved by keeping the later file's value.
type Conflict struct {
	Path string
	Old  interface{}
	New  interface{}
}

// Result is the outcome of merging a sequence of parsed YAML documents:
// the folded map plus every leaf conflict encountered along the way, in
// first-seen order.
type Result struct {
	Merged    map[string]interface{}
	Conflicts []Conflict
}

// Files folds maps left to right: later files win on leaf conflicts,
// and every map is merged node-by-node rather than replaced wholesale
// (a map at some path in file 2 adds to, not replaces, the map already
// there from file 1).
func Files(maps []map[string]interface{}) *Result {
	r := &Result{Merged: map[string]interface{}{}}
	for _, m := range maps {
		r.mergeInto(r.Merged, m, "")
	}
	return r
}

func (r *Result) mergeInto(dst, src map[string]interface{}, path string) {
	for k, sv := range src {
		childPath := path + "/" + k
		dv, exists := dst[k]
		if !exists {
			dst[k] = sv
			continue
		}
		dm, dIsMap := dv.(map[string]interface{})
		sm, sIsMap := sv.(map[string]interface{})
		switch {
		case dIsMap && sIsMap:
			r.mergeInto(dm, sm, childPath)
		case dIsMap != sIsMap:
			// one side is a subtree, the other a leaf: the later value
			// still wins, but this is a shape change worth recording
			// alongside ordinary leaf conflicts.
			r.Conflicts = append(r.Conflicts, Conflict{Path: childPath, Old: dv, New: sv})
			dst[k] = sv
		default:
			if !equalLeaf(dv, sv) {
				log.PrintfStdErr("merge: overwriting %s (%v -> %v)\n", childPath, dv, sv)
				r.Conflicts = append(r.Conflicts, Conflict{Path: childPath, Old: dv, New: sv})
			}
			dst[k] = sv
		}
	}
}

func equalLeaf(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// OpDefinitions renders every recorded conflict as a go-patch "replace"
// operation targeting the winning (later-file) value, giving an operator
// a starting document to edit before running it back through ApplyPatch
// with --go-patch instead of accepting the default overwrite.
func (r *Result) OpDefinitions() []patch.OpDefinition {
	conflicts := append([]Conflict(nil), r.Conflicts...)
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })

	defs := make([]patch.OpDefinition, 0, len(conflicts))
	for _, c := range conflicts {
		path := c.Path
		value := c.New
		defs = append(defs, patch.OpDefinition{
			Type:  "replace",
			Path:  &path,
			Value: &value,
		})
	}
	return defs
}

// ApplyPatch runs opdefs against doc using go-patch, an escape hatch
// for operators who want explicit patch semantics for a merge
// conflict instead of the implicit "last file wins" rule.
func ApplyPatch(doc interface{}, opdefs []patch.OpDefinition) (interface{}, error) {
	ops, err := patch.NewOpsFromDefinitions(opdefs)
	if err != nil {
		return nil, fmt.Errorf("merge: invalid go-patch definitions: %w", err)
	}
	return ops.Apply(doc)
}
