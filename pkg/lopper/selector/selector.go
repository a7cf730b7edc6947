// Package selector implements the compound node-selection sublanguage:
// PATH_REGEX[:PROPNAME[:PROPVAL]] expressions, combined across
// select_N properties with OR over candidates and AND over
// predicates, negation via leading "!", and chained empty-path clauses
// that shrink a previous selection.
package selector

import (
	"strings"

	"github.com/sdt-tools/lopper/log"
	"github.com/sdt-tools/lopper/pkg/lopper"
)

// Clause is one parsed PATH_REGEX[:PROPNAME[:PROPVAL]] expression.
type Clause struct {
	PathRegex string
	PropName  string
	PropVal   string
	HasProp   bool
	HasVal    bool
}

// Parse splits a selector expression on ":" into up to three fields.
// A clause with fewer than three colons leaves the trailing fields
// empty, matching the original source's `node_regex, prop, prop_val =
// s.split(":")` with a bare path falling back to (path, "", "").
func Parse(s string) Clause {
	parts := strings.SplitN(s, ":", 3)
	var c Clause
	c.PathRegex = parts[0]
	if len(parts) > 1 {
		c.PropName = parts[1]
		c.HasProp = c.PropName != ""
	}
	if len(parts) > 2 {
		c.PropVal = parts[2]
		c.HasVal = true
	}
	return c
}

// Apply resolves an ordered list of select_N clause strings (each
// select_N property's full value list, in select_1, select_2, ...
// document order) against tree and stores the result as its selection
// set.
func Apply(tree *lopper.Tree, clauseStrings []string) error {
	if len(clauseStrings) == 0 {
		return nil
	}

	var pool []*lopper.Node
	first := true

	for _, raw := range clauseStrings {
		if raw == "" {
			log.TRACE("select: clearing selection set")
			tree.ClearSelected()
			return nil
		}

		c := Parse(raw)
		log.TRACE("select: clause %q -> path=%q prop=%q val=%q", raw, c.PathRegex, c.PropName, c.PropVal)

		if c.PathRegex == "" {
			base := pool
			if first {
				base = tree.Selected()
			}
			pool = filterPredicate(base, c)
		} else {
			candidates, err := tree.Nodes(c.PathRegex)
			if err != nil {
				return err
			}
			if c.HasProp || c.HasVal {
				candidates = filterPredicate(candidates, c)
			}
			pool = unionNodes(pool, candidates)
		}
		first = false
	}

	tree.SetSelected(pool)
	return nil
}

// filterPredicate applies one clause's property predicate as an AND
// filter over base, honoring the negation rules:
//   - PROPVAL beginning "!": invert the equality test.
//   - PROPNAME beginning "!" with no PROPVAL: test for absence.
//   - PROPNAME with no PROPVAL: test for presence.
func filterPredicate(base []*lopper.Node, c Clause) []*lopper.Node {
	propName := c.PropName
	absenceTest := false
	if strings.HasPrefix(propName, "!") {
		absenceTest = true
		propName = strings.TrimPrefix(propName, "!")
	}
	if propName == "" {
		return base
	}

	if !c.HasVal || c.PropVal == "" {
		var out []*lopper.Node
		for _, n := range base {
			_, present := n.Property(propName)
			if present != absenceTest {
				out = append(out, n)
			}
		}
		return out
	}

	invert := strings.HasPrefix(c.PropVal, "!")
	val := strings.TrimPrefix(c.PropVal, "!")

	var out []*lopper.Node
	for _, n := range base {
		p, present := n.Property(propName)
		equal := present && p.Value.Equal(val)
		if invert {
			equal = !equal
		}
		if equal {
			out = append(out, n)
		}
	}
	return out
}

// unionNodes appends b's nodes onto a, skipping ones already present
// (tracked by absolute path), preserving a's order then b's.
func unionNodes(a, b []*lopper.Node) []*lopper.Node {
	seen := make(map[string]bool, len(a))
	for _, n := range a {
		seen[n.AbsPath()] = true
	}
	for _, n := range b {
		if !seen[n.AbsPath()] {
			a = append(a, n)
			seen[n.AbsPath()] = true
		}
	}
	return a
}
