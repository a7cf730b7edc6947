package lop

import "github.com/sdt-tools/lopper/pkg/lopper"

// defaultPriority is used when a lop tree's root carries no "priority"
// property.
const defaultPriority = 5

// Priority reads a lop tree's run priority from its root node's
// "priority" property, defaulting to 5 when the property is absent or
// its value lies outside [1,9].
func Priority(t *lopper.Tree) int {
	p, ok := t.Root.Property("priority")
	if !ok {
		return defaultPriority
	}
	v, ok := p.Value.AsU32()
	if !ok || v < 1 || v > 9 {
		return defaultPriority
	}
	return int(v)
}

// BuildRunqueue buckets lop trees by priority and returns them in
// run order: priority 1 first, ascending through 9, preserving each
// bucket's relative input order.
func BuildRunqueue(trees []*lopper.Tree) []*lopper.Tree {
	buckets := make([][]*lopper.Tree, 10)
	for _, t := range trees {
		pri := Priority(t)
		buckets[pri] = append(buckets[pri], t)
	}
	var out []*lopper.Tree
	for pri := 1; pri <= 9; pri++ {
		out = append(out, buckets[pri]...)
	}
	return out
}
