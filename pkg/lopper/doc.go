/*
Package lopper implements the core of a System Device Tree transformation
engine: a mutable, ordered, labelled tree of named nodes with typed
properties (Tree, Node, Property, Value), a selector/matcher sublanguage
for resolving compound node-selection expressions to node sets (see the
selector subpackage), and a lop interpreter that decodes rewrite
directives from auxiliary "lop trees" and applies them to a main tree
(see the lop subpackage).

# Quick start

	tree := lopper.NewTree()
	tree.Strict = true

	uart, _ := tree.LookupByPath("/amba/uart@0")
	renamed := uart.DeepCopy()
	tree.Add("/amba/serial0", renamed)
	tree.Delete(uart)

# Selection and lops

The selector and lop subpackages build on Tree/Node to implement spec
§4.2 (select_N expressions) and §4.4 (the thirteen lop kinds: load,
assist-v1, add, modify, conditional, code, xlate, output, tree, select,
print, meta, exec). A full pipeline run loads a main tree plus zero or
more lop trees, buckets the lop trees into a priority runqueue, and walks
each in document order via lop.Interpreter.Run.
*/
package lopper
