package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func TestDispatchChildrenSwallowsTopLevelErrLopFalse(t *testing.T) {
	main := lopper.NewTree()
	lopTree := lopper.NewTree()

	root := lopper.NewNode("root-lop")
	falsy := lopper.NewNode("falsy-check")
	falsy.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	falsy.SetProperty("code", lopper.NewStringValue("1 == 2"))
	lopTree.Add("/root-lop", root)
	lopTree.Add("/root-lop/falsy-check", falsy)

	after := lopper.NewNode("after")
	after.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	after.SetProperty("code", lopper.NewStringValue("1 == 1"))
	after.SetProperty("set", lopper.NewStringValue("ran"))
	lopTree.Add("/root-lop/after", after)

	main.Add("/n", lopper.NewNode("n"))
	mainNode, _ := main.LookupByPath("/n")
	main.SetSelected([]*lopper.Node{mainNode})

	interp := NewInterpreter()
	ctx := NewContext(main)

	if err := interp.dispatchChildren(ctx, lopTree.Root); err != nil {
		t.Fatalf("dispatchChildren: %v", err)
	}
	if _, ok := mainNode.Property("ran"); !ok {
		t.Fatalf("a standalone falsy code lop at top level should not abort subsequent siblings")
	}
}

func TestDispatchChildrenSkipsNoexec(t *testing.T) {
	main := lopper.NewTree()
	lopTree := lopper.NewTree()

	skipped := lopper.NewNode("skip-me")
	skipped.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,modify"))
	skipped.SetProperty("modify", lopper.NewStringListValue([]string{"/n:touched:1"}))
	skipped.SetProperty("noexec", lopper.NewEmptyValue())
	lopTree.Add("/skip-me", skipped)

	main.Add("/n", lopper.NewNode("n"))
	n, _ := main.LookupByPath("/n")

	interp := NewInterpreter()
	ctx := NewContext(main)
	if err := interp.dispatchChildren(ctx, lopTree.Root); err != nil {
		t.Fatalf("dispatchChildren: %v", err)
	}
	if _, ok := n.Property("touched"); ok {
		t.Fatalf("a noexec'd lop should not have run")
	}
}

func TestDispatchUnknownKindIsMalformed(t *testing.T) {
	lopTree := lopper.NewTree()
	node := lopper.NewNode("weird")
	lopTree.Add("/weird", node)

	interp := NewInterpreter()
	ctx := NewContext(lopper.NewTree())
	err := interp.dispatch(ctx, node, Kind("nonsense"), "")
	if err == nil {
		t.Fatalf("expected an error for an unregistered lop kind")
	}
	lerr, ok := err.(*lopper.LopperError)
	if !ok {
		t.Fatalf("error = %T, want *lopper.LopperError", err)
	}
	if lerr.Kind != lopper.LopMalformed {
		t.Fatalf("error kind = %v, want LopMalformed", lerr.Kind)
	}
}
