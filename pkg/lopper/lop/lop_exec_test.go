package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func TestExecRedispatchesByPhandle(t *testing.T) {
	main := lopper.NewTree()
	main.Add("/soc", lopper.NewNode("soc"))
	uart0 := lopper.NewNode("uart0")
	main.Add("/soc/uart0", uart0)

	lopTree := lopper.NewTree()
	target := lopper.NewNode("set-status")
	target.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,modify"))
	target.SetProperty("modify", lopper.NewStringListValue([]string{"/soc/uart0:status:okay"}))
	target.SetPhandle(11)
	lopTree.Add("/set-status", target)
	lopTree.Sync()

	execNode := lopper.NewNode("run-it")
	execNode.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,exec"))
	execNode.SetProperty("exec", lopper.NewPhandleValue(11))
	lopTree.Add("/run-it", execNode)

	interp := NewInterpreter()
	ctx := NewContext(main)
	ctx.LopTree = lopTree

	if err := interp.dispatch(ctx, execNode, KindExec, ""); err != nil {
		t.Fatalf("dispatch exec: %v", err)
	}

	p, ok := uart0.Property("status")
	if !ok {
		t.Fatalf("status property not set by exec-dispatched modify")
	}
	if s, _ := p.Value.AsString(); s != "okay" {
		t.Fatalf("status = %q, want okay", s)
	}
}

func TestExecUnresolvedPhandleIsFalse(t *testing.T) {
	main := lopper.NewTree()
	lopTree := lopper.NewTree()
	execNode := lopper.NewNode("run-it")
	execNode.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,exec"))
	execNode.SetProperty("exec", lopper.NewPhandleValue(99))
	lopTree.Add("/run-it", execNode)

	interp := NewInterpreter()
	ctx := NewContext(main)
	ctx.LopTree = lopTree

	err := interp.dispatch(ctx, execNode, KindExec, "")
	if err != ErrLopFalse {
		t.Fatalf("dispatch exec with unresolved phandle = %v, want ErrLopFalse", err)
	}
}

func TestExecMergesOptions(t *testing.T) {
	main := lopper.NewTree()
	lopTree := lopper.NewTree()

	target := lopper.NewNode("do-print")
	target.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,print"))
	target.SetProperty("print", lopper.NewStringValue("hi"))
	target.SetProperty("options", lopper.NewStringValue("from-target"))
	target.SetPhandle(5)
	lopTree.Add("/do-print", target)

	execNode := lopper.NewNode("run-it")
	execNode.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,exec"))
	execNode.SetProperty("exec", lopper.NewPhandleValue(5))
	execNode.SetProperty("options", lopper.NewStringValue("from-exec"))
	lopTree.Add("/run-it", execNode)

	mergeExecOptions(execNode, target)

	p, ok := target.Property("options")
	if !ok {
		t.Fatalf("options property missing after merge")
	}
	items := p.Value.List()
	if len(items) != 2 {
		t.Fatalf("merged options = %v, want 2 entries (exec's then target's)", items)
	}
	if items[0] != "from-exec" || items[1] != "from-target" {
		t.Fatalf("merged options = %v, want [from-exec from-target]", items)
	}
}
