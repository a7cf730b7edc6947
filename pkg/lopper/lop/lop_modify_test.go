package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func buildModifyFixture() *lopper.Tree {
	tree := lopper.NewTree()
	soc := lopper.NewNode("soc")
	tree.Add("/soc", soc)
	uart0 := lopper.NewNode("uart0")
	uart0.AddLabel("uart0")
	uart0.SetProperty("status", lopper.NewStringValue("disabled"))
	tree.Add("/soc/uart0", uart0)
	return tree
}

func modifyLopNode(clauses ...string) *lopper.Node {
	n := lopper.NewNode("modify-it")
	n.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,modify"))
	n.SetProperty("modify", lopper.NewStringListValue(clauses))
	return n
}

func TestModifyPropertyAssign(t *testing.T) {
	tree := buildModifyFixture()
	ctx := NewContext(tree)
	lopNode := modifyLopNode("/soc/uart0:status:okay")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, ok := tree.LookupByPath("/soc/uart0")
	if !ok {
		t.Fatalf("uart0 missing after modify")
	}
	p, ok := n.Property("status")
	if !ok {
		t.Fatalf("status property missing")
	}
	if s, _ := p.Value.AsString(); s != "okay" {
		t.Fatalf("status = %q, want okay", s)
	}
}

func TestModifyPropertyDelete(t *testing.T) {
	tree := buildModifyFixture()
	ctx := NewContext(tree)
	lopNode := modifyLopNode("/soc/uart0:status:")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}

	n, _ := tree.LookupByPath("/soc/uart0")
	if _, ok := n.Property("status"); ok {
		t.Fatalf("status property should have been deleted")
	}
}

func TestModifyNodeDelete(t *testing.T) {
	tree := buildModifyFixture()
	ctx := NewContext(tree)
	lopNode := modifyLopNode("/soc/uart0::")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := tree.LookupByPath("/soc/uart0"); ok {
		t.Fatalf("uart0 should have been deleted")
	}
}

func TestModifyNodeMove(t *testing.T) {
	tree := buildModifyFixture()
	ctx := NewContext(tree)
	lopNode := modifyLopNode("/soc/uart0::/soc/uart1")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := tree.LookupByPath("/soc/uart0"); ok {
		t.Fatalf("old path should be gone after move")
	}
	moved, ok := tree.LookupByPath("/soc/uart1")
	if !ok {
		t.Fatalf("new path missing after move")
	}
	if moved.Name() != "uart1" {
		t.Fatalf("moved node name = %q, want uart1", moved.Name())
	}
}

func TestModifyPhandleSubstitution(t *testing.T) {
	tree := buildModifyFixture()
	target, _ := tree.LookupByPath("/soc/uart0")
	target.SetPhandle(3)
	tree.Sync()

	ctx := NewContext(tree)
	clk := lopper.NewNode("clk0")
	tree.Add("/soc/clk0", clk)
	lopNode := modifyLopNode("/soc/clk0:clocks:&uart0")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, ok := clk.Property("clocks")
	if !ok {
		t.Fatalf("clocks property not set")
	}
	ph, ok := p.Value.AsU32()
	if !ok || ph != 3 {
		t.Fatalf("clocks = %v, want phandle 3", p.Value)
	}
}

func TestModifySelectionFallback(t *testing.T) {
	tree := buildModifyFixture()
	uart0, _ := tree.LookupByPath("/soc/uart0")
	tree.SetSelected([]*lopper.Node{uart0})

	ctx := NewContext(tree)
	lopNode := modifyLopNode(":status:okay")

	if err := (modifyHandler{}).Run(ctx, lopNode); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, _ := uart0.Property("status")
	if s, _ := p.Value.AsString(); s != "okay" {
		t.Fatalf("status = %q, want okay", s)
	}
}
