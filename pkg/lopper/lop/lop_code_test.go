package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func TestCodeSetsResultProperty(t *testing.T) {
	tree := lopper.NewTree()
	uart0 := lopper.NewNode("uart0")
	tree.Add("/uart0", uart0)
	tree.SetSelected([]*lopper.Node{uart0})

	node := lopper.NewNode("compute")
	node.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	node.SetProperty("code", lopper.NewStringValue("1 + 2"))
	node.SetProperty("set", lopper.NewStringValue("computed"))

	ctx := NewContext(tree)
	if err := (codeHandler{xlate: false}).Run(ctx, node); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p, ok := uart0.Property("computed")
	if !ok {
		t.Fatalf("computed property not set")
	}
	v, ok := p.Value.AsU32()
	if !ok || v != 3 {
		t.Fatalf("computed = %v, want 3", p.Value)
	}
}

func TestCodeReturnsFalseSentinelWithoutSetProperty(t *testing.T) {
	tree := lopper.NewTree()
	uart0 := lopper.NewNode("uart0")
	tree.Add("/uart0", uart0)
	tree.SetSelected([]*lopper.Node{uart0})

	node := lopper.NewNode("check")
	node.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	node.SetProperty("code", lopper.NewStringValue("1 == 2"))

	ctx := NewContext(tree)
	err := (codeHandler{xlate: false}).Run(ctx, node)
	if err != ErrLopFalse {
		t.Fatalf("Run() = %v, want ErrLopFalse", err)
	}
}

func TestXlateAlwaysRewritesDestProperty(t *testing.T) {
	tree := lopper.NewTree()
	uart0 := lopper.NewNode("uart0")
	uart0.SetProperty("clock-frequency", lopper.NewU32Value(100))
	tree.Add("/uart0", uart0)
	tree.SetSelected([]*lopper.Node{uart0})

	node := lopper.NewNode("xlate-freq")
	node.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,xlate"))
	node.SetProperty("xlate", lopper.NewStringValue(`prop(path, "clock-frequency")`))
	node.SetProperty("xlate-prop", lopper.NewStringValue("clock-frequency-str"))

	ctx := NewContext(tree)
	if err := (codeHandler{xlate: true}).Run(ctx, node); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, ok := uart0.Property("clock-frequency-str")
	if !ok {
		t.Fatalf("clock-frequency-str not set by xlate")
	}
	if s, _ := p.Value.AsString(); s != "100" {
		t.Fatalf("clock-frequency-str = %q, want \"100\"", s)
	}
}

func TestCodeFallsBackToStartNodeWithoutSelection(t *testing.T) {
	tree := lopper.NewTree()
	uart0 := lopper.NewNode("uart0")
	tree.Add("/uart0", uart0)

	node := lopper.NewNode("compute")
	node.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	node.SetProperty("code", lopper.NewStringValue("1 + 1"))
	node.SetProperty("set", lopper.NewStringValue("computed"))

	ctx := NewContext(tree)
	ctx.StartNode = uart0

	if err := (codeHandler{xlate: false}).Run(ctx, node); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := uart0.Property("computed"); !ok {
		t.Fatalf("expected code lop to fall back to ctx.StartNode when selection is empty")
	}
}
