package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

// buildConditionalFixture returns a main tree with two uart nodes (one
// enabled, one disabled) and a lop tree carrying a conditional lop that
// checks "status" == "okay" under cond_root "cond", with a "true-mark"
// and "false-mark" child lop recording which nodes each branch saw.
func buildConditionalFixture() (*lopper.Tree, *lopper.Tree) {
	main := lopper.NewTree()
	soc := lopper.NewNode("soc")
	main.Add("/soc", soc)
	uart0 := lopper.NewNode("uart0")
	uart0.SetProperty("status", lopper.NewStringValue("okay"))
	main.Add("/soc/uart0", uart0)
	uart1 := lopper.NewNode("uart1")
	uart1.SetProperty("status", lopper.NewStringValue("disabled"))
	main.Add("/soc/uart1", uart1)

	lopTree := lopper.NewTree()
	condLop := lopper.NewNode("test-uarts")
	condLop.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,conditional"))
	condLop.SetProperty("cond_root", lopper.NewStringValue("cond"))
	lopTree.Add("/test-uarts", condLop)

	cond := lopper.NewNode("cond")
	lopTree.Add("/test-uarts/cond", cond)
	socCond := lopper.NewNode("soc")
	lopTree.Add("/test-uarts/cond/soc", socCond)
	uartCond := lopper.NewNode("uart.*")
	uartCond.SetProperty("status", lopper.NewStringValue("okay"))
	lopTree.Add("/test-uarts/cond/soc/uart.*", uartCond)

	trueMark := lopper.NewNode("true-mark")
	trueMark.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	trueMark.SetProperty("code", lopper.NewStringValue("1 == 1"))
	trueMark.SetProperty("set", lopper.NewStringValue("matched-true"))
	lopTree.Add("/test-uarts/true-mark", trueMark)

	falseMark := lopper.NewNode("false-mark")
	falseMark.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	falseMark.SetProperty("code", lopper.NewStringValue("1 == 1"))
	falseMark.SetProperty("set", lopper.NewStringValue("matched-false"))
	lopTree.Add("/test-uarts/false-mark", falseMark)

	return main, lopTree
}

func TestConditionalClassifiesTrueAndFalseMatches(t *testing.T) {
	main, lopTree := buildConditionalFixture()
	interp := NewInterpreter()
	ctx := NewContext(main)
	ctx.LopTree = lopTree

	condLop, _ := lopTree.LookupByPath("/test-uarts")
	if err := interp.dispatch(ctx, condLop, KindConditional, ""); err != nil {
		t.Fatalf("dispatch conditional: %v", err)
	}

	uart0, _ := main.LookupByPath("/soc/uart0")
	uart1, _ := main.LookupByPath("/soc/uart1")

	if _, ok := uart0.Property("matched-true"); !ok {
		t.Fatalf("uart0 (status okay) should have run the true branch")
	}
	if _, ok := uart1.Property("matched-false"); !ok {
		t.Fatalf("uart1 (status disabled) should have run the false branch")
	}
	if _, ok := uart1.Property("matched-true"); ok {
		t.Fatalf("uart1 should not have run the true branch")
	}
}

func TestConditionalBranchStopsOnFalse(t *testing.T) {
	main := lopper.NewTree()
	soc := lopper.NewNode("soc")
	main.Add("/soc", soc)
	uart0 := lopper.NewNode("uart0")
	uart0.SetProperty("status", lopper.NewStringValue("okay"))
	main.Add("/soc/uart0", uart0)

	lopTree := lopper.NewTree()
	condLop := lopper.NewNode("test-uarts")
	condLop.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,conditional"))
	condLop.SetProperty("cond_root", lopper.NewStringValue("cond"))
	lopTree.Add("/test-uarts", condLop)

	cond := lopper.NewNode("cond")
	lopTree.Add("/test-uarts/cond", cond)
	socCond := lopper.NewNode("soc")
	lopTree.Add("/test-uarts/cond/soc", socCond)
	uartCond := lopper.NewNode("uart.*")
	uartCond.SetProperty("status", lopper.NewStringValue("okay"))
	lopTree.Add("/test-uarts/cond/soc/uart.*", uartCond)

	// "true-guard" sorts and runs before "true-mark" (document order),
	// evaluates falsy, and must stop the true chain before true-mark runs.
	guard := lopper.NewNode("true-guard")
	guard.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	guard.SetProperty("code", lopper.NewStringValue("1 == 2"))
	lopTree.Add("/test-uarts/true-guard", guard)

	trueMark := lopper.NewNode("true-mark")
	trueMark.SetProperty("compatible", lopper.NewStringValue("system-device-tree-v1,lop,code"))
	trueMark.SetProperty("code", lopper.NewStringValue("1 == 1"))
	trueMark.SetProperty("set", lopper.NewStringValue("matched-true"))
	lopTree.Add("/test-uarts/true-mark", trueMark)

	interp := NewInterpreter()
	ctx := NewContext(main)
	ctx.LopTree = lopTree

	if err := interp.dispatch(ctx, condLop, KindConditional, ""); err != nil {
		t.Fatalf("dispatch conditional: %v", err)
	}

	if _, ok := uart0.Property("matched-true"); ok {
		t.Fatalf("true-guard's falsy code lop should have stopped the true chain before true-mark ran")
	}
}
