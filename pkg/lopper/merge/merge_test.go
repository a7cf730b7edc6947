package merge

import "testing"

func TestFilesAdditiveMerge(t *testing.T) {
	a := map[string]interface{}{
		"soc": map[string]interface{}{
			"uart0": map[string]interface{}{"status": "disabled"},
		},
	}
	b := map[string]interface{}{
		"soc": map[string]interface{}{
			"uart1": map[string]interface{}{"status": "okay"},
		},
	}

	result := Files([]map[string]interface{}{a, b})

	soc, ok := result.Merged["soc"].(map[string]interface{})
	if !ok {
		t.Fatalf("soc subtree missing from merged result")
	}
	if _, ok := soc["uart0"]; !ok {
		t.Fatalf("uart0 from the first file should still be present")
	}
	if _, ok := soc["uart1"]; !ok {
		t.Fatalf("uart1 from the second file should have been added")
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("no leaf conflicts expected, got %v", result.Conflicts)
	}
}

func TestFilesLeafConflictLastFileWins(t *testing.T) {
	a := map[string]interface{}{
		"soc": map[string]interface{}{
			"uart0": map[string]interface{}{"status": "disabled"},
		},
	}
	b := map[string]interface{}{
		"soc": map[string]interface{}{
			"uart0": map[string]interface{}{"status": "okay"},
		},
	}

	result := Files([]map[string]interface{}{a, b})

	soc := result.Merged["soc"].(map[string]interface{})
	uart0 := soc["uart0"].(map[string]interface{})
	if uart0["status"] != "okay" {
		t.Fatalf("status = %v, want okay (later file wins)", uart0["status"])
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("len(Conflicts) = %d, want 1", len(result.Conflicts))
	}
	if result.Conflicts[0].Path != "/soc/uart0/status" {
		t.Fatalf("Conflicts[0].Path = %q, want /soc/uart0/status", result.Conflicts[0].Path)
	}
}

func TestOpDefinitionsRenderConflictsAsReplaceOps(t *testing.T) {
	r := &Result{Conflicts: []Conflict{
		{Path: "/soc/uart0/status", Old: "disabled", New: "okay"},
	}}
	defs := r.OpDefinitions()
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	if defs[0].Type != "replace" {
		t.Fatalf("defs[0].Type = %q, want replace", defs[0].Type)
	}
	if *defs[0].Path != "/soc/uart0/status" {
		t.Fatalf("defs[0].Path = %q, want /soc/uart0/status", *defs[0].Path)
	}
}
