package lop

import (
	"testing"

	"github.com/sdt-tools/lopper/pkg/lopper"
)

func lopTreeWithPriority(name string, priority uint32) *lopper.Tree {
	t := lopper.NewTree()
	if priority != 0 {
		t.Root.SetProperty("priority", lopper.NewU32Value(priority))
	}
	t.Root.AddLabel(name)
	return t
}

func TestPriorityDefaultsTo5(t *testing.T) {
	tree := lopTreeWithPriority("no-priority", 0)
	if got := Priority(tree); got != 5 {
		t.Fatalf("Priority() = %d, want default 5", got)
	}
}

func TestPriorityFallsBackToDefaultOutOfRange(t *testing.T) {
	tree := lopTreeWithPriority("bad-priority", 99)
	if got := Priority(tree); got != 5 {
		t.Fatalf("Priority() = %d, want fallback 5 for an out-of-range value", got)
	}
}

func TestBuildRunqueueOrdersByAscendingPriority(t *testing.T) {
	low := lopTreeWithPriority("low", 9)
	high := lopTreeWithPriority("high", 1)
	mid := lopTreeWithPriority("mid", 5)

	queue := BuildRunqueue([]*lopper.Tree{low, mid, high})
	if len(queue) != 3 {
		t.Fatalf("queue length = %d, want 3", len(queue))
	}
	if queue[0] != high || queue[1] != mid || queue[2] != low {
		t.Fatalf("queue not ordered priority-1-first")
	}
}

func TestBuildRunqueuePreservesInputOrderWithinABucket(t *testing.T) {
	first := lopTreeWithPriority("first", 3)
	second := lopTreeWithPriority("second", 3)

	queue := BuildRunqueue([]*lopper.Tree{first, second})
	if queue[0] != first || queue[1] != second {
		t.Fatalf("same-priority trees should keep their relative input order")
	}
}
