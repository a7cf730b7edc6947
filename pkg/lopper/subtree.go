package lopper

// SubtreeTable is the named side-channel of trees extracted from the
// main tree by `tree` lops, operable by subsequent lops. Owned by the engine, not by any individual tree.
type SubtreeTable struct {
	trees map[string]*Tree
}

// NewSubtreeTable returns an empty subtree table.
func NewSubtreeTable() *SubtreeTable {
	return &SubtreeTable{trees: make(map[string]*Tree)}
}

// Get returns the named subtree, if it exists.
func (s *SubtreeTable) Get(name string) (*Tree, bool) {
	t, ok := s.trees[name]
	return t, ok
}

// Set stores (or replaces) the named subtree.
func (s *SubtreeTable) Set(name string, t *Tree) {
	s.trees[name] = t
}

// Names returns the table's current subtree names.
func (s *SubtreeTable) Names() []string {
	names := make([]string, 0, len(s.trees))
	for n := range s.trees {
		names = append(names, n)
	}
	return names
}
