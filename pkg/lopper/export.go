package lopper

// Export converts the tree to a neutral nested-mapping representation
// that Load reads back: per node a map[string]interface{} with a
// "__props__" map of its properties, "__children__" mapping each child
// name to that child's own map, "__order__" listing the child names in
// document order, and "__labels__"/"__phandle__" for metadata.
func (t *Tree) Export() map[string]interface{} {
	return exportNode(t.Root)
}

func exportNode(n *Node) map[string]interface{} {
	out := map[string]interface{}{}
	props := map[string]interface{}{}
	for _, p := range n.propList {
		props[p.Name] = exportValue(p.Value)
	}
	out["__props__"] = props
	if len(n.labels) > 0 {
		out["__labels__"] = append([]string{}, n.labels...)
	}
	if n.phandle != 0 {
		out["__phandle__"] = n.phandle
	}
	children := map[string]interface{}{}
	order := make([]string, 0, len(n.children))
	for _, c := range n.children {
		children[c.name] = exportNode(c)
		order = append(order, c.name)
	}
	out["__children__"] = children
	out["__order__"] = order
	return out
}

func exportValue(v Value) interface{} {
	switch v.Type() {
	case TypeEmpty:
		return nil
	default:
		if s, ok := v.AsString(); ok && v.Type() == TypeString {
			return s
		}
		return append([]interface{}{}, v.items...)
	}
}

// Load replaces the tree's contents from a neutral nested mapping
// produced by Export, then syncs indices.
func (t *Tree) Load(data map[string]interface{}) error {
	root, err := loadNode("", data)
	if err != nil {
		return err
	}
	t.Root = root
	return t.Sync()
}

func loadNode(name string, data map[string]interface{}) (*Node, error) {
	n := NewNode(name)
	if props, ok := data["__props__"].(map[string]interface{}); ok {
		for pname, raw := range props {
			n.SetProperty(pname, InferValue(raw))
		}
	}
	if labels, ok := data["__labels__"].([]string); ok {
		n.labels = append([]string{}, labels...)
	}
	if ph, ok := data["__phandle__"]; ok {
		if u, ok := asU32(ph); ok {
			n.phandle = u
		}
	}
	childMap, _ := data["__children__"].(map[string]interface{})
	order, _ := data["__order__"].([]string)
	for _, cname := range order {
		raw, ok := childMap[cname]
		if !ok {
			continue
		}
		cdata, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		child, err := loadNode(cname, cdata)
		if err != nil {
			return nil, err
		}
		n.addChild(child)
	}
	return n, nil
}

// Clone returns a fully independent deep copy of the tree, including a
// fresh phandle index.
func (t *Tree) Clone() *Tree {
	cp := &Tree{Root: t.Root.DeepCopy(), Strict: t.Strict}
	_ = cp.Sync() // structural copy of an already-valid phandle graph
	return cp
}
