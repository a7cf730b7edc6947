package lopper

// Property is a named, typed value attached to a Node: a property has
// a name, an inferred type tag, and a value; values are always
// logically a list, scalars are singleton lists.
type Property struct {
	Name  string
	Value Value
	dirty bool
}

// NewProperty builds a property from a raw neutral-mapping value,
// inferring its type lazily.
func NewProperty(name string, raw interface{}) *Property {
	return &Property{Name: name, Value: InferValue(raw), dirty: true}
}

// Clean marks the property as synced.
func (p *Property) Clean() { p.dirty = false }

// Dirty reports whether the property changed since the last sync.
func (p *Property) Dirty() bool { return p.dirty }

// Set assigns a new value, marking the property dirty until the next
// sync.
func (p *Property) Set(v Value) {
	p.Value = v
	p.dirty = true
}

// Clone returns an independent copy of the property.
func (p *Property) Clone() *Property {
	items := make([]interface{}, len(p.Value.items))
	copy(items, p.Value.items)
	return &Property{
		Name:  p.Name,
		Value: Value{ptype: p.Value.ptype, items: items},
		dirty: p.dirty,
	}
}
