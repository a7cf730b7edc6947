package lopper

import (
	"fmt"
	"strconv"
	"strings"
)

// PropType is the inferred type tag of a property value: type is
// inferred lazily from the value and may be forced when the property
// participates in a comparison or phandle substitution.
type PropType int

const (
	// TypeEmpty is a valueless boolean-style property (e.g. "okay;").
	TypeEmpty PropType = iota
	// TypeString is a single quoted string.
	TypeString
	// TypeStringList is a comma-separated list of quoted strings.
	TypeStringList
	// TypeBytes is a raw byte-array value ([ aa bb cc ]).
	TypeBytes
	// TypeU32 is a single unsigned 32-bit scalar (<1>).
	TypeU32
	// TypeU32List is a list of unsigned 32-bit scalars (<1 2 3>).
	TypeU32List
	// TypePhandleList is a list that contains at least one phandle
	// reference (&label or a bare integer in a phandle-described field).
	TypePhandleList
	// TypeMixed is a composite value that doesn't fit the other tags
	// cleanly (mixed cells and references, e.g. interrupts-extended).
	TypeMixed
)

// String renders the type tag for diagnostics.
func (t PropType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeString:
		return "string"
	case TypeStringList:
		return "stringlist"
	case TypeBytes:
		return "bytes"
	case TypeU32:
		return "u32"
	case TypeU32List:
		return "u32list"
	case TypePhandleList:
		return "phandle"
	case TypeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Value is the logical value of a Property: always a list internally,
// with scalars represented as a singleton. Type() is inferred once and
// cached; ForceType reclassifies it (used when a phandle substitution
// changes what a raw integer means).
type Value struct {
	ptype PropType
	items []interface{}
}

// NewEmptyValue returns the valueless boolean-style value.
func NewEmptyValue() Value {
	return Value{ptype: TypeEmpty}
}

// NewStringValue returns a single string value.
func NewStringValue(s string) Value {
	return Value{ptype: TypeString, items: []interface{}{s}}
}

// NewStringListValue returns a string-list value.
func NewStringListValue(ss []string) Value {
	items := make([]interface{}, len(ss))
	for i, s := range ss {
		items[i] = s
	}
	return Value{ptype: TypeStringList, items: items}
}

// NewU32Value returns a single u32 scalar value.
func NewU32Value(v uint32) Value {
	return Value{ptype: TypeU32, items: []interface{}{v}}
}

// NewU32ListValue returns a u32-list value.
func NewU32ListValue(vs []uint32) Value {
	items := make([]interface{}, len(vs))
	for i, v := range vs {
		items[i] = v
	}
	return Value{ptype: TypeU32List, items: items}
}

// NewBytesValue returns a raw byte-array value.
func NewBytesValue(b []byte) Value {
	return Value{ptype: TypeBytes, items: []interface{}{b}}
}

// NewPhandleValue returns a single phandle-reference value (0 = null).
func NewPhandleValue(ph uint32) Value {
	return Value{ptype: TypePhandleList, items: []interface{}{ph}}
}

// Type returns the value's inferred (or forced) type tag.
func (v Value) Type() PropType { return v.ptype }

// List returns the value's items; scalars come back as a one-element
// slice, since values are always logically a list.
func (v Value) List() []interface{} { return v.items }

// IsEmpty reports whether this is the valueless boolean-style property.
func (v Value) IsEmpty() bool { return v.ptype == TypeEmpty || len(v.items) == 0 }

// ForceType reclassifies the value, used when a comparison or phandle
// substitution needs a specific interpretation.
func (v Value) ForceType(t PropType) Value {
	v.ptype = t
	return v
}

// Scalar returns the single item of a scalar-typed value.
func (v Value) Scalar() (interface{}, bool) {
	if len(v.items) != 1 {
		return nil, false
	}
	return v.items[0], true
}

// AsU32 returns the value as a single uint32, forcing interpretation of
// ints/strings where unambiguous.
func (v Value) AsU32() (uint32, bool) {
	item, ok := v.Scalar()
	if !ok {
		return 0, false
	}
	switch n := item.(type) {
	case uint32:
		return n, true
	case int:
		return uint32(n), true
	case int64:
		return uint32(n), true
	case string:
		if i, err := strconv.ParseUint(n, 0, 32); err == nil {
			return uint32(i), true
		}
	}
	return 0, false
}

// AsString returns the value as a single string.
func (v Value) AsString() (string, bool) {
	item, ok := v.Scalar()
	if !ok {
		return "", false
	}
	s, ok := item.(string)
	return s, ok
}

// Equal implements the selector engine's property-comparison semantics
//: for scalars it's value equality after type coercion; for
// lists it's set-membership of the literal comparison value.
func (v Value) Equal(literal string) bool {
	switch v.ptype {
	case TypeEmpty:
		return literal == ""
	case TypeString:
		s, _ := v.AsString()
		return s == literal
	case TypeU32, TypePhandleList:
		n, ok := v.AsU32()
		if !ok {
			return false
		}
		lit, err := strconv.ParseUint(literal, 0, 32)
		if err != nil {
			return false
		}
		return uint64(n) == lit
	case TypeStringList, TypeU32List, TypeBytes, TypeMixed:
		for _, item := range v.items {
			if fmt.Sprintf("%v", item) == literal {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// String renders the value for diagnostics and "print" lops.
func (v Value) String() string {
	switch v.ptype {
	case TypeEmpty:
		return ""
	case TypeString:
		s, _ := v.AsString()
		return s
	default:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, " ")
	}
}

// InferValue parses a raw neutral-mapping value (as produced by a
// YAML/DTS front-end) into a typed Value, inferring its type lazily.
func InferValue(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NewEmptyValue()
	case string:
		return NewStringValue(v)
	case []byte:
		return NewBytesValue(v)
	case uint32:
		return NewU32Value(v)
	case int:
		return NewU32Value(uint32(v))
	case []interface{}:
		return inferListValue(v)
	case []string:
		return NewStringListValue(v)
	case []uint32:
		return NewU32ListValue(v)
	default:
		return Value{ptype: TypeMixed, items: []interface{}{raw}}
	}
}

func inferListValue(raw []interface{}) Value {
	if len(raw) == 0 {
		return NewEmptyValue()
	}
	allStr, allU32 := true, true
	for _, item := range raw {
		switch item.(type) {
		case string:
			allU32 = false
		case uint32, int:
			allStr = false
		default:
			allStr, allU32 = false, false
		}
	}
	if allStr {
		ss := make([]string, len(raw))
		for i, item := range raw {
			ss[i] = item.(string)
		}
		return NewStringListValue(ss)
	}
	if allU32 {
		us := make([]uint32, len(raw))
		for i, item := range raw {
			switch n := item.(type) {
			case uint32:
				us[i] = n
			case int:
				us[i] = uint32(n)
			}
		}
		return NewU32ListValue(us)
	}
	return Value{ptype: TypeMixed, items: raw}
}

// ParseLiteral performs the best-effort typed parse used by modify-lop
// assignment: integers, quoted strings, and list syntax.
func ParseLiteral(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewEmptyValue()
	}
	if strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") && len(s) >= 2 && !strings.Contains(s, "\",") {
		return NewStringValue(strings.Trim(s, "\""))
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		fields := strings.Fields(strings.Trim(s, "<>"))
		us := make([]uint32, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.ParseUint(f, 0, 32)
			if err != nil {
				return Value{ptype: TypeMixed, items: []interface{}{s}}
			}
			us = append(us, uint32(n))
		}
		if len(us) == 1 {
			return NewU32Value(us[0])
		}
		return NewU32ListValue(us)
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		ss := make([]string, len(parts))
		for i, p := range parts {
			ss[i] = strings.Trim(strings.TrimSpace(p), "\"")
		}
		return NewStringListValue(ss)
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return NewU32Value(uint32(n))
	}
	return NewStringValue(s)
}
