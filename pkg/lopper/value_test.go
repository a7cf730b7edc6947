package lopper

import "testing"

func TestParseLiteral(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want PropType
	}{
		{"quoted string", `"hello"`, TypeString},
		{"single u32 cell", "<1>", TypeU32},
		{"u32 cell list", "<1 2 3>", TypeU32List},
		{"comma string list", `"a", "b"`, TypeStringList},
		{"bare integer", "42", TypeU32},
		{"bare word", "okay", TypeString},
		{"empty", "", TypeEmpty},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := ParseLiteral(c.in)
			if v.Type() != c.want {
				t.Fatalf("ParseLiteral(%q).Type() = %s, want %s", c.in, v.Type(), c.want)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name    string
		v       Value
		literal string
		want    bool
	}{
		{"string match", NewStringValue("okay"), "okay", true},
		{"string mismatch", NewStringValue("okay"), "nope", false},
		{"u32 match", NewU32Value(42), "42", true},
		{"u32 hex literal", NewU32Value(16), "0x10", true},
		{"empty matches empty literal", NewEmptyValue(), "", true},
		{"stringlist membership", NewStringListValue([]string{"a", "b"}), "b", true},
		{"stringlist non-membership", NewStringListValue([]string{"a", "b"}), "c", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Equal(c.literal); got != c.want {
				t.Fatalf("Equal(%q) = %v, want %v", c.literal, got, c.want)
			}
		})
	}
}

func TestInferValueRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want PropType
	}{
		{"nil", nil, TypeEmpty},
		{"string", "hi", TypeString},
		{"int list all strings", []interface{}{"a", "b"}, TypeStringList},
		{"int list all u32", []interface{}{uint32(1), uint32(2)}, TypeU32List},
		{"mixed list", []interface{}{"a", uint32(1)}, TypeMixed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := InferValue(c.in)
			if v.Type() != c.want {
				t.Fatalf("InferValue(%v).Type() = %s, want %s", c.in, v.Type(), c.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if s := NewEmptyValue().String(); s != "" {
		t.Fatalf("empty value String() = %q, want empty", s)
	}
	if s := NewStringValue("hello").String(); s != "hello" {
		t.Fatalf("string value String() = %q, want hello", s)
	}
	if s := NewU32ListValue([]uint32{1, 2}).String(); s != "1 2" {
		t.Fatalf("u32 list String() = %q, want %q", s, "1 2")
	}
}
