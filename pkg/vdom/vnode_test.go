package vdom

import "testing"

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindSlotReference, "SlotReference"},
		{KindSlotFallback, "SlotFallback"},
		{NodeKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("NodeKind(%d).String() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestSameNode(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"unkeyed same tag", Div(), Div(), true},
		{"different tags", Div(), Span(), false},
		{"equal keys", Li(Key("a")), Li(Key("a")), true},
		{"different keys", Li(Key("a")), Li(Key("b")), false},
		{"keyed vs unkeyed", Li(Key("a")), Li(), false},
		{"numeric keys", Li(Key(1)), Li(Key(1)), true},
		{"string vs number key", Li(Key("1")), Li(Key(1)), false},
		{"slots by name", Slot(SlotName("x")), Slot(SlotName("x"), Key("k")), true},
		{"slots differ by name", Slot(SlotName("x")), Slot(), false},
		{"text nodes", Text("a"), Text("b"), true},
	}
	for _, tt := range tests {
		if got := SameNode(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SameNode = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeysEqualUncomparable(t *testing.T) {
	if KeysEqual([]int{1}, []int{1}) {
		t.Error("uncomparable keys should never be equal")
	}
	if !KeysEqual(nil, nil) {
		t.Error("nil keys should be equal")
	}
}

func TestIsHost(t *testing.T) {
	if !IsHost(Host(Class("x"))) {
		t.Error("Host() should be recognized")
	}
	if IsHost(Div()) || IsHost(nil) {
		t.Error("only host placeholders are hosts")
	}
}
