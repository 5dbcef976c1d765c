package vdom

import (
	"testing"

	"github.com/vango-dev/bardfile/pkg/dom"
)

func TestCreateElementArgs(t *testing.T) {
	clicked := false
	node := A(
		Class("remove-media"),
		[]Attr{Href("#"), {}},
		Attrs{"data-index": 2},
		OnClick(func(*dom.Event) { clicked = true }),
		nil,
		Span("Remove media"),
	)

	if node.Tag != "a" {
		t.Errorf("Tag = %q, want a", node.Tag)
	}
	if node.Attrs["class"] != "remove-media" || node.Attrs["href"] != "#" || node.Attrs["data-index"] != 2 {
		t.Errorf("Attrs = %v", node.Attrs)
	}
	handler, ok := node.Attrs["on-click"].(func(*dom.Event))
	if !ok {
		t.Fatalf("on-click = %T, want func(*dom.Event)", node.Attrs["on-click"])
	}
	handler(nil)
	if !clicked {
		t.Error("handler not stored as given")
	}
	if len(node.Children) != 1 || node.Children[0].Tag != "span" {
		t.Errorf("Children = %v", node.Children)
	}
}

func TestHostAndSlotHelpers(t *testing.T) {
	host := Host(Class("active"), Slot(), Slot(SlotName("title"), "Untitled"))
	if host.Tag != HostTag {
		t.Errorf("Tag = %q, want %q", host.Tag, HostTag)
	}
	named := host.Children[1]
	if named.Name != "title" {
		t.Errorf("slot Name = %q, want title", named.Name)
	}
	if len(named.Children) != 1 || named.Children[0].Text != "Untitled" {
		t.Errorf("fallback children = %v", named.Children)
	}
	if host.Children[0].Children != nil {
		t.Error("default slot should have no fallback children")
	}
}

func TestChoose(t *testing.T) {
	if got := Choose(true, "files", "file"); got != "files" {
		t.Errorf("Choose(true) = %q", got)
	}
	if got := Choose(false, "them", "it"); got != "it" {
		t.Errorf("Choose(false) = %q", got)
	}
}

func TestAttrEqual(t *testing.T) {
	fn := func() {}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"strings", "a", "a", true},
		{"string vs int", "1", 1, false},
		{"nil", nil, nil, true},
		{"nil vs value", nil, "", false},
		{"maps", map[string]any{"width": "10%"}, map[string]any{"width": "10%"}, true},
		{"maps differ", map[string]any{"width": "10%"}, map[string]any{"width": "20%"}, false},
		{"funcs never equal", fn, fn, false},
	}
	for _, tt := range tests {
		if got := AttrEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: AttrEqual = %v, want %v", tt.name, got, tt.want)
		}
	}
}
