package vdom

import (
	"reflect"

	"github.com/vango-dev/bardfile/pkg/dom"
)

// NodeKind classifies a VNode.
type NodeKind uint8

const (
	KindElement       NodeKind = iota // <div>, <label>, etc.
	KindText                          // Plain text node
	KindSlotReference                 // Emulated <slot> without fallback content
	KindSlotFallback                  // Emulated <slot> with fallback content
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindSlotReference:
		return "SlotReference"
	case KindSlotFallback:
		return "SlotFallback"
	default:
		return "Unknown"
	}
}

// IsSlot reports whether the kind is one of the emulated slot outlets.
func (k NodeKind) IsSlot() bool {
	return k == KindSlotReference || k == KindSlotFallback
}

// HostTag is the tag of the host placeholder returned by component renders.
const HostTag = "#host"

// SlotTag is the slot outlet element name.
const SlotTag = "slot"

// VNode is the virtual DOM node.
type VNode struct {
	Kind     NodeKind // Node classification
	Tag      string   // Element tag name; empty for text and the root
	Text     string   // For KindText
	Children []*VNode // Child nodes; nil when there are none
	Attrs    Attrs    // Attributes, properties, styles, listeners
	Key      any      // Reconciliation key; nil when unset
	Name     string   // Slot name, only for slot outlets
	Host     bool     // Synthetic host wrapper
	Elm      dom.Node // Realized node, set by the reconciler
}

// Attrs holds attributes, properties and event handlers.
type Attrs map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "click", "dragover", etc.
	Handler any    // dom.Listener, func(*dom.Event) or func()
}

// IsText reports whether v is a text node.
func (v *VNode) IsText() bool {
	return v != nil && v.Kind == KindText
}

// IsHost reports whether v was built with the host placeholder tag.
func IsHost(v *VNode) bool {
	return v != nil && v.Tag == HostTag
}

// SameNode reports whether two VNodes describe the same logical node: equal
// tags, and then equal slot names for slot outlets or equal keys otherwise.
// Unkeyed siblings with the same tag always match.
func SameNode(a, b *VNode) bool {
	if a.Tag != b.Tag {
		return false
	}
	if a.Tag == SlotTag {
		return a.Name == b.Name
	}
	return KeysEqual(a.Key, b.Key)
}

// KeysEqual compares two keys; nil equals nil.
func KeysEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// newVNode mirrors the zero node of the builder: no attrs, no children.
func newVNode(tag string, text string, kind NodeKind) *VNode {
	return &VNode{Kind: kind, Tag: tag, Text: text}
}

// TextNode creates a text VNode.
func TextNode(text string) *VNode {
	return newVNode("", text, KindText)
}
