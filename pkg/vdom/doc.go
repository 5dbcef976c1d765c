// Package vdom provides the virtual DOM tree model used by the reconciler.
//
// A VNode describes one desired node: an element with attrs and children,
// a text node, or a slot outlet. Trees are built with H, or with the
// variadic element helpers layered on it:
//
//	Div(Class("media-preview"), Key(id),
//	    Strong("Choose ", Choose(multiple, "files", "file")),
//	    Slot(SlotName("title"), Span("fallback")),
//	    OnClick(handler),
//	)
//
// Adjacent primitive children are merged into a single text node, nil and
// boolean children are dropped, and class maps are normalized to a
// space-joined string.
//
// # Matching
//
// SameNode is the identity heuristic used when reconciling child lists:
// equal tags plus equal slot names (for slot outlets) or equal keys.
// Unkeyed siblings of the same tag always match positionally.
package vdom
