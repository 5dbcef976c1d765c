package vdom

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
)

// FunctionalComponent is a synchronous tree-producing function. H invokes it
// immediately with the attrs (never nil), the flattened children and the
// child utilities.
type FunctionalComponent func(attrs Attrs, children []*VNode, utils FunctionalUtilities) *VNode

// H builds one normalized VNode.
//
// tag is an element name, HostTag, or a FunctionalComponent. Children may be
// *VNode, strings, numbers, booleans, nil, or nested []any / []*VNode /
// []string. nil and booleans are dropped, and consecutive primitives are
// merged into a single text node.
func H(tag any, attrs Attrs, children ...any) *VNode {
	fn, functional := asFunctional(tag)

	var out []*VNode
	lastSimple := false
	push := func(child any) {
		text, simple := primitive(child)
		if simple && functional {
			out = append(out, TextNode(text))
			lastSimple = false
			return
		}
		if simple && lastSimple {
			out[len(out)-1].Text += text
			return
		}
		if simple {
			out = append(out, TextNode(text))
		} else {
			out = append(out, child.(*VNode))
		}
		lastSimple = simple
	}
	var walk func([]any)
	walk = func(c []any) {
		for _, child := range c {
			switch v := child.(type) {
			case nil, bool:
			case []any:
				walk(v)
			case []*VNode:
				for _, n := range v {
					if n != nil {
						push(n)
					}
				}
			case []string:
				for _, s := range v {
					push(s)
				}
			case *VNode:
				if v != nil {
					push(v)
				}
			default:
				push(v)
			}
		}
	}
	walk(children)

	var key any
	var slotName string
	if attrs != nil {
		attrs = maps.Clone(attrs)
		if k := attrs["key"]; truthy(k) {
			key = k
		}
		if n, ok := attrs["name"].(string); ok && n != "" {
			slotName = n
		}
		classData := attrs["class"]
		if !truthy(classData) {
			classData = attrs["className"]
		}
		if truthy(classData) {
			attrs["class"] = ClassString(classData)
		}
		delete(attrs, "className")
	}

	if functional {
		if attrs == nil {
			attrs = Attrs{}
		}
		return fn(attrs, out, utils)
	}

	name, _ := tag.(string)
	vnode := newVNode(name, "", KindElement)
	vnode.Attrs = attrs
	if len(out) > 0 {
		vnode.Children = out
	}
	vnode.Key = key
	vnode.Name = slotName
	return vnode
}

func asFunctional(tag any) (FunctionalComponent, bool) {
	switch f := tag.(type) {
	case FunctionalComponent:
		return f, f != nil
	case func(Attrs, []*VNode, FunctionalUtilities) *VNode:
		return f, f != nil
	}
	return nil, false
}

// primitive reports whether a child renders as text, and its string form.
func primitive(child any) (string, bool) {
	switch v := child.(type) {
	case *VNode:
		return "", false
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return fmt.Sprint(child), true
}

// ClassString normalizes a class value to a space-joined token string. Maps
// of class to condition keep the truthy keys in sorted order.
func ClassString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []string:
		return strings.Join(c, " ")
	case map[string]bool:
		keys := make([]string, 0, len(c))
		for k, on := range c {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		return strings.Join(keys, " ")
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k, on := range c {
			if truthy(on) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		return strings.Join(keys, " ")
	}
	return fmt.Sprint(v)
}

// truthy follows the loose truthiness used for attrs: nil, false, zero
// numbers and empty strings are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}

// ChildNode is the public view of a child VNode handed to functional
// component utilities.
type ChildNode struct {
	Tag      string
	Text     string
	IsText   bool
	Attrs    Attrs
	Children []*VNode
	Key      any
	Name     string
}

// FunctionalUtilities iterates the children of a functional component.
type FunctionalUtilities struct{}

var utils FunctionalUtilities

// ForEach calls fn with the public view of each child.
func (FunctionalUtilities) ForEach(children []*VNode, fn func(child ChildNode, i int)) {
	for i, c := range children {
		fn(toPublic(c), i)
	}
}

// Map converts each child to its public view, applies fn and converts the
// results back to VNodes.
func (FunctionalUtilities) Map(children []*VNode, fn func(child ChildNode, i int) ChildNode) []*VNode {
	out := make([]*VNode, len(children))
	for i, c := range children {
		out[i] = toPrivate(fn(toPublic(c), i))
	}
	return out
}

func toPublic(v *VNode) ChildNode {
	return ChildNode{
		Tag:      v.Tag,
		Text:     v.Text,
		IsText:   v.Kind == KindText,
		Attrs:    v.Attrs,
		Children: v.Children,
		Key:      v.Key,
		Name:     v.Name,
	}
}

func toPrivate(c ChildNode) *VNode {
	kind := KindElement
	if c.IsText {
		kind = KindText
	}
	v := newVNode(c.Tag, c.Text, kind)
	v.Attrs = c.Attrs
	v.Children = c.Children
	v.Key = c.Key
	v.Name = c.Name
	return v
}
