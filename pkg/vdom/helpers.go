package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return TextNode(content)
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Unless is the inverse of If.
func Unless(condition bool, node *VNode) *VNode {
	if !condition {
		return node
	}
	return nil
}

// Choose returns a when condition is true, b otherwise. Handy for the
// "file"/"files" style text switches in render functions.
func Choose[T any](condition bool, a, b T) T {
	if condition {
		return a
	}
	return b
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Key creates a key attribute for reconciliation. Strings and numbers are
// kept as they are; anything else is formatted with %v.
func Key(key any) Attr {
	switch key.(type) {
	case string, int, int64, float64:
		return attr("key", key)
	}
	return attr("key", fmt.Sprintf("%v", key))
}
