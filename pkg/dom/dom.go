// Package dom defines the document-object-model shaped capability interface
// the reconciler is written against, and an in-memory implementation of it
// used for server-side pre-rendering and tests.
package dom

import "strings"

// NodeType mirrors the DOM nodeType constants the reconciler inspects.
type NodeType int

const (
	ElementNode          NodeType = 1
	TextNode             NodeType = 3
	CommentNode          NodeType = 8
	DocumentFragmentNode NodeType = 11
)

// Namespaces used when creating elements and namespaced attributes.
const (
	HTMLNamespace  = "http://www.w3.org/1999/xhtml"
	SVGNamespace   = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

// Node is the subset of the DOM Node interface the engine needs.
//
// InsertBefore with a nil reference appends. Inserting a node that already
// has a parent moves it.
type Node interface {
	NodeType() NodeType
	NodeName() string
	ParentNode() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PreviousSibling() Node
	// ChildNodes returns a snapshot; mutating the tree does not affect it.
	ChildNodes() []Node
	InsertBefore(child, ref Node)
	AppendChild(child Node)
	RemoveChild(child Node)
	Remove()
	TextContent() string
	SetTextContent(s string)
	// Data is the character data of text and comment nodes.
	Data() string
	SetData(s string)
}

// Attribute is one entry of an element's attribute list.
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// ClassList is the token-set view of the class attribute.
type ClassList interface {
	Add(tokens ...string)
	Remove(tokens ...string)
	Contains(token string) bool
	Values() []string
}

// Style is the inline style declaration of an element.
//
// Names containing a dash are used as-is; camelCase names are converted to
// their hyphenated CSS form. Setting an empty value removes the property.
type Style interface {
	SetProperty(name, value string)
	RemoveProperty(name string)
	Get(name string) string
	CSSText() string
}

// Listener handles a dispatched event.
type Listener func(ev *Event)

// Element is the subset of the DOM Element interface the engine needs.
type Element interface {
	Node
	TagName() string
	NamespaceURI() string

	GetAttribute(name string) (string, bool)
	HasAttribute(name string) bool
	SetAttribute(name, value string)
	RemoveAttribute(name string)
	SetAttributeNS(ns, name, value string)
	RemoveAttributeNS(ns, localName string)
	Attributes() []Attribute

	ClassList() ClassList
	Style() Style

	// HasProperty reports whether name is a settable member of the element.
	HasProperty(name string) bool
	Property(name string) (any, bool)
	// SetProperty fails for read-only members.
	SetProperty(name string, value any) error

	// AddEventListener registers fn and returns the function that removes it.
	AddEventListener(event string, capture bool, fn Listener) (remove func())
	DispatchEvent(ev *Event) bool

	Hidden() bool
	SetHidden(hidden bool)

	ShadowRoot() ShadowRoot
	AttachShadow() ShadowRoot
}

// ShadowRoot is a document fragment attached to a host element.
type ShadowRoot interface {
	Node
	Host() Element
}

// Document creates nodes.
type Document interface {
	CreateElement(tag string) Element
	CreateElementNS(ns, tag string) Element
	CreateTextNode(data string) Node
	CreateComment(data string) Node
	// IsStandardEvent reports whether the lower-case event name is a
	// built-in event of the platform.
	IsStandardEvent(name string) bool
}

// AsElement returns n as an Element when it is an element node.
func AsElement(n Node) (Element, bool) {
	if n == nil || n.NodeType() != ElementNode {
		return nil, false
	}
	el, ok := n.(Element)
	return el, ok
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		Walk(c, fn)
	}
}

// QueryAll returns every element below root (root excluded) matching pred.
func QueryAll(root Node, pred func(Element) bool) []Element {
	var out []Element
	for _, c := range root.ChildNodes() {
		Walk(c, func(n Node) bool {
			if el, ok := AsElement(n); ok && pred(el) {
				out = append(out, el)
			}
			return true
		})
	}
	return out
}

// ByTag matches elements by case-insensitive tag name.
func ByTag(tag string) func(Element) bool {
	return func(el Element) bool {
		return strings.EqualFold(el.TagName(), tag)
	}
}

// ByAttr matches elements whose attribute name equals value.
func ByAttr(name, value string) func(Element) bool {
	return func(el Element) bool {
		v, ok := el.GetAttribute(name)
		return ok && v == value
	}
}
