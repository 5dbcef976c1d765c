package dom

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// MemoryDocument is an in-memory Document. Trees built from it behave like
// browser DOM trees for everything the reconciler touches, and every change
// is reported to the attached Recorders.
//
// Like the browser DOM, a tree is not safe for concurrent mutation.
type MemoryDocument struct {
	mu        sync.Mutex
	recorders []*Recorder
}

// NewDocument creates an empty in-memory document.
func NewDocument() *MemoryDocument {
	return &MemoryDocument{}
}

// Record starts recording mutations until the returned Recorder is stopped.
func (d *MemoryDocument) Record() *Recorder {
	r := &Recorder{}
	d.mu.Lock()
	d.recorders = append(d.recorders, r)
	d.mu.Unlock()
	r.stop = func() {
		d.mu.Lock()
		d.recorders = slices.DeleteFunc(d.recorders, func(x *Recorder) bool { return x == r })
		d.mu.Unlock()
	}
	return r
}

// Observe calls fn synchronously with every mutation applied after the
// call, until the returned function is called.
func (d *MemoryDocument) Observe(fn func(Mutation)) (stop func()) {
	r := d.Record()
	r.fn = fn
	return r.Stop
}

func (d *MemoryDocument) record(op Op, target Node, name, value string) {
	d.mu.Lock()
	recs := d.recorders
	d.mu.Unlock()
	for _, r := range recs {
		r.add(Mutation{Op: op, Target: target, Name: name, Value: value})
	}
}

func (d *MemoryDocument) CreateElement(tag string) Element {
	return d.CreateElementNS(HTMLNamespace, tag)
}

func (d *MemoryDocument) CreateElementNS(ns, tag string) Element {
	if ns == "" || ns == HTMLNamespace {
		ns = HTMLNamespace
		tag = strings.ToLower(tag)
	}
	e := &element{ns: ns, local: tag}
	e.node = node{doc: d, typ: ElementNode}
	e.self = e
	d.record(OpCreate, e, "", tag)
	return e
}

func (d *MemoryDocument) CreateTextNode(data string) Node {
	n := &node{doc: d, typ: TextNode, data: data}
	n.self = n
	d.record(OpCreate, n, "", data)
	return n
}

func (d *MemoryDocument) CreateComment(data string) Node {
	n := &node{doc: d, typ: CommentNode, data: data}
	n.self = n
	d.record(OpCreate, n, "", data)
	return n
}

func (d *MemoryDocument) IsStandardEvent(name string) bool {
	return standardEvents[name]
}

// node carries the tree structure shared by every node kind. self is the
// outermost value embedding it, so that interface results keep their
// concrete type.
type node struct {
	doc      *MemoryDocument
	self     Node
	typ      NodeType
	data     string
	parent   *node
	children []*node
}

type nodeBase interface{ base() *node }

func (n *node) base() *node { return n }

func baseOf(n Node) *node {
	if n == nil {
		return nil
	}
	b, ok := n.(nodeBase)
	if !ok {
		panic(fmt.Sprintf("dom: %T does not belong to a MemoryDocument", n))
	}
	return b.base()
}

func (n *node) NodeType() NodeType { return n.typ }

func (n *node) NodeName() string {
	switch n.typ {
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DocumentFragmentNode:
		return "#document-fragment"
	}
	if el, ok := n.self.(Element); ok {
		return el.TagName()
	}
	return ""
}

func (n *node) ParentNode() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

func (n *node) FirstChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0].self
}

func (n *node) LastChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1].self
}

func (n *node) index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.children, n)
}

func (n *node) NextSibling() Node {
	i := n.index()
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1].self
}

func (n *node) PreviousSibling() Node {
	i := n.index()
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1].self
}

func (n *node) ChildNodes() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c.self
	}
	return out
}

func (n *node) InsertBefore(child, ref Node) {
	c := baseOf(child)
	r := baseOf(ref)
	if r != nil && r.parent != n {
		panic("dom: reference node is not a child of this node")
	}
	if r == c {
		i := c.index()
		r = nil
		if i+1 < len(n.children) {
			r = n.children[i+1]
		}
	}
	for p := n; p != nil; p = p.parent {
		if p == c {
			panic("dom: cannot insert a node into its own subtree")
		}
	}
	moved := c.parent != nil
	if moved {
		c.parent.detach(c)
	}
	at := len(n.children)
	if r != nil {
		at = slices.Index(n.children, r)
	}
	n.children = slices.Insert(n.children, at, c)
	c.parent = n
	op := OpInsert
	if moved {
		op = OpMove
	}
	n.doc.record(op, c.self, "", "")
}

func (n *node) AppendChild(child Node) { n.InsertBefore(child, nil) }

func (n *node) RemoveChild(child Node) {
	c := baseOf(child)
	if c.parent != n {
		panic("dom: node to remove is not a child of this node")
	}
	n.detach(c)
	n.doc.record(OpRemove, c.self, "", "")
}

func (n *node) detach(c *node) {
	n.children = slices.DeleteFunc(n.children, func(x *node) bool { return x == c })
	c.parent = nil
}

func (n *node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n.self)
	}
}

func (n *node) TextContent() string {
	if n.typ == TextNode || n.typ == CommentNode {
		return n.data
	}
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		if c.typ == TextNode {
			b.WriteString(c.data)
		} else {
			c.collectText(b)
		}
	}
}

func (n *node) SetTextContent(s string) {
	if n.typ == TextNode || n.typ == CommentNode {
		n.SetData(s)
		return
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	if s != "" {
		t := &node{doc: n.doc, typ: TextNode, data: s, parent: n}
		t.self = t
		n.children = []*node{t}
	}
	n.doc.record(OpSetText, n.self, "textContent", s)
}

func (n *node) Data() string { return n.data }

func (n *node) SetData(s string) {
	n.data = s
	n.doc.record(OpSetText, n.self, "data", s)
}

type shadowRoot struct {
	node
	host *element
}

func (s *shadowRoot) Host() Element { return s.host }

type listener struct {
	event   string
	capture bool
	fn      Listener
}

type element struct {
	node
	ns        string
	local     string
	attrs     []Attribute
	props     map[string]any
	listeners []*listener
	shadow    *shadowRoot
}

func (e *element) TagName() string {
	if e.ns == HTMLNamespace {
		return strings.ToUpper(e.local)
	}
	return e.local
}

// LocalName is the tag name as it was created.
func (e *element) LocalName() string { return e.local }

func (e *element) NamespaceURI() string { return e.ns }

func (e *element) attrName(name string) string {
	if e.ns == HTMLNamespace {
		return strings.ToLower(name)
	}
	return name
}

func (e *element) findAttr(name string) int {
	name = e.attrName(name)
	for i, a := range e.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (e *element) findAttrNS(ns, local string) int {
	for i, a := range e.attrs {
		if a.Namespace == ns && localPart(a.Name) == local {
			return i
		}
	}
	return -1
}

func localPart(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func (e *element) GetAttribute(name string) (string, bool) {
	if i := e.findAttr(name); i >= 0 {
		return e.attrs[i].Value, true
	}
	return "", false
}

func (e *element) HasAttribute(name string) bool { return e.findAttr(name) >= 0 }

func (e *element) SetAttribute(name, value string) {
	e.setAttr(name, value)
	e.doc.record(OpSetAttribute, e, e.attrName(name), value)
}

func (e *element) setAttr(name, value string) {
	if i := e.findAttr(name); i >= 0 {
		e.attrs[i].Value = value
		return
	}
	e.attrs = append(e.attrs, Attribute{Name: e.attrName(name), Value: value})
}

func (e *element) RemoveAttribute(name string) {
	if e.removeAttr(name) {
		e.doc.record(OpRemoveAttribute, e, e.attrName(name), "")
	}
}

func (e *element) removeAttr(name string) bool {
	i := e.findAttr(name)
	if i < 0 {
		return false
	}
	e.attrs = slices.Delete(e.attrs, i, i+1)
	return true
}

func (e *element) SetAttributeNS(ns, name, value string) {
	if i := e.findAttrNS(ns, localPart(name)); i >= 0 {
		e.attrs[i].Value = value
	} else {
		e.attrs = append(e.attrs, Attribute{Namespace: ns, Name: name, Value: value})
	}
	e.doc.record(OpSetAttribute, e, name, value)
}

func (e *element) RemoveAttributeNS(ns, localName string) {
	i := e.findAttrNS(ns, localName)
	if i < 0 {
		return
	}
	name := e.attrs[i].Name
	e.attrs = slices.Delete(e.attrs, i, i+1)
	e.doc.record(OpRemoveAttribute, e, name, "")
}

func (e *element) Attributes() []Attribute {
	return append([]Attribute(nil), e.attrs...)
}

func (e *element) ClassList() ClassList { return classList{e} }

func (e *element) Style() Style { return style{e} }

func (e *element) Hidden() bool { return e.HasAttribute("hidden") }

func (e *element) SetHidden(hidden bool) {
	if e.Hidden() == hidden {
		return
	}
	if hidden {
		e.setAttr("hidden", "")
	} else {
		e.removeAttr("hidden")
	}
	e.doc.record(OpSetHidden, e, "hidden", strconv.FormatBool(hidden))
}

func (e *element) ShadowRoot() ShadowRoot {
	if e.shadow == nil {
		return nil
	}
	return e.shadow
}

func (e *element) AttachShadow() ShadowRoot {
	if e.shadow == nil {
		s := &shadowRoot{host: e}
		s.node = node{doc: e.doc, typ: DocumentFragmentNode}
		s.self = s
		e.shadow = s
	}
	return e.shadow
}

func (e *element) AddEventListener(event string, capture bool, fn Listener) func() {
	l := &listener{event: event, capture: capture, fn: fn}
	e.listeners = append(e.listeners, l)
	e.doc.record(OpAddListener, e, event, "")
	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		e.listeners = slices.DeleteFunc(e.listeners, func(x *listener) bool { return x == l })
		e.doc.record(OpRemoveListener, e, event, "")
	}
}

type phase int

const (
	capturing phase = iota
	atTarget
	bubbling
)

// DispatchEvent runs the capture, target and bubble phases along the
// element's ancestors, crossing shadow roots to their hosts. It reports
// whether the default action was not prevented.
func (e *element) DispatchEvent(ev *Event) bool {
	ev.Target = e
	var path []*element
	for p := e.parent; p != nil; p = p.parent {
		switch v := p.self.(type) {
		case *element:
			path = append(path, v)
		case *shadowRoot:
			path = append(path, v.host)
			p = &v.host.node
		}
	}
	for i := len(path) - 1; i >= 0 && !ev.stopped; i-- {
		path[i].fire(ev, capturing)
	}
	if !ev.stopped {
		e.fire(ev, atTarget)
	}
	if ev.Bubbles {
		for _, p := range path {
			if ev.stopped {
				break
			}
			p.fire(ev, bubbling)
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func (e *element) fire(ev *Event, ph phase) {
	for _, l := range slices.Clone(e.listeners) {
		if l.event != ev.Type {
			continue
		}
		if (ph == capturing && !l.capture) || (ph == bubbling && l.capture) {
			continue
		}
		ev.CurrentTarget = e
		l.fn(ev)
	}
}

// reflectedProps maps settable properties to the attribute they reflect.
var reflectedProps = map[string]string{
	"id": "id", "className": "class", "title": "title", "lang": "lang",
	"dir": "dir", "name": "name", "type": "type", "value": "value",
	"href": "href", "src": "src", "alt": "alt", "placeholder": "placeholder",
	"htmlFor": "for", "tabIndex": "tabindex", "download": "download",
	"target": "target", "rel": "rel", "accept": "accept", "role": "role",
	"width": "width", "height": "height", "slot": "slot",
}

var booleanProps = map[string]string{
	"hidden": "hidden", "disabled": "disabled", "checked": "checked",
	"selected": "selected", "multiple": "multiple", "required": "required",
	"readOnly": "readonly", "autofocus": "autofocus", "open": "open",
	"controls": "controls", "autoplay": "autoplay", "draggable": "draggable",
}

var readOnlyProps = map[string]bool{
	"tagName": true, "nodeName": true, "nodeType": true, "localName": true,
	"namespaceURI": true, "list": true, "shadowRoot": true,
}

func (e *element) HasProperty(name string) bool {
	if _, ok := reflectedProps[name]; ok {
		return true
	}
	if _, ok := booleanProps[name]; ok {
		return true
	}
	if readOnlyProps[name] || name == "textContent" || name == "innerText" {
		return true
	}
	_, ok := e.props[name]
	return ok
}

func (e *element) Property(name string) (any, bool) {
	if attr, ok := reflectedProps[name]; ok {
		v, _ := e.GetAttribute(attr)
		return v, true
	}
	if attr, ok := booleanProps[name]; ok {
		return e.HasAttribute(attr), true
	}
	switch name {
	case "textContent", "innerText":
		return e.TextContent(), true
	case "tagName", "nodeName":
		return e.TagName(), true
	case "localName":
		return e.local, true
	case "namespaceURI":
		return e.ns, true
	}
	v, ok := e.props[name]
	return v, ok
}

func (e *element) SetProperty(name string, value any) error {
	if readOnlyProps[name] {
		return fmt.Errorf("dom: cannot set read-only property %q of <%s>", name, e.local)
	}
	if attr, ok := booleanProps[name]; ok {
		on := truthy(value)
		if attr == "hidden" {
			e.SetHidden(on)
			return nil
		}
		if on {
			e.setAttr(attr, "")
		} else {
			e.removeAttr(attr)
		}
		e.doc.record(OpSetProperty, e, name, strconv.FormatBool(on))
		return nil
	}
	if attr, ok := reflectedProps[name]; ok {
		s := Stringify(value)
		e.setAttr(attr, s)
		e.doc.record(OpSetProperty, e, name, s)
		return nil
	}
	switch name {
	case "textContent", "innerText":
		e.SetTextContent(Stringify(value))
		return nil
	}
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
	e.doc.record(OpSetProperty, e, name, Stringify(value))
	return nil
}

// Stringify converts a property or attribute value to its string form the
// way the browser does for primitives. nil becomes the empty string.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

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
	case float64:
		return x != 0
	}
	return true
}

type classList struct{ e *element }

func (c classList) Values() []string {
	v, _ := c.e.GetAttribute("class")
	return strings.Fields(v)
}

func (c classList) Contains(token string) bool {
	return slices.Contains(c.Values(), token)
}

func (c classList) Add(tokens ...string) {
	cur := c.Values()
	var added []string
	for _, t := range tokens {
		if t == "" || slices.Contains(cur, t) {
			continue
		}
		cur = append(cur, t)
		added = append(added, t)
	}
	if len(added) == 0 {
		return
	}
	c.e.setAttr("class", strings.Join(cur, " "))
	for _, t := range added {
		c.e.doc.record(OpAddClass, c.e, "class", t)
	}
}

func (c classList) Remove(tokens ...string) {
	cur := c.Values()
	var removed []string
	for _, t := range tokens {
		if i := slices.Index(cur, t); i >= 0 {
			cur = slices.Delete(cur, i, i+1)
			removed = append(removed, t)
		}
	}
	if len(removed) == 0 {
		return
	}
	c.e.setAttr("class", strings.Join(cur, " "))
	for _, t := range removed {
		c.e.doc.record(OpRemoveClass, c.e, "class", t)
	}
}

type style struct{ e *element }

type declaration struct{ name, value string }

func (s style) decls() []declaration {
	text, _ := s.e.GetAttribute("style")
	var out []declaration
	for _, part := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, declaration{name, strings.TrimSpace(value)})
	}
	return out
}

func (s style) write(ds []declaration) {
	if len(ds) == 0 {
		s.e.removeAttr("style")
		return
	}
	s.e.setAttr("style", cssText(ds))
}

func cssText(ds []declaration) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.name + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}

// cssName converts a camelCase style member to its hyphenated property.
func cssName(name string) string {
	if strings.Contains(name, "-") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if 'A' <= r && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s style) SetProperty(name, value string) {
	if value == "" {
		s.RemoveProperty(name)
		return
	}
	name = cssName(name)
	ds := s.decls()
	i := slices.IndexFunc(ds, func(d declaration) bool { return d.name == name })
	if i >= 0 {
		ds[i].value = value
	} else {
		ds = append(ds, declaration{name, value})
	}
	s.write(ds)
	s.e.doc.record(OpSetStyle, s.e, name, value)
}

func (s style) RemoveProperty(name string) {
	name = cssName(name)
	ds := s.decls()
	i := slices.IndexFunc(ds, func(d declaration) bool { return d.name == name })
	if i < 0 {
		return
	}
	s.write(slices.Delete(ds, i, i+1))
	s.e.doc.record(OpSetStyle, s.e, name, "")
}

func (s style) Get(name string) string {
	name = cssName(name)
	for _, d := range s.decls() {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

func (s style) CSSText() string { return cssText(s.decls()) }
