package reconcile

import (
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// createElm materializes newParent.Children[childIndex] and its subtree.
// oldParent is only consulted to put back content of a slot wrapper that is
// being replaced at the same index.
func (c *renderContext) createElm(oldParent, newParent *vdom.VNode, childIndex int, parentElm dom.Node) dom.Node {
	v := newParent.Children[childIndex]

	if !c.useNativeShadow {
		c.checkSlotRelocate = true
		if v.Tag == vdom.SlotTag {
			if v.Children != nil {
				v.Kind = vdom.KindSlotFallback
			} else {
				v.Kind = vdom.KindSlotReference
			}
		}
	}

	var elm dom.Node
	switch {
	case v.IsText():
		elm = c.doc().CreateTextNode(v.Text)
		v.Elm = elm

	case v.Kind == vdom.KindSlotReference:
		elm = c.doc().CreateTextNode("")
		v.Elm = elm

	default:
		if !c.isSvg {
			c.isSvg = v.Tag == "svg"
		}
		ns, tag := dom.HTMLNamespace, v.Tag
		if c.isSvg {
			ns = dom.SVGNamespace
		}
		if v.Kind == vdom.KindSlotFallback {
			tag = "slot-fb"
		}
		el := c.doc().CreateElementNS(ns, tag)
		elm = el
		v.Elm = el
		if c.isSvg && v.Tag == "foreignObject" {
			c.isSvg = false
		}

		c.updateElement(nil, v)

		for i := range v.Children {
			if child := c.createElm(oldParent, v, i, el); child != nil {
				el.AppendChild(child)
			}
		}

		if v.Tag == "svg" {
			c.isSvg = false
		} else if v.Tag == "foreignObject" {
			c.isSvg = true
		}
	}

	m := c.e.metaOf(elm)
	m.hostTag = c.hostTagName
	if v.Kind.IsSlot() {
		m.slotRef = true
		m.contentRef = c.contentRef
		m.slotName = v.Name
		m.hasSlotName = true

		if oldParent != nil && childIndex < len(oldParent.Children) {
			old := oldParent.Children[childIndex]
			if old != nil && old.Tag == v.Tag && oldParent.Elm != nil {
				c.putBackInOriginalLocation(oldParent.Elm, false)
			}
		}
	}
	if _, ok := v.Attrs["slot"]; ok {
		// Rendered content addressed to a slot changes what the outlets show.
		c.checkSlotFallbackVisibility = true
	}
	return elm
}

// putBackInOriginalLocation moves relocated content found under parent back
// to its original-location marker and removes the marker.
func (c *renderContext) putBackInOriginalLocation(parent dom.Node, recursive bool) {
	c.e.tmpDisconnected.Add(1)
	defer c.e.tmpDisconnected.Add(-1)

	children := parent.ChildNodes()
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		if m := c.e.peek(child); m != nil && m.hostTag != c.hostTagName && m.origLoc != nil {
			if p := c.parentReferenceNode(child); p != nil {
				p.InsertBefore(child, m.origLoc)
			}
			m.origLoc.Remove()
			delete(c.e.meta, m.origLoc)
			m.origLoc = nil
			m.slotHost = ""

			// Restore the slot attribute so the content can be claimed again.
			if el, ok := dom.AsElement(child); ok && m.slotName != "" {
				if cur, _ := el.GetAttribute("slot"); cur != m.slotName {
					el.SetAttribute("slot", m.slotName)
				}
			}
			c.checkSlotRelocate = true
		}
		if recursive {
			c.putBackInOriginalLocation(child, recursive)
		}
	}
}

// addVnodes materializes vnodes[start..end] and inserts them before before.
func (c *renderContext) addVnodes(parentElm, before dom.Node, parentVNode *vdom.VNode, vnodes []*vdom.VNode, start, end int) {
	container := parentElm
	if m := c.e.peek(parentElm); m != nil && !m.slotRef && m.contentRef != nil {
		if p := m.contentRef.ParentNode(); p != nil {
			container = p
		}
	}
	if el, ok := dom.AsElement(container); ok && el.ShadowRoot() != nil && el.TagName() == c.hostTagName {
		container = el.ShadowRoot()
	}

	for ; start <= end; start++ {
		if vnodes[start] == nil {
			continue
		}
		child := c.createElm(nil, parentVNode, start, parentElm)
		if child == nil {
			continue
		}
		vnodes[start].Elm = child
		var ref dom.Node
		if before != nil {
			ref = c.referenceNode(before)
		}
		container.InsertBefore(child, ref)
	}
}

// removeVnodes removes vnodes[start..end] from the document, restoring any
// slotted content found inside them.
func (c *renderContext) removeVnodes(vnodes []*vdom.VNode, start, end int) {
	for i := start; i <= end; i++ {
		v := vnodes[i]
		if v == nil {
			continue
		}
		nullifyRefs(v)
		elm := v.Elm
		if elm == nil {
			continue
		}

		// Fallback content may have to reappear.
		c.checkSlotFallbackVisibility = true
		if m := c.e.peek(elm); m != nil && m.origLoc != nil {
			m.origLoc.Remove()
			delete(c.e.meta, m.origLoc)
		} else {
			c.putBackInOriginalLocation(elm, true)
		}

		elm.Remove()
		c.e.forgetTree(elm)
	}
}

func nullifyRefs(v *vdom.VNode) {
	if fn := toRef(v.Attrs["ref"]); fn != nil {
		fn(nil)
	}
	for _, child := range v.Children {
		if child != nil {
			nullifyRefs(child)
		}
	}
}
