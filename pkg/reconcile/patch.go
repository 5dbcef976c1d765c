package reconcile

import "github.com/vango-dev/bardfile/pkg/vdom"

// patch updates old's realized node to match v. The two must be the same
// node by vdom.SameNode; v takes over old's DOM node, except for an outlet
// that has to be replaced.
func (c *renderContext) patch(old, v *vdom.VNode) {
	if v.Tag == vdom.SlotTag && old.Kind.IsSlot() {
		want := vdom.KindSlotReference
		if v.Children != nil {
			want = vdom.KindSlotFallback
		}
		if want != old.Kind {
			c.replaceSlot(old, v)
			return
		}
		v.Kind = old.Kind
	}
	elm := old.Elm
	v.Elm = elm

	if v.IsText() {
		if m := c.e.peek(elm); m != nil && m.contentRef != nil {
			if holder := m.contentRef.ParentNode(); holder != nil {
				holder.SetTextContent(v.Text)
			}
		} else if !old.IsText() || old.Text != v.Text {
			elm.SetData(v.Text)
		}
		return
	}

	switch v.Tag {
	case "svg":
		c.isSvg = true
	case "foreignObject":
		c.isSvg = false
	}
	if v.Tag != vdom.SlotTag {
		c.updateElement(old, v)
	}

	switch {
	case old.Children != nil && v.Children != nil:
		c.updateChildren(elm, old.Children, v, v.Children)
	case v.Children != nil:
		if old.IsText() {
			elm.SetTextContent("")
		}
		c.addVnodes(elm, nil, v, v.Children, 0, len(v.Children)-1)
	case old.Children != nil:
		c.removeVnodes(old.Children, 0, len(old.Children)-1)
	}

	if c.isSvg && v.Tag == "svg" {
		c.isSvg = false
	}
}

// replaceSlot swaps an emulated outlet for a fresh one when it gains or loses
// fallback children. A bare outlet is a text node and cannot hold them.
func (c *renderContext) replaceSlot(old, v *vdom.VNode) {
	parent := old.Elm.ParentNode()
	if parent == nil {
		return
	}
	c.putBackInOriginalLocation(parent, false)

	holder := &vdom.VNode{Children: []*vdom.VNode{v}}
	if elm := c.createElm(nil, holder, 0, parent); elm != nil {
		parent.InsertBefore(elm, old.Elm)
	}
	c.removeVnodes([]*vdom.VNode{old}, 0, 0)
	// Keyed moves insert old.Elm after patching.
	old.Elm = v.Elm
}
