package reconcile

import (
	"strings"

	"github.com/vango-dev/bardfile/pkg/dom"
)

// markSlotContentForRelocation walks the rendered tree below elm and, for
// every slot outlet, records the host content that belongs in it. Content no
// outlet claims is recorded without a target.
func (c *renderContext) markSlotContentForRelocation(elm dom.Node) {
	for _, child := range elm.ChildNodes() {
		cm := c.e.peek(child)
		if cm.isSlotRef() && cm.contentRef != nil && cm.contentRef.ParentNode() != nil {
			hostContent := cm.contentRef.ParentNode().ChildNodes()
			slotName := cm.slotName

			for j := len(hostContent) - 1; j >= 0; j-- {
				node := hostContent[j]
				nm := c.e.peek(node)
				if (nm != nil && (nm.isContentRef || nm.relocated != nil)) || nm.host() == cm.hostTag {
					continue
				}

				if !c.isNodeLocatedInSlot(node, slotName) {
					if c.findRelocation(node) == nil {
						c.relocateNodes = append(c.relocateNodes, &relocation{node: node})
					}
					continue
				}

				c.checkSlotFallbackVisibility = true
				nm = c.e.metaOf(node)
				if nm.slotName == "" {
					nm.slotName = slotName
					nm.hasSlotName = true
				}
				nm.slotHost = cm.hostTag
				if r := c.findRelocation(node); r != nil {
					r.slotRef = child
				} else {
					c.relocateNodes = append(c.relocateNodes, &relocation{node: node, slotRef: child})
				}

				if nm.slotRef {
					// A nested outlet lends its target to pending content of
					// the same slot.
					self := c.findRelocation(node)
					for _, r := range c.relocateNodes {
						if r.slotRef == nil && c.isNodeLocatedInSlot(r.node, nm.slotName) {
							r.slotRef = self.slotRef
						}
					}
				}
			}
		}

		if child.NodeType() == dom.ElementNode {
			c.markSlotContentForRelocation(child)
		}
	}
}

// isNodeLocatedInSlot matches elements by their slot attribute, where a
// missing attribute means the default slot, and other nodes by the slot
// name recorded for them.
func (c *renderContext) isNodeLocatedInSlot(n dom.Node, slotName string) bool {
	if el, ok := dom.AsElement(n); ok {
		v, has := el.GetAttribute("slot")
		if !has {
			return slotName == ""
		}
		return v == slotName
	}
	if name, ok := c.e.peek(n).name(); ok && name == slotName {
		return true
	}
	return slotName == ""
}

// relocateSlotContent runs after the patch: it records the content to move,
// leaves a marker at each node's original location, moves claimed content
// next to its outlet and hides unclaimed elements.
func (c *renderContext) relocateSlotContent(root dom.Node) (distributed bool) {
	c.e.tmpDisconnected.Add(1)
	defer c.e.tmpDisconnected.Add(-1)

	c.markSlotContentForRelocation(root)

	for _, r := range c.relocateNodes {
		m := c.e.metaOf(r.node)
		if m.origLoc != nil {
			continue
		}
		marker := c.doc().CreateTextNode("")
		c.e.metaOf(marker).relocated = r.node
		m.origLoc = marker
		r.node.ParentNode().InsertBefore(marker, r.node)
	}

	for _, r := range c.relocateNodes {
		node := r.node
		m := c.e.metaOf(node)

		if r.slotRef == nil {
			if el, ok := dom.AsElement(node); ok && !el.Hidden() {
				el.SetHidden(true)
				m.hiddenUnclaimed = true
			}
			continue
		}
		distributed = true

		if m.hiddenUnclaimed {
			if el, ok := dom.AsElement(node); ok {
				el.SetHidden(false)
			}
			m.hiddenUnclaimed = false
		}

		parentRef := r.slotRef.ParentNode()
		insertBefore := r.slotRef.NextSibling()

		// Keep declaration order among content relocated into the same slot:
		// go after the last earlier sibling that already sits there.
		for loc := m.origLoc.PreviousSibling(); loc != nil; loc = loc.PreviousSibling() {
			ref := c.e.peek(loc).markerFor()
			if ref == nil || ref.ParentNode() != parentRef {
				continue
			}
			if refName, _ := c.e.peek(ref).name(); refName != m.slotName {
				continue
			}
			next := ref.NextSibling()
			if next == nil || c.e.peek(next).markerFor() == nil {
				insertBefore = next
				break
			}
		}

		if (insertBefore == nil && parentRef != node.ParentNode()) || node.NextSibling() != insertBefore {
			if node != insertBefore {
				parentRef.InsertBefore(node, insertBefore)
			}
		}
	}
	return distributed
}

// updateFallbackSlotVisibility shows each fallback outlet below elm unless a
// sibling already provides content for its slot.
func (c *renderContext) updateFallbackSlotVisibility(elm dom.Node) {
	children := elm.ChildNodes()
	for _, child := range children {
		el, ok := dom.AsElement(child)
		if !ok {
			continue
		}
		if m := c.e.peek(child); m.isSlotRef() {
			el.SetHidden(c.slotIsFilled(m, child, children))
		}
		c.updateFallbackSlotVisibility(child)
	}
}

func (c *renderContext) slotIsFilled(slot *nodeMeta, outlet dom.Node, siblings []dom.Node) bool {
	for _, sib := range siblings {
		if sib == outlet {
			continue
		}
		sm := c.e.peek(sib)
		ownContent := sm.host() == slot.hostTag || (sm != nil && sm.slotHost == slot.hostTag)

		if ownContent && slot.slotName == "" {
			// Anything but blank text fills the default slot.
			switch sib.NodeType() {
			case dom.ElementNode:
				return true
			case dom.TextNode:
				if strings.TrimSpace(sib.TextContent()) != "" {
					return true
				}
			}
			continue
		}

		sibEl, ok := dom.AsElement(sib)
		if !ok {
			continue
		}
		if v, has := sibEl.GetAttribute("slot"); has && v == slot.slotName {
			return true
		}
		if name, has := sm.name(); has && name == slot.slotName {
			return true
		}
	}
	return false
}
