package reconcile

import (
	"slices"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// updateChildren reconciles the children of parentElm from oldCh to newCh.
//
// Two windows over the old and new lists are narrowed from both ends. Equal
// heads and equal tails are patched in place, a head matching the other
// list's tail is patched and moved, and anything else falls back to a key
// lookup in the old window. Whatever remains when one window is empty is
// bulk added or bulk removed.
func (c *renderContext) updateChildren(parentElm dom.Node, oldCh []*vdom.VNode, newVNode *vdom.VNode, newCh []*vdom.VNode) {
	// Matched entries are nulled out; the caller's slice stays intact.
	oldCh = slices.Clone(oldCh)

	oldStart, newStart := 0, 0
	oldEnd, newEnd := len(oldCh)-1, len(newCh)-1
	oldStartV, oldEndV := at(oldCh, oldStart), at(oldCh, oldEnd)
	newStartV, newEndV := at(newCh, newStart), at(newCh, newEnd)

	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case oldStartV == nil:
			oldStart++
			oldStartV = at(oldCh, oldStart)

		case oldEndV == nil:
			oldEnd--
			oldEndV = at(oldCh, oldEnd)

		case newStartV == nil:
			newStart++
			newStartV = at(newCh, newStart)

		case newEndV == nil:
			newEnd--
			newEndV = at(newCh, newEnd)

		case vdom.SameNode(oldStartV, newStartV):
			c.patch(oldStartV, newStartV)
			oldStart++
			newStart++
			oldStartV, newStartV = at(oldCh, oldStart), at(newCh, newStart)

		case vdom.SameNode(oldEndV, newEndV):
			c.patch(oldEndV, newEndV)
			oldEnd--
			newEnd--
			oldEndV, newEndV = at(oldCh, oldEnd), at(newCh, newEnd)

		case vdom.SameNode(oldStartV, newEndV):
			// Moved right.
			if oldStartV.Tag == vdom.SlotTag || newEndV.Tag == vdom.SlotTag {
				c.putBackInOriginalLocation(oldStartV.Elm.ParentNode(), false)
			}
			c.patch(oldStartV, newEndV)
			parentElm.InsertBefore(oldStartV.Elm, oldEndV.Elm.NextSibling())
			oldStart++
			newEnd--
			oldStartV, newEndV = at(oldCh, oldStart), at(newCh, newEnd)

		case vdom.SameNode(oldEndV, newStartV):
			// Moved left.
			if oldEndV.Tag == vdom.SlotTag || newStartV.Tag == vdom.SlotTag {
				c.putBackInOriginalLocation(oldEndV.Elm.ParentNode(), false)
			}
			c.patch(oldEndV, newStartV)
			parentElm.InsertBefore(oldEndV.Elm, oldStartV.Elm)
			oldEnd--
			newStart++
			oldEndV, newStartV = at(oldCh, oldEnd), at(newCh, newStart)

		default:
			idxInOld := -1
			for i := oldStart; i <= oldEnd; i++ {
				if o := oldCh[i]; o != nil && o.Key != nil && vdom.KeysEqual(o.Key, newStartV.Key) {
					idxInOld = i
					break
				}
			}

			var node dom.Node
			if idxInOld >= 0 && oldCh[idxInOld].Tag == newStartV.Tag {
				elmToMove := oldCh[idxInOld]
				c.patch(elmToMove, newStartV)
				oldCh[idxInOld] = nil
				node = elmToMove.Elm
			} else {
				// A key match with another tag is a new node too.
				node = c.createElm(at(oldCh, newStart), newVNode, newStart, parentElm)
			}
			newStart++
			newStartV = at(newCh, newStart)

			if node != nil {
				c.parentReferenceNode(oldStartV.Elm).InsertBefore(node, c.referenceNode(oldStartV.Elm))
			}
		}
	}

	if oldStart > oldEnd {
		var before dom.Node
		if next := at(newCh, newEnd+1); next != nil {
			before = next.Elm
		}
		c.addVnodes(parentElm, before, newVNode, newCh, newStart, newEnd)
	} else if newStart > newEnd {
		c.removeVnodes(oldCh, oldStart, oldEnd)
	}
}

func at(list []*vdom.VNode, i int) *vdom.VNode {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}
