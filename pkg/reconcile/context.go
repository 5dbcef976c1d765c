package reconcile

import "github.com/vango-dev/bardfile/pkg/dom"

// renderContext carries the state of one render call through the
// materializer, reconciler and relocation pass.
type renderContext struct {
	e *Engine

	isSvg           bool
	hostTagName     string
	contentRef      dom.Node
	useNativeShadow bool

	checkSlotRelocate           bool
	checkSlotFallbackVisibility bool
	relocateNodes               []*relocation
}

// relocation is content found outside the slot outlet that claims it.
// slotRef stays nil while no rendered outlet claims the node.
type relocation struct {
	node    dom.Node
	slotRef dom.Node
}

func (c *renderContext) doc() dom.Document { return c.e.doc }

func (c *renderContext) findRelocation(n dom.Node) *relocation {
	for _, r := range c.relocateNodes {
		if r.node == n {
			return r
		}
	}
	return nil
}

// referenceNode is the node to insert before so n keeps its place: the
// original-location marker of relocated content, or n itself.
func (c *renderContext) referenceNode(n dom.Node) dom.Node {
	if m := c.e.peek(n).marker(); m != nil {
		return m
	}
	return n
}

func (c *renderContext) parentReferenceNode(n dom.Node) dom.Node {
	return c.referenceNode(n).ParentNode()
}
