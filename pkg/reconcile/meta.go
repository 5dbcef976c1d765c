package reconcile

import "github.com/vango-dev/bardfile/pkg/dom"

// nodeMeta is the engine's bookkeeping for one realized node.
type nodeMeta struct {
	hostTag      string   // tag of the host whose render created the node
	slotRef      bool     // the node is a slot outlet
	contentRef   dom.Node // content reference of the owning host
	slotName     string
	hasSlotName  bool
	origLoc      dom.Node // marker left where relocated content came from
	relocated    dom.Node // set on markers: the content they stand in for
	slotHost     string   // host whose slot currently holds the node
	isContentRef bool

	listeners       map[string]func()
	hiddenUnclaimed bool
}

// The accessors below accept a nil receiver so lookups of unknown nodes read
// as zero values.

func (m *nodeMeta) host() string {
	if m == nil {
		return ""
	}
	return m.hostTag
}

func (m *nodeMeta) isSlotRef() bool { return m != nil && m.slotRef }

func (m *nodeMeta) marker() dom.Node {
	if m == nil {
		return nil
	}
	return m.origLoc
}

func (m *nodeMeta) markerFor() dom.Node {
	if m == nil {
		return nil
	}
	return m.relocated
}

func (m *nodeMeta) name() (string, bool) {
	if m == nil {
		return "", false
	}
	return m.slotName, m.hasSlotName
}

func (e *Engine) peek(n dom.Node) *nodeMeta {
	if n == nil {
		return nil
	}
	return e.meta[n]
}

func (e *Engine) metaOf(n dom.Node) *nodeMeta {
	m := e.meta[n]
	if m == nil {
		m = &nodeMeta{}
		e.meta[n] = m
	}
	return m
}

// forgetTree drops the bookkeeping of n and its descendants.
func (e *Engine) forgetTree(n dom.Node) {
	dom.Walk(n, func(c dom.Node) bool {
		delete(e.meta, c)
		return true
	})
}
