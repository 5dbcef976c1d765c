package reconcile

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// TracerName is the name of the tracer used for render spans.
const TracerName = "bardfile/reconcile"

// Engine reconciles VNode trees against one document.
type Engine struct {
	doc  dom.Document
	mu   sync.Mutex
	meta map[dom.Node]*nodeMeta

	// tmpDisconnected is non-zero while content is being relocated.
	tmpDisconnected atomic.Int32

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for render failures and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer sets the tracer for render spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// New creates an engine for doc. The tracer defaults to the global
// OpenTelemetry provider and the logger to slog.Default().
func New(doc dom.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:  doc,
		meta: make(map[dom.Node]*nodeMeta),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(TracerName)
	}
	return e
}

// Document returns the document the engine creates nodes in.
func (e *Engine) Document() dom.Document {
	return e.doc
}

// TmpDisconnected reports whether nodes are currently being moved by the
// relocation pass. Disconnect callbacks fired meanwhile should be ignored.
func (e *Engine) TmpDisconnected() bool {
	return e.tmpDisconnected.Load() > 0
}

// Patch updates old's realized node to match v without slot emulation.
// old must have been realized and the two must satisfy vdom.SameNode.
// Panics from the DOM propagate to the caller.
func (e *Engine) Patch(old, v *vdom.VNode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := &renderContext{e: e, useNativeShadow: true}
	c.patch(old, v)
}

// Mount materializes v and appends it to parent.
func (e *Engine) Mount(parent dom.Node, v *vdom.VNode) dom.Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := &renderContext{e: e, useNativeShadow: true}
	wrapper := &vdom.VNode{Kind: vdom.KindElement, Children: []*vdom.VNode{v}, Elm: parent}
	n := c.createElm(nil, wrapper, 0, parent)
	parent.AppendChild(n)
	return n
}

// Forget drops the engine's bookkeeping for n and its subtree, e.g. after a
// host was removed from the document for good.
func (e *Engine) Forget(n dom.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forgetTree(n)
}

// RemoveSlotted removes host content from wherever the relocation pass put
// it, together with the marker at its original location.
func (e *Engine) RemoveSlotted(n dom.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if marker := e.peek(n).marker(); marker != nil {
		marker.Remove()
		delete(e.meta, marker)
	}
	n.Remove()
	e.forgetTree(n)
}
