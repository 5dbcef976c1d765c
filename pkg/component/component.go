package component

import (
	"context"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// Component renders its current state. Render is called on the scheduler's
// goroutine; it must not block.
type Component interface {
	Render() *vdom.VNode
}

// Connector is implemented by components that need their host, e.g. to
// request updates from event handlers.
type Connector interface {
	Connected(h *Host)
}

// Disconnector is implemented by components that release resources when
// their element leaves the document.
type Disconnector interface {
	Disconnected()
}

// WillRenderer is implemented by components that update their host's light
// DOM before each render, so the render can distribute the new content.
type WillRenderer interface {
	WillRender(h *Host)
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithNativeShadow renders into a shadow root instead of emulating slots.
func WithNativeShadow() HostOption {
	return func(h *Host) {
		h.ref.NativeShadow = true
	}
}

// WithReflection copies component properties into host attributes on every
// render.
func WithReflection(r ...reconcile.Reflection) HostOption {
	return func(h *Host) {
		h.ref.ReflectAttrs = append(h.ref.ReflectAttrs, r...)
	}
}

// Host binds a component to an element.
type Host struct {
	comp  Component
	ref   *reconcile.HostRef
	sched *Scheduler

	// guarded by sched.mu
	queued    bool
	connected bool
	prepared  bool

	// only touched while rendering
	rendered bool
}

// Element returns the host element.
func (h *Host) Element() dom.Element { return h.ref.Element }

// Component returns the hosted component.
func (h *Host) Component() Component { return h.comp }

// Engine returns the engine rendering the host.
func (h *Host) Engine() *reconcile.Engine { return h.sched.eng }

// Connect prepares the element on first use and queues a render.
// Connecting a connected host does nothing.
func (h *Host) Connect() {
	s := h.sched
	s.mu.Lock()
	if h.connected {
		s.mu.Unlock()
		return
	}
	h.connected = true
	prepare := !h.prepared
	h.prepared = true
	s.mu.Unlock()

	if prepare {
		s.eng.Connect(h.ref)
	}
	if c, ok := h.comp.(Connector); ok {
		c.Connected(h)
	}
	h.RequestUpdate()
}

// Disconnect drops pending renders and notifies the component. It is
// ignored while the engine is relocating slot content, since those moves
// only detach the element for a moment.
func (h *Host) Disconnect() {
	if h.sched.eng.TmpDisconnected() {
		return
	}
	s := h.sched
	s.mu.Lock()
	if !h.connected {
		s.mu.Unlock()
		return
	}
	h.connected = false
	s.dequeueLocked(h)
	s.mu.Unlock()

	if d, ok := h.comp.(Disconnector); ok {
		d.Disconnected()
	}
}

// Connected reports whether the host is connected.
func (h *Host) Connected() bool {
	h.sched.mu.Lock()
	defer h.sched.mu.Unlock()
	return h.connected
}

// RequestUpdate queues a render. Requests made before the render runs are
// coalesced.
func (h *Host) RequestUpdate() {
	h.sched.enqueue(h)
}

func (h *Host) render(ctx context.Context) error {
	initial := !h.rendered
	if w, ok := h.comp.(WillRenderer); ok {
		w.WillRender(h)
	}
	if err := h.sched.eng.RenderIntoHost(ctx, h.ref, h.comp.Render, initial); err != nil {
		return err
	}
	h.rendered = true
	return nil
}
