package reconcile

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// Reflection copies a host property into an attribute on every render.
type Reflection struct {
	Prop      string
	Attribute string
}

// HostRef is the render state of one host element.
type HostRef struct {
	Element dom.Element

	// NativeShadow renders into a shadow root instead of emulating slots in
	// the host's light DOM.
	NativeShadow bool

	ReflectAttrs []Reflection

	vnode          *vdom.VNode
	needsSlotCheck bool
	distributed    bool
}

// NewHostRef creates the render state for el.
func NewHostRef(el dom.Element, nativeShadow bool) *HostRef {
	return &HostRef{Element: el, NativeShadow: nativeShadow}
}

// VNode returns the tree of the last render, or nil before the first.
func (h *HostRef) VNode() *vdom.VNode {
	return h.vnode
}

// Connect prepares a host for rendering. Native shadow hosts get a shadow
// root; others get a content reference comment as first child, marking
// where their original light-DOM content lives. Connecting twice is a no-op.
func (e *Engine) Connect(host *HostRef) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if host.NativeShadow {
		host.Element.AttachShadow()
		return
	}
	hm := e.metaOf(host.Element)
	if hm.contentRef != nil {
		return
	}
	ref := e.doc.CreateComment("")
	e.metaOf(ref).isContentRef = true
	hm.contentRef = ref
	host.Element.InsertBefore(ref, host.Element.FirstChild())
}

// RenderIntoHost patches the host with a new tree and then relocates slot
// content and updates fallback visibility.
//
// tree is a *vdom.VNode or a func() *vdom.VNode and is consumed by the
// render. A tree built with vdom.Host applies its attrs to the host element;
// anything else is wrapped. initial adopts the current value of host
// attributes the tree also sets.
//
// A panic during the render is returned as an E001 error. DOM changes
// applied before the failure are kept.
func (e *Engine) RenderIntoHost(ctx context.Context, host *HostRef, tree any, initial bool) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tag := host.Element.TagName()

	_, span := e.tracer.Start(ctx, "reconcile.RenderIntoHost",
		trace.WithAttributes(
			attribute.String("bardfile.host", tag),
			attribute.Bool("bardfile.initial", initial),
		),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			be := errors.New(errors.ErrRenderPanic).WithDetailf("<%s>: %v", tag, r)
			if cause, ok := r.(error); ok {
				be.Wrap(cause)
			}
			err = be
			e.logger.Error("render failed", "host", tag, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	root := e.rootVNode(host, tree, initial)
	old := host.vnode
	if old == nil {
		old = &vdom.VNode{Kind: vdom.KindElement}
	}
	host.vnode = root

	var elm dom.Node = host.Element
	if sr := host.Element.ShadowRoot(); sr != nil {
		elm = sr
	}
	root.Elm = elm
	old.Elm = elm

	c := &renderContext{
		e:                 e,
		hostTagName:       tag,
		contentRef:        e.peek(host.Element).contentRefOrNil(),
		useNativeShadow:   host.NativeShadow,
		checkSlotRelocate: host.needsSlotCheck,
	}
	c.patch(old, root)
	host.needsSlotCheck = c.checkSlotRelocate

	if c.checkSlotRelocate && c.relocateSlotContent(elm) {
		host.distributed = true
	}
	if c.checkSlotFallbackVisibility || host.distributed {
		func() {
			e.tmpDisconnected.Add(1)
			defer e.tmpDisconnected.Add(-1)
			c.updateFallbackSlotVisibility(elm)
		}()
	}
	c.relocateNodes = nil

	span.SetStatus(codes.Ok, "")
	e.logger.Debug("rendered", "host", tag, "initial", initial)
	return nil
}

// rootVNode normalizes the render result into the host's root node.
func (e *Engine) rootVNode(host *HostRef, tree any, initial bool) *vdom.VNode {
	var result *vdom.VNode
	switch t := tree.(type) {
	case *vdom.VNode:
		result = t
	case func() *vdom.VNode:
		result = t()
	case nil:
	default:
		panic(fmt.Sprintf("unsupported render result %T", tree))
	}

	root := result
	if !vdom.IsHost(result) {
		root = vdom.H("", nil, result)
	}

	if len(host.ReflectAttrs) > 0 {
		if root.Attrs == nil {
			root.Attrs = vdom.Attrs{}
		}
		for _, r := range host.ReflectAttrs {
			v, _ := host.Element.Property(r.Prop)
			root.Attrs[r.Attribute] = v
		}
	}

	if initial && root.Attrs != nil {
		for _, key := range sortedKeys(root.Attrs) {
			if slices.Contains([]string{"key", "ref", "style", "class"}, key) || !host.Element.HasAttribute(key) {
				continue
			}
			if v, ok := host.Element.Property(key); ok {
				root.Attrs[key] = v
			} else {
				root.Attrs[key], _ = host.Element.GetAttribute(key)
			}
		}
	}

	root.Tag = ""
	root.Host = true
	return root
}

func (m *nodeMeta) contentRefOrNil() dom.Node {
	if m == nil {
		return nil
	}
	return m.contentRef
}
