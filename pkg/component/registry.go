package component

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
)

// Constructor creates the component for an upgraded element. It may read
// and change the element's attributes.
type Constructor func(el dom.Element) (Component, error)

// Definition describes a custom element.
type Definition struct {
	Tag          string
	New          Constructor
	NativeShadow bool
	Reflect      []reconcile.Reflection
}

// Registry upgrades elements of defined tags into connected hosts.
type Registry struct {
	sched *Scheduler

	mu    sync.Mutex
	defs  map[string]Definition
	hosts map[dom.Element]*Host
	stop  func()
}

// NewRegistry creates a registry attaching hosts to sched. When the
// engine's document is observable, hosts whose element is removed from
// the tree are disconnected.
func NewRegistry(sched *Scheduler) *Registry {
	r := &Registry{
		sched: sched,
		defs:  make(map[string]Definition),
		hosts: make(map[dom.Element]*Host),
	}
	if obs, ok := sched.Engine().Document().(dom.Observable); ok {
		r.stop = obs.Observe(r.observe)
	}
	return r
}

// Define registers a custom element. Tags must contain a dash and may only
// be defined once.
func (r *Registry) Define(def Definition) error {
	tag := strings.ToLower(def.Tag)
	if !strings.Contains(tag, "-") {
		return fmt.Errorf("define %q: custom element names must contain a dash", def.Tag)
	}
	if def.New == nil {
		return fmt.Errorf("define %q: missing constructor", def.Tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[tag]; ok {
		return fmt.Errorf("define %q: already defined", def.Tag)
	}
	def.Tag = tag
	r.defs[tag] = def
	return nil
}

// Upgrade attaches and connects a host for every element below and
// including root whose tag is defined. Elements upgraded before are
// skipped. The new hosts are returned in document order.
func (r *Registry) Upgrade(root dom.Node) ([]*Host, error) {
	var candidates []dom.Element
	r.mu.Lock()
	dom.Walk(root, func(n dom.Node) bool {
		el, ok := dom.AsElement(n)
		if !ok {
			return true
		}
		if _, done := r.hosts[el]; done {
			return true
		}
		if _, ok := r.defs[strings.ToLower(el.TagName())]; ok {
			candidates = append(candidates, el)
		}
		return true
	})
	r.mu.Unlock()

	var hosts []*Host
	for _, el := range candidates {
		h, err := r.upgrade(el)
		if err != nil {
			return hosts, err
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (r *Registry) upgrade(el dom.Element) (*Host, error) {
	r.mu.Lock()
	def := r.defs[strings.ToLower(el.TagName())]
	r.mu.Unlock()

	c, err := def.New(el)
	if err != nil {
		return nil, fmt.Errorf("upgrade <%s>: %w", def.Tag, err)
	}
	var opts []HostOption
	if def.NativeShadow {
		opts = append(opts, WithNativeShadow())
	}
	if len(def.Reflect) > 0 {
		opts = append(opts, WithReflection(def.Reflect...))
	}
	h := r.sched.Attach(el, c, opts...)

	r.mu.Lock()
	r.hosts[el] = h
	r.mu.Unlock()

	h.Connect()
	return h, nil
}

// Lookup returns the host of an upgraded element.
func (r *Registry) Lookup(el dom.Element) (*Host, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hosts[el]
	return h, ok
}

// Hosts returns every upgraded host, in no particular order.
func (r *Registry) Hosts() []*Host {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		out = append(out, h)
	}
	return out
}

// Close stops observing the document.
func (r *Registry) Close() {
	if r.stop != nil {
		r.stop()
	}
}

// observe disconnects hosts that left the tree with a removed node. A moved
// host is disconnected and connected again, except while the engine is
// relocating slot content.
func (r *Registry) observe(m dom.Mutation) {
	if m.Op != dom.OpRemove && m.Op != dom.OpMove {
		return
	}
	if r.sched.Engine().TmpDisconnected() {
		return
	}
	r.mu.Lock()
	var affected []*Host
	for el, h := range r.hosts {
		if isInclusiveAncestor(m.Target, el) {
			affected = append(affected, h)
		}
	}
	r.mu.Unlock()

	for _, h := range affected {
		if !h.Connected() {
			continue
		}
		h.Disconnect()
		if m.Op == dom.OpMove {
			h.Connect()
		}
	}
}

func isInclusiveAncestor(a dom.Node, n dom.Node) bool {
	for ; n != nil; n = n.ParentNode() {
		if n == a {
			return true
		}
	}
	return false
}
