package component

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/goleak"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counter renders how often it was rendered.
type counter struct {
	renders      atomic.Int32
	host         *Host
	disconnected atomic.Int32
	fail         bool
}

func (c *counter) Render() *vdom.VNode {
	n := c.renders.Add(1)
	if c.fail {
		panic("render failed on purpose")
	}
	return vdom.Host(vdom.Span(int(n)), vdom.Slot())
}

func (c *counter) Connected(h *Host) { c.host = h }
func (c *counter) Disconnected()     { c.disconnected.Add(1) }

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func seriesCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return len(f.GetMetric())
		}
	}
	return 0
}

func newScheduler(t *testing.T, opts ...Option) (*dom.MemoryDocument, *Scheduler) {
	t.Helper()
	doc := dom.NewDocument()
	return doc, NewScheduler(reconcile.New(doc), opts...)
}

func TestFlushRendersConnectedHosts(t *testing.T) {
	doc, s := newScheduler(t)
	el := doc.CreateElement("x-counter")
	c := &counter{}
	h := s.Attach(el, c)

	h.RequestUpdate()
	if s.Pending() != 0 {
		t.Fatal("unconnected hosts must not be queued")
	}

	h.Connect()
	if c.host != h {
		t.Error("Connected was not called with the host")
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := el.TextContent(); got != "1" {
		t.Errorf("TextContent = %q, want 1", got)
	}
}

func TestRequestUpdateCoalesces(t *testing.T) {
	doc, s := newScheduler(t)
	c := &counter{}
	h := s.Attach(doc.CreateElement("x-counter"), c)
	h.Connect()

	for i := 0; i < 5; i++ {
		h.RequestUpdate()
	}
	if got := s.Pending(); got != 1 {
		t.Errorf("Pending = %d, want 1", got)
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.renders.Load(); got != 1 {
		t.Errorf("renders = %d, want 1", got)
	}
}

// chain requests another update from its first render.
type chain struct{ counter }

func (c *chain) Render() *vdom.VNode {
	v := c.counter.Render()
	if c.renders.Load() == 1 {
		c.host.RequestUpdate()
	}
	return v
}

func TestFlushPicksUpUpdatesRequestedWhileRendering(t *testing.T) {
	doc, s := newScheduler(t)
	c := &chain{}
	h := s.Attach(doc.CreateElement("x-chain"), c)
	c.host = h
	h.Connect()

	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.renders.Load(); got != 2 {
		t.Errorf("renders = %d, want 2", got)
	}
}

func TestWorkerRendersInBackground(t *testing.T) {
	doc, s := newScheduler(t)
	rendered := make(chan error, 4)
	s.OnRender(func(h *Host, err error) { rendered <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx)
	defer s.Close()

	h := s.Attach(doc.CreateElement("x-counter"), &counter{})
	h.Connect()

	select {
	case err := <-rendered:
		if err != nil {
			t.Fatalf("render error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not render")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	_, s := newScheduler(t)
	if err := s.Close(); err != nil {
		t.Errorf("Close before Start = %v", err)
	}
	s.Start(context.Background())
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestRenderErrorsAreReturnedAndCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	doc, s := newScheduler(t, WithRegistry(reg), WithNamespace("test"))
	bad := s.Attach(doc.CreateElement("x-bad"), &counter{fail: true})
	good := s.Attach(doc.CreateElement("x-good"), &counter{})
	bad.Connect()
	good.Connect()

	err := s.Flush(context.Background())
	if !errors.HasCode(err, errors.ErrRenderPanic) {
		t.Fatalf("Flush = %v, want %s", err, errors.ErrRenderPanic)
	}
	if got := good.Element().TextContent(); got != "1" {
		t.Errorf("a failing host must not stop the others, got %q", got)
	}

	if got := counterValue(t, s.metrics.rendersTotal.WithLabelValues("x-bad", "error")); got != 1 {
		t.Errorf("renders_total(error) = %v, want 1", got)
	}
	if got := counterValue(t, s.metrics.rendersTotal.WithLabelValues("x-good", "success")); got != 1 {
		t.Errorf("renders_total(success) = %v, want 1", got)
	}
	if got := gaugeValue(t, s.metrics.queueDepth); got != 0 {
		t.Errorf("render_queue_depth = %v, want 0", got)
	}
	if n := seriesCount(t, reg, "test_render_duration_seconds"); n != 2 {
		t.Errorf("render_duration_seconds series = %d, want 2", n)
	}
}

func TestFlushStopsOnCanceledContext(t *testing.T) {
	doc, s := newScheduler(t)
	c := &counter{}
	h := s.Attach(doc.CreateElement("x-counter"), c)
	h.Connect()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Flush(ctx); err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Errorf("Flush = %v, want context canceled", err)
	}
	if c.renders.Load() != 0 {
		t.Error("rendered with a canceled context")
	}
	if got := s.Pending(); got != 1 {
		t.Errorf("Pending = %d, want the host queued again", got)
	}
}

func TestCanceledFlushKeepsUnrenderedHosts(t *testing.T) {
	doc, s := newScheduler(t)
	first, second := &counter{}, &counter{}
	h1 := s.Attach(doc.CreateElement("x-first"), first)
	h2 := s.Attach(doc.CreateElement("x-second"), second)
	h1.Connect()
	h2.Connect()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.OnRender(func(h *Host, err error) {
		if h == h1 {
			cancel()
		}
	})

	if err := s.Flush(ctx); err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("Flush = %v, want context canceled", err)
	}
	if first.renders.Load() != 1 || second.renders.Load() != 0 {
		t.Fatalf("renders = %d, %d, want 1, 0", first.renders.Load(), second.renders.Load())
	}
	if got := s.Pending(); got != 1 {
		t.Errorf("Pending = %d, want 1", got)
	}

	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := h2.Element().TextContent(); got != "1" {
		t.Errorf("TextContent = %q, want 1", got)
	}
	if first.renders.Load() != 1 {
		t.Error("the rendered host was rendered again")
	}
}

func TestDisconnectDropsPendingRender(t *testing.T) {
	doc, s := newScheduler(t)
	c := &counter{}
	h := s.Attach(doc.CreateElement("x-counter"), c)
	h.Connect()
	h.Disconnect()
	h.Disconnect()

	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.renders.Load() != 0 {
		t.Error("disconnected host was rendered")
	}
	if got := c.disconnected.Load(); got != 1 {
		t.Errorf("Disconnected calls = %d, want 1", got)
	}
	if h.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
}

// lister appends a light-DOM item before every render and shows them in its
// default slot.
type lister struct {
	items int
}

func (l *lister) WillRender(h *Host) {
	l.items++
	doc := h.Engine().Document()
	li := doc.CreateElement("li")
	li.AppendChild(doc.CreateTextNode(strings.Repeat("*", l.items)))
	h.Element().AppendChild(li)
}

func (l *lister) Render() *vdom.VNode {
	return vdom.Host(vdom.Ul(vdom.Slot()))
}

func TestWillRenderContentIsDistributed(t *testing.T) {
	doc, s := newScheduler(t)
	el := doc.CreateElement("x-list")
	l := &lister{}
	h := s.Attach(el, l)
	h.Connect()

	for i := 0; i < 2; i++ {
		if err := s.Flush(context.Background()); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		h.RequestUpdate()
	}

	ul := dom.QueryAll(el, dom.ByTag("ul"))
	if len(ul) != 1 {
		t.Fatalf("found %d <ul>, want 1", len(ul))
	}
	if got := len(dom.QueryAll(ul[0], dom.ByTag("li"))); got != 2 {
		t.Errorf("<li> in slot = %d, want 2", got)
	}
}

func TestDoWaitsForRenders(t *testing.T) {
	doc, s := newScheduler(t)
	el := doc.CreateElement("x-counter")
	h := s.Attach(el, &counter{})
	h.Connect()

	var ran bool
	s.Do(func() {
		ran = true
		h.RequestUpdate()
	})
	if !ran {
		t.Fatal("Do did not run fn")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending())
	}
}
