package reconcile

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/vdom"
)

// newHost creates a connected, emulated-slot host whose light DOM is the
// given markup.
func newHost(t *testing.T, markup string) (*dom.MemoryDocument, *Engine, *HostRef) {
	t.Helper()
	doc := dom.NewDocument()
	el := doc.CreateElement("bard-card")
	if markup != "" {
		if err := dom.AppendMarkup(doc, el, markup); err != nil {
			t.Fatalf("AppendMarkup: %v", err)
		}
	}
	eng := New(doc)
	host := NewHostRef(el, false)
	eng.Connect(host)
	return doc, eng, host
}

func render(t *testing.T, eng *Engine, host *HostRef, tree *vdom.VNode) {
	t.Helper()
	if err := eng.RenderIntoHost(context.Background(), host, tree, host.VNode() == nil); err != nil {
		t.Fatalf("RenderIntoHost: %v", err)
	}
}

func find(t *testing.T, root dom.Node, tag string) dom.Element {
	t.Helper()
	found := dom.QueryAll(root, dom.ByTag(tag))
	if len(found) == 0 {
		t.Fatalf("no <%s> below <%s>", tag, root.NodeName())
	}
	return found[0]
}

func elementTags(n dom.Node) []string {
	var out []string
	for _, c := range n.ChildNodes() {
		if el, ok := dom.AsElement(c); ok {
			out = append(out, strings.ToLower(el.TagName()))
		}
	}
	return out
}

func TestConnectInsertsContentReference(t *testing.T) {
	_, eng, host := newHost(t, "<p>light</p>")
	eng.Connect(host)

	kids := host.Element.ChildNodes()
	if len(kids) != 2 || kids[0].NodeType() != dom.CommentNode {
		t.Fatalf("host children = %v, want the content reference first", kids)
	}
	if !eng.peek(kids[0]).isContentRef {
		t.Error("first comment is not marked as the content reference")
	}
}

func TestRenderIntoHostIsIdempotent(t *testing.T) {
	doc, eng, host := newHost(t, `<p>one</p><p>two</p><span slot="title">Title</span>`)
	build := func() *vdom.VNode {
		return vdom.Host(
			vdom.Class("ready"),
			vdom.H1(vdom.Slot(vdom.SlotName("title"), "Untitled")),
			vdom.Label(vdom.Slot(), vdom.Strong("Choose")),
			keyedList("a", "b"),
		)
	}
	render(t, eng, host, build())

	rec := doc.Record()
	defer rec.Stop()
	render(t, eng, host, build())

	if got := rec.Mutations(); len(got) != 0 {
		t.Errorf("second identical render = %v, want no mutations", got)
	}
}

func TestDefaultSlotKeepsDeclarationOrder(t *testing.T) {
	doc, eng, host := newHost(t, `<p id="p1"></p><p id="p2"></p>`)
	build := func() *vdom.VNode {
		return vdom.Host(vdom.Label(vdom.Slot(), vdom.Strong("Choose")))
	}
	render(t, eng, host, build())

	label := find(t, host.Element, "label")
	if diff := cmp.Diff([]string{"p", "p", "strong"}, elementTags(label)); diff != "" {
		t.Fatalf("label children mismatch (-want +got):\n%s", diff)
	}

	p3 := doc.CreateElement("p")
	p3.SetAttribute("id", "p3")
	host.Element.AppendChild(p3)
	render(t, eng, host, build())

	var ids []string
	for _, c := range label.ChildNodes() {
		if el, ok := dom.AsElement(c); ok && el.TagName() == "P" {
			id, _ := el.GetAttribute("id")
			ids = append(ids, id)
		}
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3"}, ids); diff != "" {
		t.Errorf("slotted order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"label"}, elementTags(host.Element)); diff != "" {
		t.Errorf("host children mismatch (-want +got):\n%s", diff)
	}
}

func TestSlotFallbackVisibilityRoundTrip(t *testing.T) {
	doc, eng, host := newHost(t, "")
	build := func() *vdom.VNode {
		return vdom.Host(vdom.Div(vdom.Slot(vdom.SlotName("x"), vdom.Span("fallback"))))
	}

	render(t, eng, host, build())
	fallback := find(t, host.Element, "slot-fb")
	if fallback.Hidden() {
		t.Fatal("fallback hidden with nothing distributed")
	}

	p := doc.CreateElement("p")
	p.SetAttribute("slot", "x")
	host.Element.AppendChild(p)
	render(t, eng, host, build())
	if !fallback.Hidden() {
		t.Error("fallback visible after content was distributed into its slot")
	}
	if p.ParentNode() != fallback.ParentNode() {
		t.Error("content was not moved next to its outlet")
	}

	p.Remove()
	render(t, eng, host, build())
	if fallback.Hidden() {
		t.Error("fallback still hidden after the distributed content went away")
	}
}

func TestRemovedSlotContentReshowsFallback(t *testing.T) {
	_, eng, host := newHost(t, "")
	withContent := vdom.Host(vdom.Div(
		vdom.Slot(vdom.SlotName("x"), "fallback"),
		vdom.Span(vdom.InSlot("x"), "content"),
	))
	render(t, eng, host, withContent)

	fallback := find(t, host.Element, "slot-fb")
	if !fallback.Hidden() {
		t.Fatal("fallback visible next to content for its slot")
	}

	render(t, eng, host, vdom.Host(vdom.Div(vdom.Slot(vdom.SlotName("x"), "fallback"))))
	if fallback.Hidden() {
		t.Error("removing the only slotted node must re-show the fallback")
	}
}

func TestUnclaimedContentIsHiddenUntilClaimed(t *testing.T) {
	_, eng, host := newHost(t, `<p slot="extra">later</p>`)
	p := find(t, host.Element, "p")

	render(t, eng, host, vdom.Host(vdom.Label(vdom.Slot())))
	if !p.Hidden() {
		t.Fatal("content no slot claims should be hidden")
	}

	render(t, eng, host, vdom.Host(vdom.Label(vdom.Slot(), vdom.Slot(vdom.SlotName("extra")))))
	if p.Hidden() {
		t.Error("claimed content should be visible again")
	}
	if p.ParentNode() != dom.Node(find(t, host.Element, "label")) {
		t.Error("claimed content was not moved into the label")
	}
}

func TestRemovedOutletPutsContentBack(t *testing.T) {
	_, eng, host := newHost(t, `<p>light</p>`)
	p := find(t, host.Element, "p")

	render(t, eng, host, vdom.Host(vdom.Div(vdom.Slot())))
	if p.ParentNode() == dom.Node(host.Element) {
		t.Fatal("content was not relocated")
	}

	render(t, eng, host, vdom.Host())
	if p.ParentNode() != dom.Node(host.Element) {
		t.Fatal("content was not put back into the host")
	}
	for _, c := range host.Element.ChildNodes() {
		if eng.peek(c).markerFor() != nil {
			t.Error("original-location marker left behind")
		}
	}

	render(t, eng, host, vdom.Host(vdom.Section(vdom.Slot())))
	if p.ParentNode().NodeName() != "SECTION" {
		t.Errorf("content parent = %s, want SECTION", p.ParentNode().NodeName())
	}
}

func TestHostAttributes(t *testing.T) {
	_, eng, host := newHost(t, "")
	host.Element.SetAttribute("name", "from-markup")
	host.Element.SetAttribute("title", "Upload")
	host.ReflectAttrs = []Reflection{{Prop: "title", Attribute: "data-title"}}

	render(t, eng, host, vdom.Host(vdom.Class("active"), vdom.Name("from-render")))

	checks := map[string]string{
		"class":      "active",
		"name":       "from-markup",
		"data-title": "Upload",
	}
	for name, want := range checks {
		if got, _ := host.Element.GetAttribute(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}

	render(t, eng, host, vdom.Host(vdom.Class("active"), vdom.Name("renamed")))
	if got, _ := host.Element.GetAttribute("name"); got != "renamed" {
		t.Errorf("name = %q, want renamed", got)
	}
}

func TestNativeShadowRender(t *testing.T) {
	doc := dom.NewDocument()
	el := doc.CreateElement("bard-card")
	eng := New(doc)
	host := NewHostRef(el, true)
	eng.Connect(host)

	err := eng.RenderIntoHost(context.Background(), host, func() *vdom.VNode {
		return vdom.Host(vdom.Class("x"), vdom.Div("inside"), vdom.Slot())
	}, true)
	if err != nil {
		t.Fatalf("RenderIntoHost: %v", err)
	}

	if diff := cmp.Diff([]string{"div", "slot"}, elementTags(el.ShadowRoot())); diff != "" {
		t.Errorf("shadow children mismatch (-want +got):\n%s", diff)
	}
	if !el.ClassList().Contains("x") {
		t.Error("host attrs should apply to the host element")
	}
	if el.FirstChild() != nil {
		t.Error("native shadow hosts get no content reference")
	}
}

func TestRenderPanicReturnsCodedError(t *testing.T) {
	_, eng, host := newHost(t, "")
	render(t, eng, host, vdom.Host(vdom.Div("before")))

	err := eng.RenderIntoHost(context.Background(), host, func() *vdom.VNode {
		panic("boom")
	}, false)
	if !errors.HasCode(err, errors.ErrRenderPanic) {
		t.Fatalf("err = %v, want %s", err, errors.ErrRenderPanic)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %q, want the panic value in the detail", err)
	}
	if eng.TmpDisconnected() {
		t.Error("TmpDisconnected left set after a failed render")
	}

	render(t, eng, host, vdom.Host(vdom.Div("after")))
	if got := host.Element.TextContent(); got != "after" {
		t.Errorf("TextContent = %q, want after", got)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	_, eng, host := newHost(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := eng.RenderIntoHost(ctx, host, vdom.Div(), true); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if host.VNode() != nil {
		t.Error("a canceled render must not touch the host")
	}
}

func TestRemoveSlottedDropsMarker(t *testing.T) {
	_, eng, host := newHost(t, "<p>a</p><p>b</p>")
	tree := func() *vdom.VNode { return vdom.Host(vdom.Div(vdom.Slot())) }
	render(t, eng, host, tree())

	div := find(t, host.Element, "div")
	first := find(t, div, "p")
	eng.RemoveSlotted(first)

	if first.ParentNode() != nil {
		t.Error("removed content still attached")
	}
	if eng.peek(first) != nil {
		t.Error("bookkeeping for removed content kept")
	}
	// content reference plus the marker of the remaining paragraph
	if got := len(host.Element.ChildNodes()); got != 2 {
		t.Errorf("host children = %d, want 2", got)
	}

	render(t, eng, host, tree())
	if got := elementTags(div); !cmp.Equal(got, []string{"p"}) {
		t.Errorf("div children = %v, want [p]", got)
	}
}

func textNodesWithChildren(n dom.Node) int {
	count := 0
	for _, c := range n.ChildNodes() {
		if c.NodeType() == dom.TextNode && len(c.ChildNodes()) > 0 {
			count++
		}
		count += textNodesWithChildren(c)
	}
	return count
}

func TestSlotGainsAndLosesFallback(t *testing.T) {
	doc, eng, host := newHost(t, "")
	bare := func() *vdom.VNode {
		return vdom.Host(vdom.Div(vdom.Slot(vdom.SlotName("x"))))
	}
	withFallback := func() *vdom.VNode {
		return vdom.Host(vdom.Div(vdom.Slot(vdom.SlotName("x"), vdom.Span("fallback"))))
	}

	render(t, eng, host, bare())
	render(t, eng, host, withFallback())

	fallback := find(t, host.Element, "slot-fb")
	if fallback.Hidden() {
		t.Error("fallback hidden with nothing distributed")
	}
	if got := host.Element.TextContent(); got != "fallback" {
		t.Errorf("TextContent = %q, want fallback", got)
	}
	if got := textNodesWithChildren(host.Element); got != 0 {
		t.Errorf("%d text nodes hold children", got)
	}

	p := doc.CreateElement("p")
	p.SetAttribute("slot", "x")
	p.SetTextContent("given")
	host.Element.AppendChild(p)
	render(t, eng, host, withFallback())
	if !fallback.Hidden() {
		t.Error("fallback visible next to content for its slot")
	}

	render(t, eng, host, bare())
	if got := dom.QueryAll(host.Element, dom.ByTag("slot-fb")); len(got) != 0 {
		t.Errorf("slot-fb left behind: %v", got)
	}
	div := find(t, host.Element, "div")
	if p.ParentNode() != dom.Node(div) {
		t.Fatal("content did not follow the new outlet")
	}
	if prev := p.PreviousSibling(); prev == nil || !eng.peek(prev).isSlotRef() {
		t.Error("content is not right after the outlet")
	}
	if got := host.Element.TextContent(); got != "given" {
		t.Errorf("TextContent = %q, want given", got)
	}
}

func TestMovedOutletKeepsItsContent(t *testing.T) {
	_, eng, host := newHost(t, "<p>slotted</p>")
	a := func() *vdom.VNode { return vdom.Span(vdom.Key("a")) }
	b := func() *vdom.VNode { return vdom.Span(vdom.Key("b")) }

	tests := []struct {
		name string
		tree *vdom.VNode
		want []string
	}{
		{"first", vdom.Host(vdom.Div(vdom.Slot(), a(), b())), []string{"p", "span", "span"}},
		{"to last", vdom.Host(vdom.Div(a(), b(), vdom.Slot())), []string{"span", "span", "p"}},
		{"back to first", vdom.Host(vdom.Div(vdom.Slot(), a(), b())), []string{"p", "span", "span"}},
	}
	for _, tt := range tests {
		render(t, eng, host, tt.tree)

		div := find(t, host.Element, "div")
		if diff := cmp.Diff(tt.want, elementTags(div)); diff != "" {
			t.Errorf("%s: div children mismatch (-want +got):\n%s", tt.name, diff)
		}
		p := find(t, div, "p")
		if prev := p.PreviousSibling(); prev == nil || !eng.peek(prev).isSlotRef() {
			t.Errorf("%s: slotted content is not right after its outlet", tt.name)
		}
	}
}

func TestNestedOutletCarriesItsContent(t *testing.T) {
	doc, eng, outer := newHost(t, "")
	render(t, eng, outer, vdom.Host(vdom.El("inner-card", vdom.Slot(vdom.SlotName("a")))))

	innerEl := find(t, outer.Element, "inner-card")
	outlet := innerEl.FirstChild()
	if !eng.peek(outlet).isSlotRef() {
		t.Fatal("inner host does not start with the outer outlet")
	}

	inner := NewHostRef(innerEl, false)
	eng.Connect(inner)
	span := doc.CreateElement("span")
	span.SetAttribute("slot", "a")
	innerEl.AppendChild(span)

	render(t, eng, inner, vdom.Host(vdom.Div(vdom.Slot())))

	div := find(t, innerEl, "div")
	if outlet.ParentNode() != dom.Node(div) {
		t.Fatal("outer outlet was not distributed into the inner slot")
	}
	if span.ParentNode() != dom.Node(div) {
		t.Fatal("content for the outer slot did not follow its outlet")
	}
	if span.Hidden() {
		t.Error("content for the outer slot was hidden as unclaimed")
	}
	if outlet.NextSibling() != dom.Node(span) {
		t.Error("content should sit right after the outer outlet")
	}
}

func TestFallbackVisibilityPanicClearsTmpDisconnected(t *testing.T) {
	doc, eng, host := newHost(t, "")
	build := func() *vdom.VNode {
		return vdom.Host(vdom.Div(vdom.Slot(vdom.SlotName("x"), "fallback")))
	}
	render(t, eng, host, build())
	fallback := find(t, host.Element, "slot-fb")

	stop := doc.Observe(func(m dom.Mutation) {
		if m.Op == dom.OpSetHidden && m.Target == dom.Node(fallback) {
			panic("observer failed")
		}
	})
	defer stop()

	p := doc.CreateElement("p")
	p.SetAttribute("slot", "x")
	host.Element.AppendChild(p)

	err := eng.RenderIntoHost(context.Background(), host, build(), false)
	if !errors.HasCode(err, errors.ErrRenderPanic) {
		t.Fatalf("err = %v, want %s", err, errors.ErrRenderPanic)
	}
	if eng.TmpDisconnected() {
		t.Error("TmpDisconnected left set after a panic while updating fallbacks")
	}
}
