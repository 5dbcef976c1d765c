package dom

import "testing"

func TestParseFragment(t *testing.T) {
	doc := NewDocument()
	nodes, err := ParseFragment(doc, `<p slot="title">Hi <b>there</b></p><!-- note --><svg><use xlink:href="#i"></use></svg>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(nodes))
	}

	p, ok := AsElement(nodes[0])
	if !ok {
		t.Fatalf("first node is %T, want element", nodes[0])
	}
	if slot, _ := p.GetAttribute("slot"); slot != "title" {
		t.Errorf("slot = %q, want title", slot)
	}
	if got := p.TextContent(); got != "Hi there" {
		t.Errorf("TextContent() = %q, want %q", got, "Hi there")
	}
	if nodes[1].NodeType() != CommentNode {
		t.Errorf("second node type = %v, want comment", nodes[1].NodeType())
	}

	svg, _ := AsElement(nodes[2])
	if svg.NamespaceURI() != SVGNamespace {
		t.Errorf("svg namespace = %q", svg.NamespaceURI())
	}
	use, _ := AsElement(svg.FirstChild())
	attrs := use.Attributes()
	if len(attrs) != 1 || attrs[0].Namespace != XLinkNamespace || attrs[0].Name != "xlink:href" {
		t.Errorf("use attributes = %+v", attrs)
	}
	if p.ParentNode() != nil {
		t.Error("parsed nodes should be detached")
	}
}
