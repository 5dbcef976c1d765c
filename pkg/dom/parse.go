package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses markup in a <body> context and builds the resulting
// nodes with doc. The nodes are returned detached.
func ParseFragment(doc Document, markup string) ([]Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	out := make([]Node, 0, len(parsed))
	for _, p := range parsed {
		if n := convert(doc, p); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// AppendMarkup parses markup and appends the nodes to parent.
func AppendMarkup(doc Document, parent Node, markup string) error {
	nodes, err := ParseFragment(doc, markup)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

func convert(doc Document, p *html.Node) Node {
	switch p.Type {
	case html.TextNode:
		return doc.CreateTextNode(p.Data)
	case html.CommentNode:
		return doc.CreateComment(p.Data)
	case html.ElementNode:
	default:
		return nil
	}

	ns := HTMLNamespace
	if p.Namespace == "svg" {
		ns = SVGNamespace
	}
	el := doc.CreateElementNS(ns, p.Data)
	for _, a := range p.Attr {
		if a.Namespace == "xlink" {
			el.SetAttributeNS(XLinkNamespace, "xlink:"+a.Key, a.Val)
			continue
		}
		el.SetAttribute(a.Key, a.Val)
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(doc, c); n != nil {
			el.AppendChild(n)
		}
	}
	return el
}
