package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/bardfile/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it changes whitespace.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// DeclarativeShadow writes shadow roots as a leading
	// <template shadowrootmode="open"> child of their host. Without it
	// shadow content is not serialized.
	DeclarativeShadow bool

	// OmitComments drops comment nodes, including the content reference
	// and original-location markers left by slot emulation.
	OmitComments bool
}

// Renderer serializes DOM trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders n and its subtree to an HTML string.
func (r *Renderer) RenderToString(n dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams n and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, n dom.Node) error {
	return r.renderNode(w, n, 0)
}

// RenderChildren renders the children of n without n itself.
func (r *Renderer) RenderChildren(w io.Writer, n dom.Node) error {
	return r.renderChildren(w, n, 0)
}

func (r *Renderer) renderNode(w io.Writer, n dom.Node, depth int) error {
	if n == nil {
		return nil
	}

	switch n.NodeType() {
	case dom.ElementNode:
		el, _ := dom.AsElement(n)
		return r.renderElement(w, el, depth)
	case dom.TextNode:
		_, err := io.WriteString(w, escapeHTML(n.Data()))
		return err
	case dom.CommentNode:
		if r.config.OmitComments {
			return nil
		}
		_, err := fmt.Fprintf(w, "<!--%s-->", n.Data())
		return err
	case dom.DocumentFragmentNode:
		return r.renderChildren(w, n, depth)
	default:
		return fmt.Errorf("unknown node type: %d", n.NodeType())
	}
}

func (r *Renderer) renderChildren(w io.Writer, n dom.Node, depth int) error {
	for _, child := range n.ChildNodes() {
		if err := r.renderNode(w, child, depth); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderElement(w io.Writer, el dom.Element, depth int) error {
	tag := tagName(el)

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, el); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(tag) {
		r.newline(w)
		return nil
	}

	children := el.ChildNodes()
	shadow := el.ShadowRoot()
	withShadow := r.config.DeclarativeShadow && shadow != nil

	hasBlockChildren := (len(children) > 0 || withShadow) && !isInlineElement(tag)
	if hasBlockChildren {
		r.newline(w)
	}

	if withShadow {
		if r.config.Pretty {
			r.writeIndent(w, depth+1)
		}
		if _, err := io.WriteString(w, `<template shadowrootmode="open">`); err != nil {
			return err
		}
		r.newline(w)
		if err := r.renderChildren(w, shadow, depth+2); err != nil {
			return err
		}
		if r.config.Pretty {
			r.writeIndent(w, depth+1)
		}
		if _, err := io.WriteString(w, "</template>"); err != nil {
			return err
		}
		r.newline(w)
	}

	if isRawTextElement(tag) {
		for _, c := range children {
			if _, err := io.WriteString(w, c.TextContent()); err != nil {
				return err
			}
		}
	} else {
		for _, c := range children {
			if err := r.renderNode(w, c, depth+1); err != nil {
				return err
			}
		}
	}

	if hasBlockChildren && r.config.Pretty {
		r.writeIndent(w, depth)
	}
	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	r.newline(w)
	return nil
}

// renderAttributes writes attributes in document order. Empty boolean
// attributes are written as a bare name.
func (r *Renderer) renderAttributes(w io.Writer, el dom.Element) error {
	for _, a := range el.Attributes() {
		if a.Value == "" && isBooleanAttr(a.Name) {
			if _, err := io.WriteString(w, " "+a.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(a.Value)); err != nil {
			return err
		}
	}
	return nil
}

// tagName lower-cases HTML tags; foreign elements keep their case.
func tagName(el dom.Element) string {
	switch el.NamespaceURI() {
	case "", dom.HTMLNamespace:
		return strings.ToLower(el.TagName())
	}
	return el.TagName()
}

func (r *Renderer) newline(w io.Writer) {
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}
