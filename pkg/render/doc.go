// Package render serializes DOM trees to HTML.
//
// It is used to pre-render components on the server: a host is rendered
// into an in-memory document by the reconciler and the result is written
// out as markup, including the comments that slot emulation relies on.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(host)
//
// Hosts rendered with a native shadow root can be written as declarative
// shadow DOM:
//
//	renderer := render.NewRenderer(render.RendererConfig{DeclarativeShadow: true})
//
// # Full Page Rendering
//
//	page := render.PageData{Body: host, Title: "Preview", LiveURL: "/live"}
//	err := renderer.RenderPage(w, page)
//
// StreamingRenderer does the same against an http.ResponseWriter and
// flushes after the head and the body.
//
// # Security
//
// Text content and attribute values are escaped. The text of script and
// style elements is written as-is.
package render
