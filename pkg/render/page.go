package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vango-dev/bardfile/pkg/dom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is rendered inside a <main id="preview"> element.
	Body dom.Node

	// Title is the page title
	Title string

	// Styles contains inline CSS styles
	Styles []string

	// LiveURL is the WebSocket endpoint that pushes re-rendered preview
	// markup. No live script is written when empty.
	LiveURL string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\"en\">\n"); err != nil {
		return err
	}

	// Head
	if err := r.renderHead(w, page); err != nil {
		return err
	}

	// Body
	if _, err := w.Write([]byte("<body>\n")); err != nil {
		return err
	}

	if err := r.renderMain(w, page); err != nil {
		return err
	}

	if err := r.renderLiveScript(w, page); err != nil {
		return err
	}

	// Close body and html
	if _, err := w.Write([]byte("</body>\n</html>\n")); err != nil {
		return err
	}

	return nil
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := w.Write([]byte("<head>\n")); err != nil {
		return err
	}

	// Charset
	if _, err := w.Write([]byte(`  <meta charset="utf-8">` + "\n")); err != nil {
		return err
	}

	// Viewport
	if _, err := w.Write([]byte(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")); err != nil {
		return err
	}

	// Title
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	// Inline styles
	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	if _, err := w.Write([]byte("</head>\n")); err != nil {
		return err
	}

	return nil
}

// renderMain writes the preview container and the body tree.
func (r *Renderer) renderMain(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, `<main id="preview">`); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</main>\n")
	return err
}

// liveScript replaces the preview markup with every message received.
const liveScript = `(function(){
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + %s);
  ws.onmessage = function(e){ document.getElementById("preview").innerHTML = e.data; };
})();`

// renderLiveScript writes the live update client when page.LiveURL is set.
func (r *Renderer) renderLiveScript(w io.Writer, page PageData) error {
	if page.LiveURL == "" {
		return nil
	}
	url, err := json.Marshal(page.LiveURL)
	if err != nil {
		return fmt.Errorf("failed to marshal live url: %w", err)
	}
	_, err = fmt.Fprintf(w, "<script>"+liveScript+"</script>\n", url)
	return err
}
