package render

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreamingRendererRenderPage(t *testing.T) {
	w := httptest.NewRecorder()
	sr := NewStreamingRenderer(w, RendererConfig{})

	if err := sr.RenderPage(PageData{Body: textBody("Streamed"), Title: "Streaming"}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}

	html := w.Body.String()
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("should start with DOCTYPE, got %q", html)
	}
	if !strings.Contains(html, `<main id="preview"><p>Streamed</p></main>`) {
		t.Errorf("should contain body content, got %q", html)
	}
	if !w.Flushed {
		t.Error("recorder was never flushed")
	}
}

// flushCounter counts flushes of a plain writer.
type flushCounter struct {
	io.Writer
	flushes int
}

func (w *flushCounter) Flush() { w.flushes++ }

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	fw := &flushCounter{Writer: &buf}
	sr := &StreamingRenderer{
		Renderer: NewRenderer(RendererConfig{}),
		flusher:  fw,
		w:        fw,
	}

	if err := sr.RenderPage(PageData{Body: textBody("Content"), LiveURL: "/live"}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if fw.flushes != 3 {
		t.Errorf("flushes = %d, want 3", fw.flushes)
	}
	if got := buf.String(); !strings.Contains(got, `location.host + "/live"`) {
		t.Errorf("live script missing:\n%s", got)
	}
}
