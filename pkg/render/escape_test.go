package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text", "report.pdf", "report.pdf"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"script tag", "<script>alert('xss')</script>", "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;"},
		{"double quote", `say "hello"`, "say &quot;hello&quot;"},
		{"unicode preserved", "Hello 世界 🌍", "Hello 世界 🌍"},
		{"newline kept", "a\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.want {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "drag-media", "drag-media"},
		{"quote breakout", `" onclick="x`, "&quot; onclick=&quot;x"},
		{"whitespace", "a\nb\tc\r", "a&#10;b&#9;c&#13;"},
		{"url", "/blobs/info/a?b=1&c=2", "/blobs/info/a?b=1&amp;c=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeAttr(tt.input); got != tt.want {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
