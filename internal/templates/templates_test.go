package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/dom"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"single", false},
		{"gallery", false},
		{"documents", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if !errors.HasCode(err, errors.ErrInvalidConfig) {
					t.Errorf("Get(%q) error = %v, want E004", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q): %v", tt.name, err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	want := []string{"documents", "gallery", "single"}
	if diff := cmp.Diff(want, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplate_Create(t *testing.T) {
	tests := []struct {
		name   string
		fields int
		want   []string
	}{
		{"single", 1, []string{`name="user[avatar]"`, "required"}},
		{"gallery", 1, []string{`accepts="image,video"`, "multiple"}},
		{"documents", 2, []string{`accepts="pdf"`, `name="report[cover]"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, err := Get(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			cfg := Config{Title: "Uploads", Store: config.StoreBadger, DirectUpload: "/rails/active_storage/direct_uploads"}
			if err := tmpl.Create(dir, cfg); err != nil {
				t.Fatalf("Create: %v", err)
			}

			loaded, err := config.Load(dir)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := loaded.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if loaded.Preview.Title != "Uploads" {
				t.Errorf("Title = %q, want %q", loaded.Preview.Title, "Uploads")
			}
			if loaded.Blobs.Store != config.StoreBadger {
				t.Errorf("Store = %q, want %q", loaded.Blobs.Store, config.StoreBadger)
			}

			markup, err := os.ReadFile(loaded.MarkupPath())
			if err != nil {
				t.Fatalf("read markup: %v", err)
			}
			for _, want := range append(tt.want, `directupload="/rails/active_storage/direct_uploads"`) {
				if !strings.Contains(string(markup), want) {
					t.Errorf("form.html missing %q", want)
				}
			}

			doc := dom.NewDocument()
			root := doc.CreateElement("body")
			if err := dom.AppendMarkup(doc, root, string(markup)); err != nil {
				t.Fatalf("AppendMarkup: %v", err)
			}
			if got := len(dom.QueryAll(root, dom.ByTag("bard-file"))); got != tt.fields {
				t.Errorf("bard-file elements = %d, want %d", got, tt.fields)
			}
		})
	}
}

func TestTemplate_CreateDefaults(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("single")
	if err := tmpl.Create(dir, Config{}); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "bardfile.yaml"))
	if !strings.Contains(string(data), "store: memory") {
		t.Errorf("bardfile.yaml should default to the memory store:\n%s", data)
	}
	markup, _ := os.ReadFile(filepath.Join(dir, "form.html"))
	if strings.Contains(string(markup), "directupload") {
		t.Errorf("form.html should omit directupload:\n%s", markup)
	}
}

func TestTemplate_CreateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "form.html")
	if err := os.WriteFile(existing, []byte("<p>mine</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("gallery")
	err := tmpl.Create(dir, Config{})
	if !errors.HasCode(err, errors.ErrInvalidConfig) {
		t.Errorf("Create error = %v, want E004", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bardfile.yaml")); !os.IsNotExist(err) {
		t.Error("bardfile.yaml should not be written when form.html exists")
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "<p>mine</p>" {
		t.Errorf("form.html = %q, want it untouched", data)
	}
}

func TestTemplate_Paths(t *testing.T) {
	tmpl, _ := Get("documents")
	want := []string{"bardfile.yaml", "form.html"}
	if diff := cmp.Diff(want, tmpl.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}
}
