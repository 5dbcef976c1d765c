package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/bardfile/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// Title is the preview page title.
	Title string

	// Store is the blob store kind written to the config.
	Store string

	// DirectUpload is the direct upload URL of the generated fields.
	DirectUpload string
}

// Template represents a starter project.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"single":    singleTemplate(),
	"gallery":   galleryTemplate(),
	"documents": documentsTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New(errors.ErrInvalidConfig).
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: documents, gallery, single")
	}
	return tmpl, nil
}

// List returns all available template names in sorted order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the relative paths the template writes, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create writes the template into dir. Existing files are left alone and
// reported as an error before anything is written.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.Store == "" {
		cfg.Store = "memory"
	}
	for _, relPath := range t.Paths() {
		if _, err := os.Stat(filepath.Join(dir, relPath)); err == nil {
			return errors.New(errors.ErrInvalidConfig).
				WithDetail(relPath + " already exists in " + dir).
				WithSuggestion("Remove it or run init in an empty directory")
		}
	}

	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryConfig, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryConfig, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

const configFile = `preview:
  title: "{{.Title}}"
  markup: form.html
  live: true
blobs:
  store: {{.Store}}
  dir: .bardfile/blobs
  cacheTTL: 5m
`

// singleTemplate is one required avatar image.
func singleTemplate() *Template {
	return &Template{
		Name:        "single",
		Description: "One image field, e.g. an avatar",
		Files: map[string]string{
			"bardfile.yaml": configFile,
			"form.html": `<form action="/profile" method="post">
  <label for="avatar">Avatar</label>
  <bard-file name="user[avatar]" id="avatar" accepts="image" max="5MB"{{with .DirectUpload}} directupload="{{.}}"{{end}} required></bard-file>
  <button type="submit">Save</button>
</form>
`,
		},
	}
}

// galleryTemplate holds several images and videos.
func galleryTemplate() *Template {
	return &Template{
		Name:        "gallery",
		Description: "Several images and videos in one field",
		Files: map[string]string{
			"bardfile.yaml": configFile,
			"form.html": `<form action="/posts" method="post">
  <label for="media">Media</label>
  <bard-file name="post[media][]" id="media" accepts="image,video" max="50MB"{{with .DirectUpload}} directupload="{{.}}"{{end}} multiple></bard-file>
  <button type="submit">Publish</button>
</form>
`,
		},
	}
}

// documentsTemplate has a PDF field next to an optional cover image.
func documentsTemplate() *Template {
	return &Template{
		Name:        "documents",
		Description: "Required PDF documents with an optional cover image",
		Files: map[string]string{
			"bardfile.yaml": configFile,
			"form.html": `<form action="/reports" method="post">
  <label for="documents">Documents</label>
  <bard-file name="report[documents][]" id="documents" accepts="pdf" max="20MB"{{with .DirectUpload}} directupload="{{.}}"{{end}} multiple required></bard-file>
  <label for="cover">Cover</label>
  <bard-file name="report[cover]" id="cover" accepts="image" max="5MB"{{with .DirectUpload}} directupload="{{.}}"{{end}}></bard-file>
  <button type="submit">Send</button>
</form>
`,
		},
	}
}
