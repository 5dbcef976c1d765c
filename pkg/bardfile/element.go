package bardfile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"

	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/blobs"
	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
)

// Tag is the custom element name of the field.
const Tag = "bard-file"

// uploadedFileTag marks already uploaded files declared in markup.
const uploadedFileTag = "uploaded-file"

// Option configures fields created by Constructor.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	blobSrc       func(blobs.Info) string
	lookupTimeout time.Duration
}

// WithLogger sets the logger of created fields.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBlobSrc sets how files resolved from signed ids link to their blob.
func WithBlobSrc(fn func(blobs.Info) string) Option {
	return func(o *options) { o.blobSrc = fn }
}

// WithLookupTimeout bounds the blob lookups of a value attribute.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) { o.lookupTimeout = d }
}

// Definition registers <bard-file> elements whose signed ids resolve
// through store.
func Definition(store blobs.Store, opts ...Option) component.Definition {
	return component.Definition{Tag: Tag, New: Constructor(store, opts...)}
}

// Constructor creates fields from <bard-file> elements. The element's id
// moves to the file input. <uploaded-file> children become attached files,
// and a value attribute is resolved through store when it is not nil.
func Constructor(store blobs.Store, opts ...Option) component.Constructor {
	o := options{lookupTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	return func(el dom.Element) (component.Component, error) {
		f, err := FieldFromElement(el)
		if err != nil {
			return nil, err
		}
		f.Logger = o.logger
		f.BlobSrc = o.blobSrc

		if files := takeUploadedFiles(el); len(files) > 0 {
			f.AssignFiles(files...)
		}
		if value, ok := el.GetAttribute("value"); ok && store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), o.lookupTimeout)
			defer cancel()
			if err := f.SetValue(ctx, store, value); err != nil {
				f.logger().Warn("unresolved signed ids", "field", f.Name, "error", err)
			}
		}
		return f, nil
	}
}

// FieldFromElement reads a field's configuration from the attributes of el
// and removes its id.
func FieldFromElement(el dom.Element) (*Field, error) {
	attr := func(name string) string {
		v, _ := el.GetAttribute(name)
		return v
	}

	f := NewField(attr("name"))
	f.DirectUploadURL = attr("directupload")
	f.Multiple = el.HasAttribute("multiple")
	f.Required = el.HasAttribute("required")
	if v, ok := el.GetAttribute("preview"); ok {
		f.Preview = v != "false"
	}

	accepts, err := ParseAccepts(attr("accepts"))
	if err != nil {
		return nil, err
	}
	f.Accepts = accepts

	if raw := strings.TrimSpace(attr("max")); raw != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(raw)); err != nil {
			return nil, errors.New(errors.ErrInvalidConfig).
				WithDetailf("max %q is not a size", raw).
				WithSuggestion(`Give max in bytes or with a unit, e.g. "10MB"`).
				Wrap(err)
		}
		f.Max = size
	}

	if id, ok := el.GetAttribute("id"); ok {
		f.OriginalID = id
		el.RemoveAttribute("id")
	}
	f.Label = labelFor(el, f.OriginalID)
	return f, nil
}

// labelFor returns the text of the <label for=id> in el's tree.
func labelFor(el dom.Element, id string) string {
	if id == "" {
		return ""
	}
	var root dom.Node = el
	for root.ParentNode() != nil {
		root = root.ParentNode()
	}
	for _, label := range dom.QueryAll(root, dom.ByTag("label")) {
		if v, ok := label.GetAttribute("for"); ok && v == id {
			return strings.TrimSpace(label.TextContent())
		}
	}
	return ""
}

// takeUploadedFiles removes <uploaded-file> children from el and returns
// them as complete files.
func takeUploadedFiles(el dom.Element) []File {
	var files []File
	for _, child := range el.ChildNodes() {
		c, ok := dom.AsElement(child)
		if !ok || !strings.EqualFold(c.TagName(), uploadedFileTag) {
			continue
		}
		get := func(name string) string {
			v, _ := c.GetAttribute(name)
			return v
		}
		mimeType := get("mimetype")
		if mimeType == "" {
			mimeType = get("content-type")
		}
		files = append(files, FileFromProperties(Properties{
			Name:     get("filename"),
			Src:      get("src"),
			MimeType: mimeType,
			SignedID: get("value"),
		}))
		el.RemoveChild(child)
	}
	return files
}
