package bardfile

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/c2h5oh/datasize"

	"github.com/vango-dev/bardfile/pkg/blobs"
	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
)

// Field is the state of one <bard-file> element.
//
// The exported configuration fields are set before the field is attached to
// a host; files change through the methods, which may be called from any
// goroutine.
type Field struct {
	Name            string
	OriginalID      string
	DirectUploadURL string
	Multiple        bool
	Required        bool
	Accepts         []Accept
	Max             datasize.ByteSize
	Label           string
	Preview         bool

	// BlobSrc links files resolved from signed ids. Defaults to
	// DefaultBlobSrc.
	BlobSrc func(blobs.Info) string

	Logger *slog.Logger

	mu                sync.RWMutex
	files             []File
	highlighted       bool
	validationMessage string

	host  *component.Host
	stops []func()
	light lightDOM
}

// NewField creates a field with previews enabled.
func NewField(name string) *Field {
	return &Field{Name: name, Preview: true}
}

func (f *Field) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Connected implements component.Connector.
func (f *Field) Connected(h *component.Host) {
	f.mu.Lock()
	f.host = h
	listening := f.stops != nil
	f.mu.Unlock()

	if !listening {
		stops := f.listen(h.Element())
		f.mu.Lock()
		f.stops = stops
		f.mu.Unlock()
	}
}

// Disconnected implements component.Disconnector.
func (f *Field) Disconnected() {
	f.mu.Lock()
	stops := f.stops
	f.stops = nil
	f.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// changed schedules a render and fires a change event on the host.
func (f *Field) changed() {
	f.mu.RLock()
	h := f.host
	f.mu.RUnlock()
	if h == nil {
		return
	}
	h.RequestUpdate()
	h.Element().DispatchEvent(dom.NewEvent("change", true))
}

func (f *Field) requestUpdate() {
	f.mu.RLock()
	h := f.host
	f.mu.RUnlock()
	if h != nil {
		h.RequestUpdate()
	}
}

// Files returns a copy of the attached files.
func (f *Field) Files() []File {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.files)
}

// Highlighted reports whether something is being dragged over the field.
func (f *Field) Highlighted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.highlighted
}

// SetHighlighted toggles the drag-over state.
func (f *Field) SetHighlighted(on bool) {
	f.mu.Lock()
	same := f.highlighted == on
	f.highlighted = on
	f.mu.Unlock()
	if !same {
		f.requestUpdate()
	}
}

// AssignFiles attaches files. A multiple field appends them; a single field
// keeps only the last one.
func (f *Field) AssignFiles(files ...File) {
	f.mu.Lock()
	f.files = f.assigned(files)
	f.mu.Unlock()
	f.changed()
}

func (f *Field) assigned(files []File) []File {
	if f.Multiple {
		return append(slices.Clone(f.files), files...)
	}
	if len(files) == 0 {
		return slices.Clone(f.files)
	}
	return []File{files[len(files)-1]}
}

// AddUploads attaches newly picked files if they pass validation. Invalid
// picks leave the attached files unchanged; the validation message and the
// returned error tell why.
func (f *Field) AddUploads(uploads ...Upload) error {
	files := make([]File, len(uploads))
	for i, u := range uploads {
		files[i] = FileFromUpload(u)
	}

	f.mu.Lock()
	next := f.assigned(files)
	err := f.validateLocked(next)
	f.validationMessage = validationMessage(err)
	if err == nil {
		f.files = next
	}
	f.mu.Unlock()

	if err != nil {
		f.logger().Debug("uploads rejected", "field", f.Name, "error", err)
		f.requestUpdate()
		return err
	}
	f.changed()
	return nil
}

// RemoveFile detaches the file at index. Out of range indexes are ignored.
func (f *Field) RemoveFile(index int) bool {
	f.mu.Lock()
	if index < 0 || index >= len(f.files) {
		f.mu.Unlock()
		return false
	}
	f.files = slices.Delete(slices.Clone(f.files), index, index+1)
	f.mu.Unlock()
	f.changed()
	return true
}

func (f *Field) removeByID(id string) {
	f.mu.RLock()
	index := slices.IndexFunc(f.files, func(file File) bool { return file.ID == id })
	f.mu.RUnlock()
	f.RemoveFile(index)
}

// Value returns the signed ids of the attached files.
func (f *Field) Value() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.files))
	for i, file := range f.files {
		out[i] = file.Value()
	}
	return out
}

// SignedIDsFromValue reads signed ids from a comma separated string or a
// slice, dropping empty entries.
func SignedIDsFromValue(v any) []string {
	var ids []string
	switch t := v.(type) {
	case string:
		if t != "" {
			ids = strings.Split(t, ",")
		}
	case []string:
		ids = t
	case []any:
		for _, e := range t {
			ids = append(ids, fmt.Sprint(e))
		}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// SetValue replaces the attached files with the blobs named by v. Blobs that
// cannot be found are skipped and reported in the returned error.
func (f *Field) SetValue(ctx context.Context, store blobs.Store, v any) error {
	ids := SignedIDsFromValue(v)
	if slices.Equal(ids, f.Value()) {
		return nil
	}

	src := f.BlobSrc
	if src == nil {
		src = DefaultBlobSrc
	}
	var files []File
	var errs []error
	for _, id := range ids {
		info, err := store.Info(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, FileFromBlob(info, src(info)))
	}

	f.mu.Lock()
	f.files = nil
	f.files = f.assigned(files)
	f.mu.Unlock()
	f.changed()
	return stderrors.Join(errs...)
}

// updateFile applies fn to the file with the given id.
func (f *Field) updateFile(id string, fn func(*File)) bool {
	f.mu.Lock()
	i := slices.IndexFunc(f.files, func(file File) bool { return file.ID == id })
	if i < 0 {
		f.mu.Unlock()
		return false
	}
	files := slices.Clone(f.files)
	fn(&files[i])
	f.files = files
	f.mu.Unlock()
	f.requestUpdate()
	return true
}
