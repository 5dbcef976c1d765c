package bardfile

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/vango-dev/bardfile/pkg/blobs"
)

// Upload states, also used as the direct-upload--<state> class.
const (
	StatePending  = "pending"
	StateComplete = "complete"
	StateError    = "error"
)

// File is one file attached to a field.
type File struct {
	// ID identifies the file for keyed rendering and upload events.
	ID       string
	Name     string
	Src      string
	MimeType string
	Size     int64
	State    string
	Percent  int
	SignedID string
	// Error is the last direct-upload error, if any.
	Error string
}

// Upload is a file picked in the browser, before it is uploaded.
type Upload struct {
	Name string
	Size int64
	// Src is an object URL for previews.
	Src string
}

// Properties describe an already uploaded file declared in markup.
type Properties struct {
	Name     string
	Src      string
	MimeType string
	SignedID string
}

// FileFromUpload creates a pending file, deriving its MIME type from the
// name's extension.
func FileFromUpload(u Upload) File {
	return File{
		ID:       uuid.NewString(),
		Name:     u.Name,
		Src:      u.Src,
		MimeType: mimeTypeOf(u.Name),
		Size:     u.Size,
		State:    StatePending,
		Percent:  0,
	}
}

// FileFromProperties creates a complete file. Its size is zero so it always
// passes the max size check.
func FileFromProperties(p Properties) File {
	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = mimeTypeOf(p.Name)
	}
	return File{
		ID:       uuid.NewString(),
		Name:     p.Name,
		Src:      p.Src,
		MimeType: mimeType,
		State:    StateComplete,
		Percent:  100,
		SignedID: p.SignedID,
	}
}

// FileFromBlob creates a complete file for a stored blob.
func FileFromBlob(info blobs.Info, src string) File {
	return File{
		ID:       uuid.NewString(),
		Name:     info.Filename,
		Src:      src,
		MimeType: info.ContentType,
		Size:     info.ByteSize,
		State:    StateComplete,
		Percent:  100,
		SignedID: info.SignedID,
	}
}

// DefaultBlobSrc links to the blob the way Active Storage redirects to it.
func DefaultBlobSrc(info blobs.Info) string {
	return fmt.Sprintf("/rails/active_storage/blobs/redirect/%s/%s", info.SignedID, info.Filename)
}

// Value is the form value of the file: its signed id.
func (f File) Value() string { return f.SignedID }

// mediaTypes pins the types previews depend on; the system MIME tables
// differ between hosts.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".pdf":  "application/pdf",
}

func mimeTypeOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

// previewKind picks the figure class for a MIME type.
func previewKind(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/png":
		return "image-preview"
	case "video/mp4":
		return "video-preview"
	default:
		return "missing-preview"
	}
}
