package preview

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/bardfile/pkg/bardfile"
	"github.com/vango-dev/bardfile/pkg/blobs"
	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/render"
)

// maxRequestBody limits JSON request bodies.
const maxRequestBody = 1 << 20

const previewCSS = `body{font-family:system-ui,sans-serif;margin:2rem}` +
	`.drag-media{display:block;border:2px dashed #bbb;padding:1rem;cursor:pointer}` +
	`.drag-media-dragover{border-color:#36c}` +
	`.validation-message{color:#c33}` +
	`.media-preview figure{display:inline-block;margin:.5rem}` +
	`.direct-upload__progress{height:4px;background:#36c}` +
	`.direct-upload--error{color:#c33}`

// uploadEvents maps the event names accepted by /files/{id}/events.
var uploadEvents = map[string]string{
	"initialize": bardfile.EventUploadInitialize,
	"start":      bardfile.EventUploadStart,
	"progress":   bardfile.EventUploadProgress,
	"error":      bardfile.EventUploadError,
	"end":        bardfile.EventUploadEnd,
}

type fileState struct {
	ID          string `json:"id"`
	Name        string `json:"filename"`
	ContentType string `json:"content_type"`
	ByteSize    int64  `json:"byte_size"`
	State       string `json:"state"`
	Progress    int    `json:"progress"`
	SignedID    string `json:"signed_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

type fieldState struct {
	Name              string      `json:"name"`
	Files             []fileState `json:"files"`
	Value             []string    `json:"value"`
	Valid             bool        `json:"valid"`
	ValidationMessage string      `json:"validation_message,omitempty"`
}

type addFilesRequest struct {
	Files []struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
		Src  string `json:"src"`
	} `json:"files"`
}

type uploadEventRequest struct {
	Event    string `json:"event"`
	Progress int    `json:"progress"`
	Error    string `json:"error"`
	SignedID string `json:"signed_id"`
}

func stateOf(f *bardfile.Field) fieldState {
	files := f.Files()
	st := fieldState{
		Name:              f.Name,
		Files:             make([]fileState, len(files)),
		Value:             f.Value(),
		Valid:             f.Validate() == nil,
		ValidationMessage: f.ValidationMessage(),
	}
	for i, file := range files {
		st.Files[i] = fileState{
			ID:          file.ID,
			Name:        file.Name,
			ContentType: file.MimeType,
			ByteSize:    file.Size,
			State:       file.State,
			Progress:    file.Percent,
			SignedID:    file.SignedID,
			Error:       file.Error,
		}
	}
	if st.Value == nil {
		st.Value = []string{}
	}
	return st
}

// target picks the field named by the "field" query parameter, or the
// first one.
func (s *Server) target(r *http.Request) (*component.Host, *bardfile.Field, bool) {
	name := r.URL.Query().Get("field")
	for _, h := range s.hosts {
		f, ok := h.Component().(*bardfile.Field)
		if ok && (name == "" || f.Name == name) {
			return h, f, true
		}
	}
	return nil, nil, false
}

// handlePage serves the complete preview page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := render.PageData{
		Title:  s.config.Preview.Title,
		Styles: []string{previewCSS},
	}
	if s.live != nil {
		page.LiveURL = "/live"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var err error
	s.sched.Do(func() {
		page.Body = s.root
		err = render.NewStreamingRenderer(w, render.RendererConfig{
			DeclarativeShadow: s.config.Preview.NativeShadow,
			OmitComments:      true,
		}).RenderPage(page)
	})
	if err != nil {
		s.logger.Warn("preview page failed", "error", err)
	}
}

// handleState reports the files and value of a field.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_, f, ok := s.target(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	writeJSON(w, http.StatusOK, stateOf(f))
}

// handleAddFiles attaches picked files, as the file input's change event
// would.
func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request) {
	_, f, ok := s.target(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	var req addFilesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "files must not be empty")
		return
	}
	uploads := make([]bardfile.Upload, len(req.Files))
	for i, file := range req.Files {
		if file.Name == "" || file.Size < 0 {
			writeError(w, http.StatusUnprocessableEntity, "every file needs a name and a non-negative size")
			return
		}
		uploads[i] = bardfile.Upload{Name: file.Name, Size: file.Size, Src: file.Src}
	}

	var err error
	s.sched.Do(func() { err = f.AddUploads(uploads...) })
	s.flush(r)

	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": f.ValidationMessage(),
			"field": stateOf(f),
		})
		return
	}
	writeJSON(w, http.StatusCreated, stateOf(f))
}

// handleRemoveFile detaches the file at the given index.
func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	_, f, ok := s.target(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be a number")
		return
	}

	var removed bool
	s.sched.Do(func() { removed = f.RemoveFile(index) })
	if !removed {
		writeError(w, http.StatusNotFound, "no file at index "+strconv.Itoa(index))
		return
	}
	s.flush(r)
	writeJSON(w, http.StatusOK, stateOf(f))
}

// handleUploadEvent dispatches a direct-upload event for one file. An end
// event without a signed id registers the file as a new blob.
func (s *Server) handleUploadEvent(w http.ResponseWriter, r *http.Request) {
	h, f, ok := s.target(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field")
		return
	}
	id := chi.URLParam(r, "id")
	files := f.Files()
	i := slices.IndexFunc(files, func(file bardfile.File) bool { return file.ID == id })
	if i < 0 {
		writeError(w, http.StatusNotFound, "unknown file "+id)
		return
	}

	var req uploadEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, ok := uploadEvents[req.Event]
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown event "+strconv.Quote(req.Event))
		return
	}

	detail := bardfile.UploadDetail{FileID: id, Progress: req.Progress, Error: req.Error, SignedID: req.SignedID}
	if name == bardfile.EventUploadEnd && detail.SignedID == "" {
		info, err := s.store.Put(r.Context(), blobs.Info{
			Filename:    files[i].Name,
			ContentType: files[i].MimeType,
			ByteSize:    files[i].Size,
		})
		if err != nil {
			s.logger.Error("blob registration failed", "file", files[i].Name, "error", err)
			writeError(w, http.StatusServiceUnavailable, "blob store unavailable")
			return
		}
		detail.SignedID = info.SignedID
	}

	s.sched.Do(func() {
		h.Element().DispatchEvent(dom.NewCustomEvent(name, detail))
	})
	s.flush(r)
	writeJSON(w, http.StatusOK, stateOf(f))
}

// flush renders what the request changed, so the response and the live
// clients see the same markup.
func (s *Server) flush(r *http.Request) {
	if err := s.sched.Flush(r.Context()); err != nil {
		s.logger.Debug("preview flush", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
