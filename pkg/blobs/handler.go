package blobs

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/bardfile/internal/errors"
)

// maxRequestSize bounds the JSON body of a POST; blob bytes never travel
// through this handler.
const maxRequestSize = 64 << 10

// HandlerOption configures Handler.
type HandlerOption func(*handler)

// WithHandlerLogger sets the logger for store failures.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type handler struct {
	store  Store
	logger *slog.Logger
}

// createRequest is the body of POST /blobs, shaped like a direct-upload
// request.
type createRequest struct {
	Blob struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		ByteSize    int64  `json:"byte_size"`
	} `json:"blob"`
}

// Handler returns a router serving blob metadata from store. Mount it under
// a prefix:
//
//	r.Mount("/blobs", blobs.Handler(store))
func Handler(store Store, opts ...HandlerOption) http.Handler {
	h := &handler{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Get("/info/{signedID}", h.info)
	r.Post("/", h.create)
	return r
}

func (h *handler) info(w http.ResponseWriter, r *http.Request) {
	signedID := chi.URLParam(r, "signedID")
	info, err := h.store.Info(r.Context(), signedID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid blob JSON", http.StatusBadRequest)
		return
	}
	if req.Blob.Filename == "" {
		http.Error(w, "Missing filename", http.StatusUnprocessableEntity)
		return
	}
	if req.Blob.ByteSize < 0 {
		http.Error(w, "Negative byte_size", http.StatusUnprocessableEntity)
		return
	}
	if req.Blob.ContentType == "" {
		req.Blob.ContentType = "application/octet-stream"
	}

	info, err := h.store.Put(r.Context(), Info{
		Filename:    req.Blob.Filename,
		ContentType: req.Blob.ContentType,
		ByteSize:    req.Blob.ByteSize,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.HasCode(err, errors.ErrBlobNotFound) {
		http.Error(w, "Blob not found", http.StatusNotFound)
		return
	}
	h.logger.Error("blob store failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, "Blob store unavailable", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
