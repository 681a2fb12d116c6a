package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dargueta/ds3fs/dserrors"
)

// Handler exposes a Service over HTTP, rooted at "/". GET returns a
// file's bytes, or a JSON directory listing if the path names a
// directory. PUT creates the path, using a trailing slash to mean
// "directory"; the request body becomes a file's contents. DELETE
// removes the path.
//
// Grounded on the teacher's general "thin driver in front of the
// primitives" layering; net/http is used directly rather than through a
// routing library since the teacher's own stack carries none and the
// three-verb surface here doesn't need one.
type Handler struct {
	svc *Service
}

// NewHandler wraps a Service as an http.Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, path)
	case http.MethodPut:
		h.handlePut(w, r, path)
	case http.MethodDelete:
		h.handleDelete(w, path)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, path string) {
	contents, entries, err := h.svc.Get(path)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(contents)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request, path string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.Put(path, body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleDelete(w http.ResponseWriter, path string) {
	if err := h.svc.Delete(path); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeError maps a dserrors sentinel to its HTTP status and writes the
// response.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case isErr(err, dserrors.ErrNotFound), isErr(err, dserrors.ErrInvalidInode):
		status = http.StatusNotFound
	case isErr(err, dserrors.ErrInvalidName), isErr(err, dserrors.ErrInvalidSize):
		status = http.StatusBadRequest
	case isErr(err, dserrors.ErrInvalidType),
		isErr(err, dserrors.ErrDirNotEmpty),
		isErr(err, dserrors.ErrUnlinkNotAllowed),
		isErr(err, dserrors.ErrNotEnoughSpace),
		isErr(err, dserrors.ErrAlreadyInProgress):
		status = http.StatusConflict
	}
	http.Error(w, strings.TrimSpace(err.Error()), status)
}

func isErr(err error, sentinel dserrors.DS3Error) bool {
	return errors.Is(err, sentinel)
}
