package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lcsc2kicad/internal/storage"
)

// FileHandler serves the generated library files read-only.
type FileHandler struct {
	store      storage.Provider
	symbolFile string
	dirs       map[string]string
}

// NewFileHandler creates a handler over the library store. symbolFile is
// the symbol container name; footprintDir and modelDir are its sibling
// directories.
func NewFileHandler(store storage.Provider, symbolFile, footprintDir, modelDir string) *FileHandler {
	return &FileHandler{
		store:      store,
		symbolFile: symbolFile,
		dirs: map[string]string{
			"footprints": footprintDir,
			"models":     modelDir,
		},
	}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns its path relative to the library root.
func (h *FileHandler) safeName(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return path.Join(dir, cleaned), nil
}

// ServeSymbols handles GET /files/symbols.
func (h *FileHandler) ServeSymbols(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.symbolFile)
}

// exts maps a file kind to the extensions it lists.
var exts = map[string][]string{
	"footprints": {".kicad_mod"},
	"models":     {".wrl", ".step"},
}

// ListFiles handles GET /files/{kind}: every footprint or model with its
// checksum.
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	dir, ok := h.dirs[kind]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown file kind"))
		return
	}
	files := []storage.Entry{}
	for _, ext := range exts[kind] {
		entries, err := h.store.List(dir, ext)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
			return
		}
		files = append(files, entries...)
	}
	slices.SortFunc(files, func(a, b storage.Entry) int { return strings.Compare(a.Path, b.Path) })
	writeJSON(w, http.StatusOK, FileListResponse{Kind: kind, Files: files})
}

// ServeFile handles GET /files/{kind}/{filename} for footprints and models.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	dir, ok := h.dirs[chi.URLParam(r, "kind")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown file kind"))
		return
	}
	rel, err := h.safeName(dir, chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.serve(w, r, rel)
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, rel string) {
	ok, err := h.store.Exists(rel)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	data, err := h.store.Read(rel)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
		return
	}
	http.ServeContent(w, r, path.Base(rel), time.Time{}, bytes.NewReader(data))
}
