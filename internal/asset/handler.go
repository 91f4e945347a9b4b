package asset

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/vecdraw/internal/document"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadResponse is returned from the upload endpoint. Asset goes into the
// document's asset table; Image is ready to use as RasterImage data.
type UploadResponse struct {
	Asset document.Asset     `json:"asset"`
	Image document.ImageData `json:"image"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	store *Store
}

// NewHandler creates a new asset handler over store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Validate content type
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	stored, err := h.store.Save(file)
	if err != nil {
		slog.Error("save asset", "error", err)
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	meta, _ := json.Marshal(map[string]int{"width": stored.Width, "height": stored.Height})
	resp := UploadResponse{
		Asset: document.Asset{
			ID:   stored.ID,
			Type: "png",
			Name: header.Filename,
			URL:  "/assets/" + stored.File,
			Meta: meta,
		},
		Image: document.ImageData{
			AssetID: stored.ID,
			Width:   float64(stored.Width),
			Height:  float64(stored.Height),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Delete handles DELETE /api/assets/{assetId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(mux.Vars(r)["assetId"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("delete asset", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.store.Dir()))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}
