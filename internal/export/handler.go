package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/vecdraw/internal/document"
)

const maxUploadSize = 32 << 20 // 32MB

type Handler struct {
	rasterScale float64
	images      ImageSource
}

// NewHandler creates an export handler. images may be nil.
func NewHandler(rasterScale float64, images ImageSource) *Handler {
	return &Handler{rasterScale: rasterScale, images: images}
}

// Export renders a posted document in the format named by the route.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	format := strings.ToLower(mux.Vars(r)["format"])
	if !validFormat(format) {
		http.Error(w, "invalid format: must be svg, eps, pgf, or png", http.StatusBadRequest)
		return
	}

	var doc document.InDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}

	h.Render(w, r, format, &doc)
}

// Render writes doc in the given format as an attachment. The scene and
// raster scale come from optional query parameters.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request, format string, doc *document.InDocument) {
	if !validFormat(format) {
		http.Error(w, "invalid format: must be svg, eps, pgf, or png", http.StatusBadRequest)
		return
	}

	scale := h.rasterScale
	if s, err := strconv.ParseFloat(r.URL.Query().Get("scale"), 64); err == nil && s > 0 && s <= 16 {
		scale = s
	}

	page, err := NewPage(doc, r.URL.Query().Get("scene"))
	if err != nil {
		if errors.Is(err, ErrNoScene) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("build export page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Render into memory first so a failure can still become an error response.
	var buf bytes.Buffer
	if err := Write(&buf, format, page, Options{RasterScale: scale, Images: h.images}); err != nil {
		if errors.Is(err, ErrRasterSize) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("export failed", "format", format, "error", err)
		http.Error(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	name := SanitizeName(doc.Project.Name)
	w.Header().Set("Content-Type", ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, FileExt(format)))
	size := buf.Len()
	w.Header().Set("Content-Length", strconv.Itoa(size))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export write failed", "format", format, "size", size, "error", err)
		return
	}

	slog.Info("export complete", "format", format, "size", size, "items", len(page.Items))
}

func validFormat(format string) bool {
	switch format {
	case FormatSVG, FormatEPS, FormatPGF, FormatPNG:
		return true
	}
	return false
}

// SanitizeName maps a project name to a safe file name.
func SanitizeName(name string) string {
	if name == "" {
		return "drawing"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
