// Package imageproxy provides the HTTP handler for resized Welog images.
package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Welog/internal/core/imageproxy"
)

// Service is the part of the image proxy the handler uses.
type Service interface {
	GetImage(ctx context.Context, preset, folder, name string) ([]byte, error)
}

// Handler handles HTTP requests for the image proxy.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new image proxy handler.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// HandleImage handles GET /media/{preset}/{folder}/{name}.
// Backend image names are immutable, so responses are cached for a year.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	preset := chi.URLParam(r, "preset")
	folder := chi.URLParam(r, "folder")
	name := chi.URLParam(r, "name")

	if err := imageproxy.ValidatePreset(preset); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset")
		return
	}
	if err := imageproxy.ValidateFolder(folder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid folder")
		return
	}
	if err := imageproxy.ValidateName(name); err != nil {
		writeError(w, http.StatusBadRequest, "invalid image name")
		return
	}

	etag := fmt.Sprintf(`"%s-%s-%s"`, preset, folder, name)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := h.service.GetImage(r.Context(), preset, folder, name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write image response", "name", name, "error", err)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, imageproxy.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "image not found")
	case errors.Is(err, imageproxy.ErrFetchTimeout):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, imageproxy.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, "failed to fetch image")
	case errors.Is(err, imageproxy.ErrInvalidPreset),
		errors.Is(err, imageproxy.ErrInvalidFolder),
		errors.Is(err, imageproxy.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid image request")
	case errors.Is(err, imageproxy.ErrUnsupportedFormat):
		writeError(w, http.StatusUnprocessableEntity, "unsupported image format")
	case errors.Is(err, imageproxy.ErrImageTooLarge):
		writeError(w, http.StatusUnprocessableEntity, "image too large")
	default:
		h.logger.Error("image proxy failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeError writes a plain text error; clients expect image bytes, not JSON.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
