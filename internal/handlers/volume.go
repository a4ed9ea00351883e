package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"book-catalog/internal/formats"
	"book-catalog/internal/logging"
	"book-catalog/internal/metrics"
	"book-catalog/internal/storage"
	"book-catalog/internal/streaming"
)

// GetVolume reports whether the volume is present and how many files and
// books are on it.
func (h *Handlers) GetVolume(w http.ResponseWriter, r *http.Request) {
	resp := VolumeResponse{Volume: h.volume}

	if !h.provider.VolumePresent(r.Context()) {
		metrics.VolumePresent.Set(0)
		writeJSONResponse(w, resp, http.StatusOK)
		return
	}

	files, err := h.provider.ListAllFiles(r.Context())
	if errors.Is(err, storage.ErrVolumeAbsent) {
		metrics.VolumePresent.Set(0)
		writeJSONResponse(w, resp, http.StatusOK)
		return
	}
	if err != nil {
		logging.Error("Failed to list volume files: %v", err)
		writeJSONError(w, "Failed to list volume", http.StatusInternalServerError)
		return
	}

	resp.Present = true
	resp.Files = len(files)
	for _, f := range files {
		if tag, ok := formats.Tag(f.Name); ok && h.registry.Supports(tag) {
			resp.Books++
		}
	}

	metrics.VolumePresent.Set(1)
	metrics.VolumeBooksTotal.Set(float64(resp.Books))
	writeJSONResponse(w, resp, http.StatusOK)
}

// GetBook streams a book file from the volume.
func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	p, err := storage.CleanPath(mux.Vars(r)["path"])
	if err != nil || p == storage.RootPath {
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return
	}

	name := storage.Base(p)
	rc, err := h.provider.OpenForRead(r.Context(), storage.Entry{Name: name, Path: p})
	switch {
	case errors.Is(err, storage.ErrVolumeAbsent):
		writeJSONError(w, "Storage volume is not present", http.StatusServiceUnavailable)
		return
	case errors.Is(err, os.ErrNotExist), errors.Is(err, storage.ErrInvalidPath):
		writeJSONError(w, "Book not found", http.StatusNotFound)
		return
	case err != nil:
		logging.Error("Failed to open book %q: %v", p, err)
		writeJSONError(w, "Failed to open book", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	tag, _ := formats.Tag(name)
	w.Header().Set("Content-Type", formats.MimeType(tag))
	w.Header().Set("Content-Disposition", mimeAttachment(name))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	res, err := streaming.Copy(r.Context(), w, rc, streaming.DefaultConfig())
	metrics.BookDownloadBytes.Add(float64(res.Bytes))
	metrics.BookDownloadsTotal.WithLabelValues(streaming.Outcome(err)).Inc()

	switch {
	case err == nil:
		logging.Debug("Sent book %q: %d bytes in %v", p, res.Bytes, res.Duration)
	case errors.Is(err, streaming.ErrClientGone):
		logging.Debug("Client left during download of %q after %d bytes", p, res.Bytes)
	default:
		logging.Warn("Book download interrupted: path=%q bytes=%d err=%v", p, res.Bytes, err)
	}
}
