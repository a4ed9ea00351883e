package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"book-catalog/internal/catalog"
	"book-catalog/internal/logging"
	"book-catalog/internal/storage"
)

const maxRequestBody = 64 << 10

// GetCatalog returns the current page of the caller's session.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	var resp PageResponse
	err := s.Do(func(reader *catalog.Reader) error {
		page, err := reader.Read(r.Context())
		if err != nil {
			return err
		}
		resp = newPageResponse(reader, page)
		return nil
	})
	if err != nil {
		h.writeCatalogError(w, r, "read catalog", err)
		return
	}

	writeJSONResponse(w, resp, http.StatusOK)
}

// EnterFolder descends into a folder listed on the current page and returns
// the new page.
func (h *Handlers) EnterFolder(w http.ResponseWriter, r *http.Request) {
	var req EnterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	target, err := storage.CleanPath(req.Path)
	if err != nil || target == storage.RootPath {
		writeJSONError(w, "Invalid folder path", http.StatusBadRequest)
		return
	}

	s := h.sessions.FromRequest(w, r)

	var (
		resp  PageResponse
		found bool
	)
	err = s.Do(func(reader *catalog.Reader) error {
		current, err := reader.Read(r.Context())
		if err != nil {
			return err
		}
		folder, ok := current.Folder(target)
		if !ok {
			return nil
		}
		found = true

		reader.GoTo(folder)
		page, err := reader.Read(r.Context())
		if err != nil {
			return err
		}
		resp = newPageResponse(reader, page)
		return nil
	})
	if err != nil {
		h.writeCatalogError(w, r, "enter folder", err)
		return
	}
	if !found {
		writeJSONError(w, "Folder is not on the current page", http.StatusNotFound)
		return
	}

	logging.Debug("Session %s entered %q", s.ID, target)
	writeJSONResponse(w, resp, http.StatusOK)
}

// GoBack returns to the previous folder and returns its page.
func (h *Handlers) GoBack(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	var resp PageResponse
	err := s.Do(func(reader *catalog.Reader) error {
		if err := reader.GoBack(); err != nil {
			return err
		}
		page, err := reader.Read(r.Context())
		if err != nil {
			return err
		}
		resp = newPageResponse(reader, page)
		return nil
	})
	if err != nil {
		h.writeCatalogError(w, r, "go back", err)
		return
	}

	writeJSONResponse(w, resp, http.StatusOK)
}

// SearchCatalog filters the current folder by title.
func (h *Handlers) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s := h.sessions.FromRequest(w, r)

	var resp PageResponse
	err := s.Do(func(reader *catalog.Reader) error {
		page, err := reader.Search(r.Context(), query)
		if err != nil {
			return err
		}
		resp = newPageResponse(reader, page)
		return nil
	})
	if err != nil {
		h.writeCatalogError(w, r, "search catalog", err)
		return
	}

	resp.Query = query
	writeJSONResponse(w, resp, http.StatusOK)
}

// NextPage always fails: a folder is served as a single page.
func (h *Handlers) NextPage(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)

	err := s.Do(func(reader *catalog.Reader) error {
		_, err := reader.ReadNextPage(r.Context())
		return err
	})
	h.writeCatalogError(w, r, "read next page", err)
}

// RefreshCatalog drops cached state for the session; pages are always read
// fresh, so it only acknowledges the request.
func (h *Handlers) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.FromRequest(w, r)
	_ = s.Do(func(reader *catalog.Reader) error {
		reader.Refresh()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// writeCatalogError maps a catalog or storage error to an HTTP status.
func (h *Handlers) writeCatalogError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrEmptyStack):
		writeJSONError(w, "Already at the volume root", http.StatusConflict)
	case errors.Is(err, catalog.ErrUnsupportedOperation):
		writeJSONError(w, err.Error(), http.StatusNotImplemented)
	case errors.Is(err, os.ErrNotExist), errors.Is(err, storage.ErrNotFolder):
		writeJSONError(w, "Folder no longer exists", http.StatusNotFound)
	case errors.Is(err, context.Canceled):
		logging.Debug("%s: client went away: %v", op, err)
	default:
		logging.Error("%s failed for %s: %v", op, r.URL.Path, err)
		writeJSONError(w, "Failed to read catalog", http.StatusInternalServerError)
	}
}
