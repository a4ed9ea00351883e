package handlers

import (
	"book-catalog/internal/preview"
	"book-catalog/internal/session"
	"book-catalog/internal/storage"
)

type Handlers struct {
	sessions *session.Manager
	provider storage.Provider
	registry *preview.Registry
	volume   string
}

// New returns handlers serving catalogs from sessions. volume is a
// human-readable description of the storage volume.
func New(sessions *session.Manager, provider storage.Provider, registry *preview.Registry, volume string) *Handlers {
	return &Handlers{
		sessions: sessions,
		provider: provider,
		registry: registry,
		volume:   volume,
	}
}
