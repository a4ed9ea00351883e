package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"book-catalog/internal/catalog"
	"book-catalog/internal/handlers"
	"book-catalog/internal/preview"
	"book-catalog/internal/session"
	"book-catalog/internal/startup"
	"book-catalog/internal/storage/local"
	"book-catalog/internal/storage/memory"
)

func TestOpenVolumeLocal(t *testing.T) {
	card := t.TempDir()
	if err := os.WriteFile(filepath.Join(card, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	config := &startup.Config{
		VolumeBackend: startup.BackendLocal,
		VolumePaths:   []string{filepath.Join(card, "missing"), card},
		SkipHidden:    true,
	}

	provider, description, err := openVolume(context.Background(), config)
	if err != nil {
		t.Fatalf("openVolume() error = %v", err)
	}
	if _, ok := provider.(*local.Volume); !ok {
		t.Fatalf("openVolume() returned %T, want *local.Volume", provider)
	}
	if description != "local:"+card {
		t.Errorf("description = %q, want %q", description, "local:"+card)
	}
	if !provider.VolumePresent(context.Background()) {
		t.Error("Expected volume to be present")
	}
}

func TestOpenVolumeLocalAbsent(t *testing.T) {
	root := t.TempDir()
	paths := []string{filepath.Join(root, "a"), filepath.Join(root, "b")}

	provider, description, err := openVolume(context.Background(), &startup.Config{
		VolumeBackend: startup.BackendLocal,
		VolumePaths:   paths,
	})
	if err != nil {
		t.Fatalf("openVolume() error = %v", err)
	}
	if provider.VolumePresent(context.Background()) {
		t.Error("Expected volume to be absent")
	}
	if description != "local:"+strings.Join(paths, ",") {
		t.Errorf("description = %q", description)
	}
}

func TestSetupRouter(t *testing.T) {
	v := memory.New()
	registry := preview.NewRegistry(preview.DefaultMaxBytes)
	sessions := session.NewManager(func() *catalog.Reader {
		return catalog.NewReader(v, registry, catalog.ReaderConfig{Workers: 1})
	}, time.Minute)

	router := setupRouter(handlers.New(sessions, v, registry, "memory"))

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/livez", http.StatusOK},
		{http.MethodHead, "/livez", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/catalog", http.StatusOK},
		{http.MethodGet, "/api/catalog/next", http.StatusNotImplemented},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, http.NoBody))
			if w.Code != tt.status {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.status)
			}
		})
	}
}

func TestMetricsServer(t *testing.T) {
	srv := newMetricsServer("0")
	if srv.Addr != ":0" {
		t.Errorf("Addr = %q, want :0", srv.Addr)
	}
	if srv.ReadTimeout <= 0 || srv.WriteTimeout <= 0 {
		t.Error("Expected metrics server timeouts to be set")
	}

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "book_catalog_") {
		t.Error("Expected book_catalog_ metrics in exposition")
	}
}
