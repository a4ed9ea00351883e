package storage

import (
	"context"
	"errors"
	"io"
)

// RootPath is the path of the volume root.
const RootPath = ""

var (
	// ErrVolumeAbsent indicates that no volume is present.
	ErrVolumeAbsent = errors.New("storage volume is not present")
	// ErrNotFolder indicates that a path does not resolve to a folder.
	ErrNotFolder = errors.New("path is not a folder")
	// ErrInvalidPath indicates a path that escapes the volume root.
	ErrInvalidPath = errors.New("invalid volume path")
)

// Entry is a named object on the volume.
type Entry struct {
	Name string
	Path string
}

// Folder is a resolved folder on the volume.
type Folder struct {
	Name string
	Path string
}

// IsRoot reports whether f is the volume root.
func (f Folder) IsRoot() bool {
	return f.Path == RootPath
}

// Provider gives read access to a single removable volume.
//
// Implementations must be safe for concurrent use: the catalog opens files
// from several goroutines while listing subfolders on another.
type Provider interface {
	// VolumePresent reports whether the volume is currently available.
	VolumePresent(ctx context.Context) bool

	// ResolveFolder resolves a folder path, RootPath for the root.
	// Returns ErrVolumeAbsent when no volume is present.
	ResolveFolder(ctx context.Context, path string) (Folder, error)

	// ListSubfolders lists the immediate subfolders of f in provider order.
	ListSubfolders(ctx context.Context, f Folder) ([]Entry, error)

	// ListFiles lists the immediate files of f in provider order.
	ListFiles(ctx context.Context, f Folder) ([]Entry, error)

	// ListAllFiles lists every file on the volume, recursively.
	ListAllFiles(ctx context.Context) ([]Entry, error)

	// OpenForRead opens a file for reading. The caller closes the stream.
	OpenForRead(ctx context.Context, file Entry) (io.ReadCloser, error)
}
