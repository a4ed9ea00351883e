// Package local exposes a mounted directory (an SD card, a USB stick) as a
// storage.Provider.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"book-catalog/internal/filesystem"
	"book-catalog/internal/logging"
	"book-catalog/internal/storage"
)

// Config configures a local volume.
type Config struct {
	// Mounts are candidate mount points. The first one that exists as a
	// directory is the volume; none existing means no card is inserted.
	Mounts []string
	// SkipHidden hides files and folders whose name starts with ".".
	SkipHidden bool
	// Retry configures stale handle retries for every filesystem call.
	Retry filesystem.RetryConfig
}

// Volume is a storage.Provider backed by the local filesystem.
type Volume struct {
	config Config
}

// New creates a local volume. Mount points are resolved to absolute paths.
func New(config Config) (*Volume, error) {
	mounts := make([]string, 0, len(config.Mounts))
	for _, m := range config.Mounts {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, fmt.Errorf("resolve mount %q: %w", m, err)
		}
		mounts = append(mounts, abs)
	}
	if len(mounts) == 0 {
		return nil, fmt.Errorf("local volume: at least one mount point is required")
	}
	config.Mounts = mounts
	if config.Retry.MaxRetries == 0 && config.Retry.InitialBackoff == 0 {
		config.Retry = filesystem.DefaultRetryConfig()
	}
	return &Volume{config: config}, nil
}

var _ storage.Provider = (*Volume)(nil)

// mountRoot returns the first candidate mount that is a directory.
func (v *Volume) mountRoot() (string, error) {
	for _, m := range v.config.Mounts {
		info, err := filesystem.StatWithRetry(m, v.config.Retry)
		if err == nil && info.IsDir() {
			return m, nil
		}
		if err != nil && !os.IsNotExist(err) {
			logging.Debug("Mount candidate %s unavailable: %v", m, err)
		}
	}
	return "", storage.ErrVolumeAbsent
}

// MountPoint returns the active mount point, if any.
func (v *Volume) MountPoint() (string, bool) {
	root, err := v.mountRoot()
	return root, err == nil
}

// VolumePresent reports whether any candidate mount is available.
func (v *Volume) VolumePresent(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := v.mountRoot()
	return err == nil
}

// ResolveFolder resolves a volume path to a folder.
func (v *Volume) ResolveFolder(ctx context.Context, path string) (storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Folder{}, err
	}

	root, err := v.mountRoot()
	if err != nil {
		return storage.Folder{}, err
	}

	clean, err := storage.CleanPath(path)
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}

	full, err := resolveInside(root, v.fullPath(root, clean))
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	info, err := filesystem.StatWithRetry(full, v.config.Retry)
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	if !info.IsDir() {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, storage.ErrNotFolder)
	}

	return storage.Folder{Name: storage.Base(clean), Path: clean}, nil
}

// ListSubfolders lists the immediate subfolders of f, sorted by name.
func (v *Volume) ListSubfolders(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	return v.list(ctx, f, true)
}

// ListFiles lists the immediate files of f, sorted by name.
func (v *Volume) ListFiles(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	return v.list(ctx, f, false)
}

func (v *Volume) list(ctx context.Context, f storage.Folder, dirs bool) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := v.mountRoot()
	if err != nil {
		return nil, err
	}

	full := v.fullPath(root, f.Path)
	dirEntries, err := filesystem.ReadDirWithRetry(full, v.config.Retry)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", f.Path, err)
	}

	entries := make([]storage.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if v.config.SkipHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}
		isDir, ok := v.isDir(root, full, de)
		if !ok || isDir != dirs {
			continue
		}
		entries = append(entries, storage.Entry{
			Name: de.Name(),
			Path: storage.Join(f.Path, de.Name()),
		})
	}
	return entries, nil
}

// isDir classifies an entry, following symlinks. ok is false for entries that
// are neither regular files nor directories, dangling links, and links that
// leave the volume.
func (v *Volume) isDir(root, parent string, de fs.DirEntry) (isDir, ok bool) {
	mode := de.Type()
	if mode&fs.ModeSymlink != 0 {
		target, err := resolveInside(root, filepath.Join(parent, de.Name()))
		if err != nil {
			logging.Debug("Skipping link %s: %v", de.Name(), err)
			return false, false
		}
		info, err := filesystem.StatWithRetry(target, v.config.Retry)
		if err != nil {
			logging.Debug("Skipping dangling link %s: %v", de.Name(), err)
			return false, false
		}
		mode = info.Mode()
	}
	switch {
	case mode.IsDir():
		return true, true
	case mode.IsRegular():
		return false, true
	default:
		return false, false
	}
}

// ListAllFiles walks the whole volume and returns every file.
func (v *Volume) ListAllFiles(ctx context.Context) ([]storage.Entry, error) {
	root, err := v.mountRoot()
	if err != nil {
		return nil, err
	}

	var entries []storage.Entry
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			logging.Warn("Error accessing path %s: %v", p, walkErr)
			return nil
		}
		if p == root {
			return nil
		}
		if v.config.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			//nolint:nilerr // skip entries that cannot be made relative
			return nil
		}
		entries = append(entries, storage.Entry{Name: d.Name(), Path: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk volume: %w", err)
	}
	return entries, nil
}

// OpenForRead opens a file on the volume.
func (v *Volume) OpenForRead(ctx context.Context, file storage.Entry) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := v.mountRoot()
	if err != nil {
		return nil, err
	}

	clean, err := storage.CleanPath(file.Path)
	if err != nil || clean == storage.RootPath {
		return nil, fmt.Errorf("open %q: %w", file.Path, storage.ErrInvalidPath)
	}

	full, err := resolveInside(root, v.fullPath(root, clean))
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", file.Path, err)
	}

	f, err := filesystem.OpenWithRetry(full, v.config.Retry)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", file.Path, err)
	}
	return f, nil
}

func (v *Volume) fullPath(root, clean string) string {
	if clean == storage.RootPath {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(clean))
}

// resolveInside follows the symlinks in full and fails with
// storage.ErrInvalidPath when the target lies outside root.
func resolveInside(root, full string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(realRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", storage.ErrInvalidPath
	}
	return target, nil
}
