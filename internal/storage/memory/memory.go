// Package memory provides an in-process storage.Provider. It backs tests and
// the demo mode of catalogctl.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"book-catalog/internal/storage"
)

type node struct {
	name     string
	dir      bool
	data     []byte
	children []string
}

// Volume is an in-memory volume. Listing order is insertion order.
type Volume struct {
	mu      sync.RWMutex
	present bool
	nodes   map[string]*node
	errs    map[string]error

	// OnOpen, if set, is called for every OpenForRead before the stream is returned.
	OnOpen func(path string)
}

// New returns an empty, present volume.
func New() *Volume {
	return &Volume{
		present: true,
		nodes:   map[string]*node{storage.RootPath: {dir: true}},
		errs:    make(map[string]error),
	}
}

var _ storage.Provider = (*Volume)(nil)

// SetPresent simulates inserting or removing the card.
func (v *Volume) SetPresent(present bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.present = present
}

// SetError makes every listing or open of path fail with err. A nil err clears it.
func (v *Volume) SetError(path string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		delete(v.errs, path)
		return
	}
	v.errs[path] = err
}

// AddFolder creates a folder and any missing parents.
func (v *Volume) AddFolder(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureFolder(mustClean(path))
}

// AddFile creates a file and any missing parent folders.
func (v *Volume) AddFile(path string, data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := mustClean(path)
	parent := storage.Parent(p)
	v.ensureFolder(parent)

	if _, exists := v.nodes[p]; !exists {
		v.nodes[parent].children = append(v.nodes[parent].children, p)
	}
	v.nodes[p] = &node{name: storage.Base(p), data: append([]byte(nil), data...)}
}

func (v *Volume) ensureFolder(p string) {
	if n, ok := v.nodes[p]; ok && n.dir {
		return
	}
	parent := storage.Parent(p)
	v.ensureFolder(parent)
	v.nodes[p] = &node{name: storage.Base(p), dir: true}
	v.nodes[parent].children = append(v.nodes[parent].children, p)
}

func mustClean(path string) string {
	p, err := storage.CleanPath(path)
	if err != nil || p == storage.RootPath {
		panic(fmt.Sprintf("memory volume: invalid path %q", path))
	}
	return p
}

// VolumePresent reports the simulated card state.
func (v *Volume) VolumePresent(ctx context.Context) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.present && ctx.Err() == nil
}

// ResolveFolder resolves path to a folder.
func (v *Volume) ResolveFolder(ctx context.Context, path string) (storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Folder{}, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.present {
		return storage.Folder{}, storage.ErrVolumeAbsent
	}

	p, err := storage.CleanPath(path)
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	n, ok := v.nodes[p]
	if !ok {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, os.ErrNotExist)
	}
	if !n.dir {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, storage.ErrNotFolder)
	}
	return storage.Folder{Name: n.name, Path: p}, nil
}

// ListSubfolders lists the folders directly under f.
func (v *Volume) ListSubfolders(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	return v.children(ctx, f, true)
}

// ListFiles lists the files directly under f.
func (v *Volume) ListFiles(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	return v.children(ctx, f, false)
}

func (v *Volume) children(ctx context.Context, f storage.Folder, dirs bool) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.present {
		return nil, storage.ErrVolumeAbsent
	}
	if err := v.errs[f.Path]; err != nil {
		return nil, fmt.Errorf("list %q: %w", f.Path, err)
	}
	n, ok := v.nodes[f.Path]
	if !ok || !n.dir {
		return nil, fmt.Errorf("list %q: %w", f.Path, os.ErrNotExist)
	}

	var entries []storage.Entry
	for _, childPath := range n.children {
		child := v.nodes[childPath]
		if child.dir == dirs {
			entries = append(entries, storage.Entry{Name: child.name, Path: childPath})
		}
	}
	return entries, nil
}

// ListAllFiles returns every file on the volume, depth first.
func (v *Volume) ListAllFiles(ctx context.Context) ([]storage.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.present {
		return nil, storage.ErrVolumeAbsent
	}

	var entries []storage.Entry
	var walk func(p string) error
	walk = func(p string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, childPath := range v.nodes[p].children {
			child := v.nodes[childPath]
			if child.dir {
				if err := walk(childPath); err != nil {
					return err
				}
				continue
			}
			entries = append(entries, storage.Entry{Name: child.name, Path: childPath})
		}
		return nil
	}
	if err := walk(storage.RootPath); err != nil {
		return nil, err
	}
	return entries, nil
}

// OpenForRead returns a reader over the file contents.
func (v *Volume) OpenForRead(ctx context.Context, file storage.Entry) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	present := v.present
	n, ok := v.nodes[file.Path]
	injected := v.errs[file.Path]
	hook := v.OnOpen
	v.mu.RUnlock()

	if !present {
		return nil, storage.ErrVolumeAbsent
	}
	if injected != nil {
		return nil, fmt.Errorf("open %q: %w", file.Path, injected)
	}
	if !ok || n.dir {
		return nil, fmt.Errorf("open %q: %w", file.Path, os.ErrNotExist)
	}
	if hook != nil {
		hook(file.Path)
	}
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

// String renders the tree, one path per line. Used in test failure output.
func (v *Volume) String() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var b strings.Builder
	var walk func(p string, depth int)
	walk = func(p string, depth int) {
		for _, childPath := range v.nodes[p].children {
			child := v.nodes[childPath]
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(child.name)
			if child.dir {
				b.WriteString("/")
			}
			b.WriteString("\n")
			if child.dir {
				walk(childPath, depth+1)
			}
		}
	}
	walk(storage.RootPath, 0)
	return b.String()
}
