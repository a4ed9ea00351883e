package filesystem

import (
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
)

// VolumeResolver maps file paths to volume labels using longest-prefix matching
// on absolute paths.
type VolumeResolver struct {
	// sorted by path length, longest first
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute, with trailing slash
	name string
}

// NewVolumeResolver creates a resolver from a map of volume label to mount path.
//
//	NewVolumeResolver(map[string]string{
//	    "card":     "/media/sdcard",
//	    "internal": "/media/books",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, "/") {
			absPath += "/"
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		if len(mounts[i].path) == len(mounts[j].path) {
			return mounts[i].name < mounts[j].name
		}
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume label for path, or "unknown".
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+"/", mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

var defaultResolver atomic.Pointer[VolumeResolver]

// SetDefaultVolumeResolver sets the package-level volume resolver.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver.Store(vr)
}

// NewMountResolver labels every one of mounts with the same name, for a
// volume that may appear at any of several mount points.
func NewMountResolver(name string, mounts ...string) *VolumeResolver {
	vr := &VolumeResolver{}
	for _, m := range mounts {
		if strings.TrimSpace(m) == "" {
			continue
		}
		single := NewVolumeResolver(map[string]string{name: m})
		vr.mounts = append(vr.mounts, single.mounts...)
	}
	sort.SliceStable(vr.mounts, func(i, j int) bool {
		return len(vr.mounts[i].path) > len(vr.mounts[j].path)
	})
	return vr
}
