package storage

import (
	"path"
	"strings"
)

// CleanPath normalizes a volume path: slash-separated, no leading or trailing
// slash, RootPath for the root. Paths that climb above the root are rejected.
func CleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || p == "/" || p == "." {
		return RootPath, nil
	}

	cleaned := path.Clean("/" + p)
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}

	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return RootPath, nil
	}
	return cleaned, nil
}

// Join appends name to a folder path.
func Join(folder, name string) string {
	if folder == RootPath {
		return name
	}
	return folder + "/" + name
}

// Parent returns the parent folder path of p.
func Parent(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return RootPath
	}
	return p[:i]
}

// Base returns the last element of p, or "" for the root.
func Base(p string) string {
	if p == RootPath {
		return ""
	}
	return path.Base(p)
}
