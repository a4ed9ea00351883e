package catalog

import "book-catalog/internal/storage"

// Navigator is a stack of folder paths. The top is the current folder; an
// empty stack is the volume root.
type Navigator struct {
	stack []string
}

// NewNavigator returns a navigator at the volume root.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Enter descends into folder.
func (n *Navigator) Enter(folder FolderItem) {
	n.stack = append(n.stack, folder.OpdsURL)
}

// GoBack returns to the previous folder.
func (n *Navigator) GoBack() error {
	if len(n.stack) == 0 {
		return &NavigationError{Op: "go back", Err: ErrEmptyStack}
	}
	n.stack = n.stack[:len(n.stack)-1]
	return nil
}

// CanGoBack reports whether GoBack would succeed.
func (n *Navigator) CanGoBack() bool {
	return len(n.stack) > 0
}

// CurrentPath returns the current folder path, storage.RootPath at the root.
func (n *Navigator) CurrentPath() string {
	if len(n.stack) == 0 {
		return storage.RootPath
	}
	return n.stack[len(n.stack)-1]
}

// Depth returns the number of folders entered.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Trail returns the entered folder paths, outermost first.
func (n *Navigator) Trail() []string {
	out := make([]string, len(n.stack))
	copy(out, n.stack)
	return out
}
