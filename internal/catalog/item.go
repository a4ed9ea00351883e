package catalog

import "book-catalog/internal/storage"

// Entry is the header shared by every catalog item.
type Entry struct {
	ID      string
	OpdsURL string
	Title   string
}

// Header returns the entry itself; it is promoted to every item type.
func (e Entry) Header() Entry {
	return e
}

// Item is a FolderItem or a BookItem.
type Item interface {
	Header() Entry
	isItem()
}

// FolderItem is a navigable subfolder. OpdsURL is its volume path.
type FolderItem struct {
	Entry
}

func (FolderItem) isItem() {}

// NewFolderItem returns the item for the folder at path. An empty name
// defaults to the last path element.
func NewFolderItem(path, name string) FolderItem {
	if name == "" {
		name = storage.Base(path)
	}
	return FolderItem{Entry{ID: path, OpdsURL: path, Title: name}}
}

// Link points at a downloadable representation of a book.
type Link struct {
	Type string // dotted format tag, e.g. ".epub"
	URL  string // volume path of the file
}

// BookItem is a book file with its extracted preview.
type BookItem struct {
	Entry
	Author      string
	Description string
	Links       []Link
}

func (BookItem) isItem() {}

// Page is one catalog listing: folders first, then books.
type Page []Item

// Folders returns the folder items of p in order.
func (p Page) Folders() []FolderItem {
	var out []FolderItem
	for _, it := range p {
		if f, ok := it.(FolderItem); ok {
			out = append(out, f)
		}
	}
	return out
}

// Books returns the book items of p in order.
func (p Page) Books() []BookItem {
	var out []BookItem
	for _, it := range p {
		if b, ok := it.(BookItem); ok {
			out = append(out, b)
		}
	}
	return out
}

// Folder returns the folder item on p whose path is path.
func (p Page) Folder(path string) (FolderItem, bool) {
	for _, it := range p {
		if f, ok := it.(FolderItem); ok && f.OpdsURL == path {
			return f, true
		}
	}
	return FolderItem{}, false
}

// Filter returns the items of p for which keep returns true.
func (p Page) Filter(keep func(Item) bool) Page {
	out := Page{}
	for _, it := range p {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
