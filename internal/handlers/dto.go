package handlers

import (
	"net/url"
	"strings"

	"book-catalog/internal/catalog"
	"book-catalog/internal/formats"
	"book-catalog/internal/storage"
)

const (
	kindFolder = "folder"
	kindBook   = "book"
)

// LinkResponse is one downloadable representation of a book.
type LinkResponse struct {
	Type     string `json:"type"`
	MimeType string `json:"mimeType"`
	Href     string `json:"href"`
}

// ItemResponse is a catalog item as served to clients.
type ItemResponse struct {
	Kind        string         `json:"kind"`
	ID          string         `json:"id"`
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Author      string         `json:"author,omitempty"`
	Description string         `json:"description,omitempty"`
	Links       []LinkResponse `json:"links,omitempty"`
}

// Crumb is one step of the breadcrumb trail.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// PageResponse is the current page of a catalog session.
type PageResponse struct {
	Path            string         `json:"path"`
	Breadcrumb      []Crumb        `json:"breadcrumb"`
	CanGoBack       bool           `json:"canGoBack"`
	CanReadNextPage bool           `json:"canReadNextPage"`
	Query           string         `json:"query,omitempty"`
	Items           []ItemResponse `json:"items"`
}

// VolumeResponse describes the storage volume.
type VolumeResponse struct {
	Volume  string `json:"volume"`
	Present bool   `json:"present"`
	Files   int    `json:"files"`
	Books   int    `json:"books"`
}

// EnterRequest names a folder on the current page.
type EnterRequest struct {
	Path string `json:"path"`
}

func newPageResponse(r *catalog.Reader, page catalog.Page) PageResponse {
	nav := r.Navigator()
	resp := PageResponse{
		Path:            nav.CurrentPath(),
		Breadcrumb:      breadcrumb(nav.Trail()),
		CanGoBack:       r.CanGoBack(),
		CanReadNextPage: r.CanReadNextPage(),
		Items:           make([]ItemResponse, 0, len(page)),
	}
	for _, it := range page {
		resp.Items = append(resp.Items, newItemResponse(it))
	}
	return resp
}

func breadcrumb(trail []string) []Crumb {
	crumbs := make([]Crumb, 0, len(trail)+1)
	crumbs = append(crumbs, Crumb{Name: "/", Path: storage.RootPath})
	for _, p := range trail {
		crumbs = append(crumbs, Crumb{Name: storage.Base(p), Path: p})
	}
	return crumbs
}

func newItemResponse(it catalog.Item) ItemResponse {
	h := it.Header()
	resp := ItemResponse{ID: h.ID, Path: h.OpdsURL, Title: h.Title}

	switch v := it.(type) {
	case catalog.FolderItem:
		resp.Kind = kindFolder
	case catalog.BookItem:
		resp.Kind = kindBook
		resp.Author = v.Author
		resp.Description = v.Description
		for _, l := range v.Links {
			resp.Links = append(resp.Links, LinkResponse{
				Type:     l.Type,
				MimeType: formats.MimeType(strings.TrimPrefix(l.Type, ".")),
				Href:     bookHref(l.URL),
			})
		}
	}
	return resp
}

// bookHref returns the download URL for a volume path.
func bookHref(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/api/book/" + strings.Join(segments, "/")
}
