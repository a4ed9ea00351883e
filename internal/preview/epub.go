package preview

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
)

const containerPath = "META-INF/container.xml"

// epubExtractor reads Dublin Core metadata from the package document named
// by META-INF/container.xml.
type epubExtractor struct {
	maxBytes int64
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

type opfPackage struct {
	Metadata struct {
		Titles       []string `xml:"title"`
		Creators     []string `xml:"creator"`
		Descriptions []string `xml:"description"`
	} `xml:"metadata"`
}

func (e epubExtractor) Extract(ctx context.Context, _, _ string, r io.Reader) (Preview, error) {
	zr, err := openArchive(ctx, r, e.maxBytes)
	if err != nil {
		return Preview{}, err
	}
	return parseEPUB(zr)
}

// openArchive buffers r, up to maxBytes, and opens it as a zip archive.
func openArchive(ctx context.Context, r io.Reader, maxBytes int64) (*zip.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: archive larger than %d bytes", ErrMalformedContent, maxBytes)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	return zr, nil
}

func decodeEntry(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedContent, name, err)
	}
	defer f.Close()

	d := xml.NewDecoder(f)
	d.CharsetReader = charsetReader
	d.Strict = false
	d.Entity = xml.HTMLEntity
	if err := d.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedContent, name, err)
	}
	return nil
}

func parseEPUB(zr *zip.Reader) (Preview, error) {
	var c epubContainer
	if err := decodeEntry(zr, containerPath, &c); err != nil {
		return Preview{}, err
	}

	opfPath := ""
	for _, rf := range c.Rootfiles {
		if rf.FullPath == "" {
			continue
		}
		if opfPath == "" || rf.MediaType == "application/oebps-package+xml" {
			opfPath = rf.FullPath
		}
		if rf.MediaType == "application/oebps-package+xml" {
			break
		}
	}
	if opfPath == "" {
		return Preview{}, fmt.Errorf("%w: container lists no package document", ErrMalformedContent)
	}

	var pkg opfPackage
	if err := decodeEntry(zr, path.Clean(opfPath), &pkg); err != nil {
		return Preview{}, err
	}

	p := Preview{AuthorName: joinNames(pkg.Metadata.Creators)}
	for _, t := range pkg.Metadata.Titles {
		if t = collapseSpace(t); t != "" {
			p.Title = t
			break
		}
	}
	for _, desc := range pkg.Metadata.Descriptions {
		if desc = stripMarkup(desc); desc != "" {
			p.Description = truncate(desc, descriptionLimit)
			break
		}
	}
	return p, nil
}
