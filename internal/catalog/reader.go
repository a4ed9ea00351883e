package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"book-catalog/internal/formats"
	"book-catalog/internal/logging"
	"book-catalog/internal/metrics"
	"book-catalog/internal/preview"
	"book-catalog/internal/storage"
	"book-catalog/internal/workers"
)

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Workers is the number of concurrent preview extractions (0 = auto).
	Workers int
}

// Reader lists catalog pages for one browsing session.
type Reader struct {
	provider  storage.Provider
	extractor preview.Extractor
	nav       *Navigator
	workers   int
}

// NewReader creates a reader positioned at the volume root.
func NewReader(provider storage.Provider, extractor preview.Extractor, config ReaderConfig) *Reader {
	n := config.Workers
	if n <= 0 {
		n = workers.ForExtraction()
	}
	return &Reader{
		provider:  provider,
		extractor: extractor,
		nav:       NewNavigator(),
		workers:   n,
	}
}

// Navigator exposes the reader's navigation state.
func (r *Reader) Navigator() *Navigator {
	return r.nav
}

// GoTo descends into folder. The next Read lists it.
func (r *Reader) GoTo(folder FolderItem) {
	r.nav.Enter(folder)
}

// GoBack returns to the previous folder.
func (r *Reader) GoBack() error {
	return r.nav.GoBack()
}

// CanGoBack reports whether GoBack would succeed.
func (r *Reader) CanGoBack() bool {
	return r.nav.CanGoBack()
}

// Refresh is a no-op: every Read lists the volume afresh.
func (r *Reader) Refresh() {}

// CanReadNextPage is always false; a folder is one page.
func (r *Reader) CanReadNextPage() bool {
	return false
}

// ReadNextPage always fails with ErrUnsupportedOperation.
func (r *Reader) ReadNextPage(context.Context) (Page, error) {
	return nil, fmt.Errorf("read next page: %w", ErrUnsupportedOperation)
}

// Read lists the current folder.
func (r *Reader) Read(ctx context.Context) (Page, error) {
	return r.observe("read", func() (Page, bool, error) {
		return r.readFolder(ctx, r.nav.CurrentPath())
	})
}

// Search lists the current folder and keeps the items whose title contains
// query, ignoring case. Subfolders are not searched.
func (r *Reader) Search(ctx context.Context, query string) (Page, error) {
	return r.observe("search", func() (Page, bool, error) {
		page, absent, err := r.readFolder(ctx, r.nav.CurrentPath())
		if err != nil {
			return nil, absent, err
		}
		return filterByTitle(page, query), absent, nil
	})
}

func filterByTitle(page Page, query string) Page {
	fold := cases.Fold()
	needle := fold.String(query)
	return page.Filter(func(it Item) bool {
		return strings.Contains(fold.String(it.Header().Title), needle)
	})
}

// observe records metrics for one page build.
func (r *Reader) observe(op string, build func() (Page, bool, error)) (Page, error) {
	start := time.Now()
	page, absent, err := build()
	metrics.CatalogReadDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.CatalogReadsTotal.WithLabelValues(op, "error").Inc()
		return nil, err
	case absent:
		metrics.CatalogReadsTotal.WithLabelValues(op, "absent").Inc()
	default:
		metrics.CatalogReadsTotal.WithLabelValues(op, "success").Inc()
	}
	metrics.CatalogPageItems.WithLabelValues("folder").Observe(float64(len(page.Folders())))
	metrics.CatalogPageItems.WithLabelValues("book").Observe(float64(len(page.Books())))
	return page, nil
}

// readFolder builds the page for path. absent reports that the volume was
// missing, in which case the page is empty and err is nil.
func (r *Reader) readFolder(ctx context.Context, path string) (page Page, absent bool, err error) {
	if !r.provider.VolumePresent(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		logging.Debug("Storage volume not present, returning empty page for %q", path)
		return Page{}, true, nil
	}

	folder, err := r.provider.ResolveFolder(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrVolumeAbsent) {
			logging.Debug("Storage volume disappeared while resolving %q", path)
			return Page{}, true, nil
		}
		return nil, false, fmt.Errorf("resolve folder %q: %w", path, err)
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg         sync.WaitGroup
		folders    []Item
		foldersErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		folders, foldersErr = r.listFolders(listCtx, folder)
		if foldersErr != nil {
			cancel()
		}
	}()

	books, booksErr := r.listBooks(listCtx, folder)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if foldersErr != nil {
		return nil, false, foldersErr
	}
	if booksErr != nil {
		return nil, false, booksErr
	}

	page = make(Page, 0, len(folders)+len(books))
	page = append(page, folders...)
	page = append(page, books...)
	return page, false, nil
}

func (r *Reader) listFolders(ctx context.Context, folder storage.Folder) ([]Item, error) {
	entries, err := r.provider.ListSubfolders(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list subfolders of %q: %w", folder.Path, err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, NewFolderItem(e.Path, e.Name))
	}
	return items, nil
}

// extractJob is one file to preview; index is its position in the listing.
type extractJob struct {
	index int
	file  storage.Entry
	tag   string
}

// extractResult carries a finished job. A nil book with a nil err means the
// file was dropped.
type extractResult struct {
	index int
	book  *BookItem
	err   error
}

// listBooks previews every file of folder on a worker pool and returns the
// books in listing order.
func (r *Reader) listBooks(ctx context.Context, folder storage.Folder) ([]Item, error) {
	files, err := r.provider.ListFiles(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list files of %q: %w", folder.Path, err)
	}

	var queue []extractJob
	for i, f := range files {
		tag, ok := formats.Tag(f.Name)
		if !ok {
			continue
		}
		queue = append(queue, extractJob{index: i, file: f, tag: tag})
	}
	if len(queue) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := min(r.workers, len(queue))
	metrics.ExtractionWorkers.Set(float64(numWorkers))

	jobs := make(chan extractJob)
	results := make(chan extractResult, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go r.worker(ctx, &wg, jobs, results)
	}

	slots := make([]*BookItem, len(files))
	var firstErr error
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for res := range results {
			if res.err != nil {
				if firstErr == nil {
					firstErr = res.err
					cancel()
				}
				continue
			}
			slots[res.index] = res.book
		}
	}()

enqueue:
	for _, job := range queue {
		select {
		case jobs <- job:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	collectorWg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var books []Item
	for _, b := range slots {
		if b != nil {
			books = append(books, *b)
		}
	}
	return books, nil
}

func (r *Reader) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan extractJob, results chan<- extractResult) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		book, err := r.extract(ctx, job)
		results <- extractResult{index: job.index, book: book, err: err}
	}
}

// extract opens one file and previews it. Storage errors are returned;
// extraction failures drop the file and return (nil, nil).
func (r *Reader) extract(ctx context.Context, job extractJob) (*BookItem, error) {
	start := time.Now()

	rc, err := r.provider.OpenForRead(ctx, job.file)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", job.file.Path, err)
	}
	defer rc.Close()

	p, panicked, err := r.safeExtract(ctx, job, rc)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if panicked {
		metrics.ExtractionsTotal.WithLabelValues("dropped").Inc()
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		logging.Warn("Preview extraction failed: path=%q format=%q err=%v", job.file.Path, job.tag, err)
		metrics.ExtractionsTotal.WithLabelValues("dropped").Inc()
		return nil, nil
	}
	metrics.ExtractionsTotal.WithLabelValues("success").Inc()

	title := p.Title
	if title == "" {
		title = formats.Stem(job.file.Name)
	}
	return &BookItem{
		Entry:       Entry{ID: job.file.Path, OpdsURL: job.file.Path, Title: title},
		Author:      p.AuthorName,
		Description: p.Description,
		Links:       []Link{{Type: formats.LinkType(job.tag), URL: job.file.Path}},
	}, nil
}

// safeExtract runs the extractor, turning a panic into a dropped file.
func (r *Reader) safeExtract(ctx context.Context, job extractJob, src io.Reader) (p preview.Preview, panicked bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			logging.Warn("Preview extraction panicked: path=%q format=%q panic=%v", job.file.Path, job.tag, v)
			p, panicked, err = preview.Preview{}, true, nil
		}
	}()
	p, err = r.extractor.Extract(ctx, job.tag, job.file.Name, src)
	return p, false, err
}
