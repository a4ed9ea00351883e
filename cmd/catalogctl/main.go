package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"book-catalog/internal/catalog"
	"book-catalog/internal/formats"
	"book-catalog/internal/logging"
	"book-catalog/internal/preview"
	"book-catalog/internal/storage"
	"book-catalog/internal/storage/local"
)

type Globals struct {
	Provider storage.Provider
	Registry *preview.Registry
	Workers  int
	Out      io.Writer
	// Width truncates descriptions; 0 disables truncation.
	Width int
	Ctx   context.Context
}

func (g *Globals) newReader() *catalog.Reader {
	return catalog.NewReader(g.Provider, g.Registry, catalog.ReaderConfig{Workers: g.Workers})
}

type CLI struct {
	Ls     LsCmd     `cmd:"" aliases:"list" help:"List a folder of the volume"`
	Search SearchCmd `cmd:"" aliases:"s" help:"Search a folder by title"`
	Volume VolumeCmd `cmd:"" help:"Show whether the volume is present and count its books"`

	Volumes  []string `name:"volume" short:"m" env:"VOLUME_PATHS" sep:"," default:"/media/sdcard" help:"Candidate mount points; the first existing one is used"`
	Demo     bool     `help:"Browse a built-in sample volume instead of a mount"`
	All      bool     `short:"a" help:"Show hidden files and folders"`
	Workers  int      `env:"EXTRACT_WORKERS" help:"Preview extraction workers (0 = auto)"`
	MaxBytes int64    `name:"max-preview-bytes" default:"33554432" help:"Largest archive buffered for a preview"`
	Debug    bool     `help:"Enable debug logging"`
}

func (c *CLI) AfterApply(ctx *kong.Context) error {
	if c.Debug {
		logging.SetLevel(logging.LevelDebug)
	}

	var provider storage.Provider
	if c.Demo {
		provider = demoVolume()
	} else {
		v, err := local.New(local.Config{Mounts: c.Volumes, SkipHidden: !c.All})
		if err != nil {
			return fmt.Errorf("failed to open volume: %w", err)
		}
		provider = v
	}

	ctx.Bind(&Globals{
		Provider: provider,
		Registry: preview.NewRegistry(c.MaxBytes),
		Workers:  c.Workers,
		Out:      os.Stdout,
		Width:    terminalWidth(os.Stdout),
		Ctx:      signalContext(),
	})
	return nil
}

// terminalWidth returns the column count of f, or 0 when f is not a terminal.
func terminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx
}

// navigate walks reader into folder one level at a time, the way a user
// would: each step must be a folder on the page being shown.
func navigate(ctx context.Context, reader *catalog.Reader, folder string) error {
	target, err := storage.CleanPath(folder)
	if err != nil {
		return fmt.Errorf("invalid folder %q: %w", folder, err)
	}
	if target == storage.RootPath {
		return nil
	}

	current := storage.RootPath
	for _, segment := range strings.Split(target, "/") {
		page, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		next := storage.Join(current, segment)
		item, ok := page.Folder(next)
		if !ok {
			return fmt.Errorf("no folder %q in %q", segment, displayPath(current))
		}
		reader.GoTo(item)
		current = next
	}
	return nil
}

func displayPath(p string) string {
	return "/" + p
}

type LsCmd struct {
	Folder string `arg:"" optional:"" help:"Folder to list, relative to the volume root"`
	Long   bool   `short:"l" help:"Show book descriptions"`
}

func (cmd *LsCmd) Run(g *Globals) error {
	reader := g.newReader()
	if err := navigate(g.Ctx, reader, cmd.Folder); err != nil {
		return err
	}

	page, err := reader.Read(g.Ctx)
	if err != nil {
		return err
	}
	return printPage(g, reader, page, cmd.Long)
}

type SearchCmd struct {
	Query string `arg:"" help:"Text to look for in titles (case-insensitive)"`
	In    string `help:"Folder to search, relative to the volume root"`
	Long  bool   `short:"l" help:"Show book descriptions"`
}

func (cmd *SearchCmd) Run(g *Globals) error {
	reader := g.newReader()
	if err := navigate(g.Ctx, reader, cmd.In); err != nil {
		return err
	}

	page, err := reader.Search(g.Ctx, cmd.Query)
	if err != nil {
		return err
	}
	return printPage(g, reader, page, cmd.Long)
}

type VolumeCmd struct{}

func (cmd *VolumeCmd) Run(g *Globals) error {
	if !g.Provider.VolumePresent(g.Ctx) {
		fmt.Fprintln(g.Out, "Volume: not present")
		return nil
	}

	files, err := g.Provider.ListAllFiles(g.Ctx)
	if errors.Is(err, storage.ErrVolumeAbsent) {
		fmt.Fprintln(g.Out, "Volume: not present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list volume: %w", err)
	}

	byFormat := make(map[string]int)
	books := 0
	for _, f := range files {
		if tag, ok := formats.Tag(f.Name); ok && g.Registry.Supports(tag) {
			byFormat[tag]++
			books++
		}
	}

	fmt.Fprintln(g.Out, "Volume: present")
	fmt.Fprintf(g.Out, "Files:  %d\n", len(files))
	fmt.Fprintf(g.Out, "Books:  %d\n", books)
	for _, tag := range g.Registry.Formats() {
		if n := byFormat[tag]; n > 0 {
			fmt.Fprintf(g.Out, "  %-5s %d\n", tag, n)
		}
	}
	return nil
}

func printPage(g *Globals, reader *catalog.Reader, page catalog.Page, long bool) error {
	fmt.Fprintf(g.Out, "%s\n", displayPath(reader.Navigator().CurrentPath()))
	if len(page) == 0 {
		fmt.Fprintln(g.Out, "No items found.")
		return nil
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTITLE\tAUTHOR\tPATH")
	fmt.Fprintln(w, "----\t-----\t------\t----")

	for _, it := range page {
		switch v := it.(type) {
		case catalog.FolderItem:
			fmt.Fprintf(w, "dir\t%s\t\t%s/\n", v.Title, v.OpdsURL)
		case catalog.BookItem:
			kind := "book"
			if len(v.Links) > 0 {
				kind = strings.TrimPrefix(v.Links[0].Type, ".")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, v.Title, v.Author, v.OpdsURL)
			if long && v.Description != "" {
				fmt.Fprintf(w, "\t  %s\t\t\n", clip(v.Description, g.Width-8))
			}
		}
	}
	return w.Flush()
}

// clip shortens s to at most width runes; width <= 0 leaves s alone.
func clip(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("catalogctl"),
		kong.Description("Browse the books on a removable volume"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
