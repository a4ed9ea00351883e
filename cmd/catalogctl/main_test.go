package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/preview"
	"book-catalog/internal/storage"
	"book-catalog/internal/storage/local"
)

func newTestGlobals(t *testing.T, provider storage.Provider) (*Globals, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return &Globals{
		Provider: provider,
		Registry: preview.NewRegistry(preview.DefaultMaxBytes),
		Workers:  2,
		Out:      buf,
		Ctx:      context.Background(),
	}, buf
}

func TestLsCmd_Run(t *testing.T) {
	t.Run("lists the root", func(t *testing.T) {
		g, buf := newTestGlobals(t, demoVolume())

		require.NoError(t, (&LsCmd{}).Run(g))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "/\n"))
		assert.Contains(t, out, "Classics/")
		assert.Contains(t, out, "Poetry/")
		assert.Contains(t, out, "Inbox/")
		assert.Contains(t, out, "README.txt")
		assert.Less(t, strings.Index(out, "Inbox/"), strings.Index(out, "README.txt"), "folders come before books")
	})

	t.Run("lists a nested folder", func(t *testing.T) {
		g, buf := newTestGlobals(t, demoVolume())

		require.NoError(t, (&LsCmd{Folder: "Classics/Russian", Long: true}).Run(g))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "/Classics/Russian\n"))
		assert.Contains(t, out, "War and Peace")
		assert.Contains(t, out, "Leo Tolstoy")
		assert.Contains(t, out, "Happy families are all alike.")
		assert.NotContains(t, out, "Odes")
	})

	t.Run("empty folder", func(t *testing.T) {
		g, buf := newTestGlobals(t, demoVolume())

		require.NoError(t, (&LsCmd{Folder: "Inbox"}).Run(g))
		assert.Contains(t, buf.String(), "No items found.")
	})

	t.Run("unknown folder", func(t *testing.T) {
		g, _ := newTestGlobals(t, demoVolume())

		err := (&LsCmd{Folder: "Classics/French"}).Run(g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no folder "French" in "/Classics"`)
	})

	t.Run("path escape", func(t *testing.T) {
		g, _ := newTestGlobals(t, demoVolume())

		err := (&LsCmd{Folder: "../etc"}).Run(g)
		require.ErrorIs(t, err, storage.ErrInvalidPath)
	})

	t.Run("absent volume", func(t *testing.T) {
		v := demoVolume()
		v.SetPresent(false)
		g, buf := newTestGlobals(t, v)

		require.NoError(t, (&LsCmd{}).Run(g))
		assert.Contains(t, buf.String(), "No items found.")
	})
}

func TestSearchCmd_Run(t *testing.T) {
	g, buf := newTestGlobals(t, demoVolume())

	require.NoError(t, (&SearchCmd{Query: "ANNA", In: "Classics/Russian"}).Run(g))

	out := buf.String()
	assert.Contains(t, out, "Anna Karenina")
	assert.NotContains(t, out, "War and Peace")
}

func TestVolumeCmd_Run(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		g, buf := newTestGlobals(t, demoVolume())

		require.NoError(t, (&VolumeCmd{}).Run(g))

		out := buf.String()
		assert.Contains(t, out, "Volume: present")
		assert.Contains(t, out, "Files:  5")
		assert.Contains(t, out, "Books:  5")
		assert.Contains(t, out, "fb2   3")
		assert.Contains(t, out, "txt   2")
	})

	t.Run("absent", func(t *testing.T) {
		v := demoVolume()
		v.SetPresent(false)
		g, buf := newTestGlobals(t, v)

		require.NoError(t, (&VolumeCmd{}).Run(g))
		assert.Equal(t, "Volume: not present\n", buf.String())
	})
}

func TestClip(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 6, "trunc…"},
		{"Война и мир", 5, "Войн…"},
		{"anything", 0, "anything"},
		{"anything", -3, "anything"},
		{"ab", 1, "…"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clip(tt.s, tt.width), "clip(%q, %d)", tt.s, tt.width)
	}
}

func TestTerminalWidthNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, terminalWidth(f))
}

func TestCLIFlags(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		volumes []string
		demo    bool
	}{
		{"default mount", []string{"volume"}, []string{"/media/sdcard"}, false},
		{"several mounts", []string{"--volume=/mnt/a,/mnt/b", "ls"}, []string{"/mnt/a", "/mnt/b"}, false},
		{"short flag", []string{"-m", "/mnt/card", "ls"}, []string{"/mnt/card"}, false},
		{"demo", []string{"--demo", "ls", "Classics"}, []string{"/media/sdcard"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("VOLUME_PATHS", "")
			os.Unsetenv("VOLUME_PATHS")
			cli := CLI{}

			parser, err := kong.New(&cli,
				kong.Name("catalogctl"),
				kong.Exit(func(int) {}),
			)
			require.NoError(t, err)
			_, err = parser.Parse(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.volumes, cli.Volumes)
			assert.Equal(t, tc.demo, cli.Demo)
		})
	}
}

func TestLocalVolumeEndToEnd(t *testing.T) {
	card := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(card, "Notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(card, "Notes", "todo.txt"), []byte("Buy milk.\n\nThen bread."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(card, ".hidden.txt"), []byte("secret"), 0o644))

	cli := CLI{}
	parser, err := kong.New(&cli, kong.Name("catalogctl"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"--volume", card, "ls", "Notes", "-l"})
	require.NoError(t, err)
	assert.Equal(t, "Notes", cli.Ls.Folder)
	assert.True(t, cli.Ls.Long)

	require.NotNil(t, kctx)

	// Run the parsed command against a buffer instead of stdout.
	g, buf := newTestGlobals(t, mustLocal(t, card))
	require.NoError(t, cli.Ls.Run(g))

	out := buf.String()
	assert.Contains(t, out, "todo")
	assert.Contains(t, out, "Buy milk.")
	assert.NotContains(t, out, "secret")
}

func mustLocal(t *testing.T, mount string) storage.Provider {
	t.Helper()
	v, err := local.New(local.Config{Mounts: []string{mount}, SkipHidden: true})
	require.NoError(t, err)
	return v
}
