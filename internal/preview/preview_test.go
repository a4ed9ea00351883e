package preview

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const warAndPeace = `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0" xmlns:l="http://www.w3.org/1999/xlink">
 <description>
  <title-info>
   <genre>prose_classic</genre>
   <author>
    <first-name>Lev</first-name>
    <middle-name>Nikolayevich</middle-name>
    <last-name>Tolstoy</last-name>
   </author>
   <book-title>War and  Peace</book-title>
   <annotation>
    <p>An epic of <emphasis>Russian</emphasis> society.</p>
    <p>Second paragraph.</p>
   </annotation>
  </title-info>
  <document-info>
   <author><nickname>scanner</nickname></author>
  </document-info>
 </description>
 <body><section><p>Well, Prince, so Genoa`

func zipArchive(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func epubArchive(t *testing.T, opf string) []byte {
	t.Helper()
	files := map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"OEBPS/content.opf": opf,
	}
	return zipArchive(t, files, "mimetype", "META-INF/container.xml", "OEBPS/content.opf")
}

const mobyOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="id">urn:uuid:1</dc:identifier>
    <dc:title>Moby Dick</dc:title>
    <dc:creator>Herman Melville</dc:creator>
    <dc:description>&lt;p&gt;The &lt;i&gt;whale&lt;/i&gt; story &amp;amp; more.&lt;/p&gt;</dc:description>
  </metadata>
</package>`

func extract(t *testing.T, format, name string, data []byte) (Preview, error) {
	t.Helper()
	return NewRegistry(0).Extract(context.Background(), format, name, bytes.NewReader(data))
}

func TestRegistry_Formats(t *testing.T) {
	r := NewRegistry(0)
	assert.Equal(t, []string{"epub", "fb2", "txt", "zip"}, r.Formats())
	assert.True(t, r.Supports("FB2"))
	assert.False(t, r.Supports("pdf"))
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	_, err := extract(t, "pdf", "book.pdf", []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_FormatTagIsCaseInsensitive(t *testing.T) {
	p, err := extract(t, "FB2", "war.FB2", []byte(warAndPeace))
	require.NoError(t, err)
	assert.Equal(t, "War and Peace", p.Title)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(0)
	r.Register("pdf", ExtractorFunc(func(_ context.Context, format, name string, _ io.Reader) (Preview, error) {
		return Preview{AuthorName: format + ":" + name}, nil
	}))

	p, err := r.Extract(context.Background(), "pdf", "dir/report.pdf", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Preview{Title: "report", AuthorName: "pdf:dir/report.pdf"}, p)
}

func TestRegistry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegistry(0).Extract(ctx, "fb2", "war.fb2", strings.NewReader(warAndPeace))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFB2(t *testing.T) {
	p, err := extract(t, "fb2", "war.fb2", []byte(warAndPeace))
	require.NoError(t, err)
	assert.Equal(t, Preview{
		Title:       "War and Peace",
		AuthorName:  "Lev Nikolayevich Tolstoy",
		Description: "An epic of Russian society.\nSecond paragraph.",
	}, p)
}

func TestFB2_LegacyCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="windows-1251"?>
<FictionBook><description><title-info>
<author><first-name>Лев</first-name><last-name>Толстой</last-name></author>
<author><nickname>редактор</nickname></author>
<book-title>Война и мир</book-title>
</title-info></description></FictionBook>`
	encoded, err := charmap.Windows1251.NewEncoder().String(doc)
	require.NoError(t, err)

	p, err := extract(t, "fb2", "voina.fb2", []byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, "Война и мир", p.Title)
	assert.Equal(t, "Лев Толстой, редактор", p.AuthorName)
}

func TestFB2_MissingTitleFallsBackToFileName(t *testing.T) {
	doc := `<FictionBook><description><title-info></title-info></description></FictionBook>`
	p, err := extract(t, "fb2", "books/untitled.fb2", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "untitled", p.Title)
	assert.Empty(t, p.AuthorName)
}

func TestFB2_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not xml", "just some words"},
		{"wrong root", `<html><body><p>hi</p></body></html>`},
		{"body first", `<FictionBook><body><p>text</p></body></FictionBook>`},
		{"truncated description", `<FictionBook><description><title-info><book-title>Half`},
		{"no description", `<FictionBook></FictionBook>`},
		{"unknown charset", `<?xml version="1.0" encoding="x-no-such-charset"?><FictionBook/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract(t, "fb2", "bad.fb2", []byte(tt.doc))
			assert.ErrorIs(t, err, ErrMalformedContent)
		})
	}
}

func TestEPUB(t *testing.T) {
	p, err := extract(t, "epub", "moby.epub", epubArchive(t, mobyOPF))
	require.NoError(t, err)
	assert.Equal(t, Preview{
		Title:       "Moby Dick",
		AuthorName:  "Herman Melville",
		Description: "The whale story & more.",
	}, p)
}

func TestEPUB_MultipleCreators(t *testing.T) {
	opf := `<package><metadata>
<dc:title xmlns:dc="http://purl.org/dc/elements/1.1/"></dc:title>
<dc:creator xmlns:dc="http://purl.org/dc/elements/1.1/">Ilf</dc:creator>
<dc:creator xmlns:dc="http://purl.org/dc/elements/1.1/">Petrov</dc:creator>
<dc:creator xmlns:dc="http://purl.org/dc/elements/1.1/">Ilf</dc:creator>
</metadata></package>`
	p, err := extract(t, "epub", "chairs.epub", epubArchive(t, opf))
	require.NoError(t, err)
	assert.Equal(t, "chairs", p.Title)
	assert.Equal(t, "Ilf, Petrov", p.AuthorName)
}

func TestEPUB_Malformed(t *testing.T) {
	noContainer := zipArchive(t, map[string]string{"mimetype": "application/epub+zip"}, "mimetype")
	emptyContainer := zipArchive(t, map[string]string{
		"META-INF/container.xml": `<container><rootfiles></rootfiles></container>`,
	}, "META-INF/container.xml")
	missingOPF := zipArchive(t, map[string]string{
		"META-INF/container.xml": `<container><rootfiles><rootfile full-path="OEBPS/gone.opf"/></rootfiles></container>`,
	}, "META-INF/container.xml")

	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("PK but not really")},
		{"no container", noContainer},
		{"container without rootfile", emptyContainer},
		{"missing package document", missingOPF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract(t, "epub", "bad.epub", tt.data)
			assert.ErrorIs(t, err, ErrMalformedContent)
		})
	}
}

func TestEPUB_TooLarge(t *testing.T) {
	data := epubArchive(t, mobyOPF)
	r := NewRegistry(int64(len(data) - 1))

	_, err := r.Extract(context.Background(), "epub", "moby.epub", bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrMalformedContent)
}

func TestZippedFB2(t *testing.T) {
	data := zipArchive(t, map[string]string{
		"readme.txt":   "scanned by someone",
		"book/war.fb2": warAndPeace,
	}, "readme.txt", "book/war.fb2")

	p, err := extract(t, "zip", "war.fb2.zip", data)
	require.NoError(t, err)
	assert.Equal(t, "War and Peace", p.Title)
	assert.Equal(t, "Lev Nikolayevich Tolstoy", p.AuthorName)
}

func TestZippedFB2_UntitledUsesEntryName(t *testing.T) {
	data := zipArchive(t, map[string]string{
		"anna.fb2": `<FictionBook><description/></FictionBook>`,
	}, "anna.fb2")

	p, err := extract(t, "zip", "archive.zip", data)
	require.NoError(t, err)
	assert.Equal(t, "anna", p.Title)
}

func TestZip_WithoutBook(t *testing.T) {
	data := zipArchive(t, map[string]string{"photo.jpg": "jpeg"}, "photo.jpg")
	_, err := extract(t, "zip", "photos.zip", data)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTXT(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "utf-8 with bom",
			data: []byte("\xEF\xBB\xBF\n\nCall me   Ishmael.\nSome years ago.\n\nNever mind how long."),
			want: "Call me Ishmael. Some years ago.",
		},
		{
			name: "crlf line endings",
			data: []byte("First line\r\nsecond line\r\n\r\nthird"),
			want: "First line second line",
		},
		{
			name: "empty",
			data: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := extract(t, "txt", "notes/moby-dick.txt", tt.data)
			require.NoError(t, err)
			assert.Equal(t, "moby-dick", p.Title)
			assert.Equal(t, tt.want, p.Description)
		})
	}
}

func TestTXT_UTF16WithBOM(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Привет\r\nмир\r\n\r\nдальше")
	require.NoError(t, err)

	p, err := extract(t, "txt", "hello.txt", []byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, "Привет мир", p.Description)
}

func TestTXT_LongParagraphIsTruncated(t *testing.T) {
	p, err := extract(t, "txt", "long.txt", []byte(strings.Repeat("word ", 400)))
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(p.Description), descriptionLimit)
	assert.True(t, strings.HasSuffix(p.Description, "…"))
}
