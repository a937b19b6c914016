package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/markdown"
)

func newTestLoader() *Loader {
	l := NewLoader(markdown.NewRenderer(markdown.Options{}), "about.md")
	l.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func writePost(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesMetadataAndRendersBody(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "hello.md", "---\ntitle: Hello\ndate: \"2024-03-01\"\ntags:\n  - Go\n  - Blogging\n---\n# Hello\n\nWorld **bold**\n")

	docs, report, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Empty(t, report.Defects)
	require.Len(t, docs, 1)

	doc := docs[0]
	require.Equal(t, "hello", doc.Slug)
	require.Equal(t, "Hello", doc.Title)
	require.Equal(t, "2024-03-01", doc.DateText)
	require.Equal(t, []TaxonomyRef{{Label: "Go", Slug: "go"}, {Label: "Blogging", Slug: "blogging"}}, doc.Tags)
	require.Contains(t, doc.BodyHTML, "<strong>bold</strong>")
}

func TestLoad_SlugFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "My Post.md", "just a body\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, "my-post", docs[0].Slug)
}

func TestLoad_MalformedFrontmatter_DefaultsNeverFatal(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "bad.md", "---\ntitle: [unclosed\n---\nbody text\n")

	docs, report, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, report.Defects, 1)
	require.Equal(t, "bad", docs[0].Slug)
	require.Contains(t, docs[0].BodyHTML, "body text")
}

func TestLoad_MissingDateFallsBackToBuildTime(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "nodate.md", "---\ntitle: x\n---\nbody\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), docs[0].Date)
	require.Empty(t, docs[0].DateText)
}

func TestLoad_InvalidDateKeepsRawText(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "odd.md", "---\ndate: someday soon\n---\nbody\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, "someday soon", docs[0].DateText)
	require.False(t, docs[0].Date.IsZero())
}

func TestLoad_CommaSeparatedTagsAndAliases(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "p.md", "---\ntag: \"Go, Web , ,Tools\"\ncategory: Tech\n---\nbody\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, []TaxonomyRef{
		{Label: "Go", Slug: "go"},
		{Label: "Web", Slug: "web"},
		{Label: "Tools", Slug: "tools"},
	}, docs[0].Tags)
	require.Equal(t, []TaxonomyRef{{Label: "Tech", Slug: "tech"}}, docs[0].Categories)
}

func TestLoad_SummaryDerivedFromBody(t *testing.T) {
	dir := t.TempDir()
	long := ""
	for range 20 {
		long += "0123456789"
	}
	writePost(t, dir, "long.md", "line one\nline two\n"+long+"\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.LessOrEqual(t, len([]rune(docs[0].Summary)), 120)
	require.Contains(t, docs[0].Summary, "line one line two")
}

func TestLoad_ExplicitSummaryWins(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "s.md", "---\nsummary: the short version\n---\na much longer body\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, "the short version", docs[0].Summary)
}

func TestLoad_SortedDateDescendingStable(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "---\ndate: \"2024-01-01\"\n---\nx\n")
	writePost(t, dir, "b.md", "---\ndate: \"2024-06-01\"\n---\nx\n")
	writePost(t, dir, "c.md", "---\ndate: \"2024-01-01\"\n---\nx\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Equal(t, "b", docs[0].Slug)
	// Equal dates keep input (path) order.
	require.Equal(t, "a", docs[1].Slug)
	require.Equal(t, "c", docs[2].Slug)
}

func TestLoad_SkipsAboutFileAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "about.md", "about me\n")
	writePost(t, dir, ".draft.md", "draft\n")
	writePost(t, dir, "real.md", "post\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "real", docs[0].Slug)
}

func TestLoad_NonStringShortLinkTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "stale.md", "---\nshortLink:\n  url: https://x/y\n---\nbody\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Empty(t, docs[0].ShortLink)
}

func TestLoad_TaxonomyLabelWithoutSluggableCharactersDropped(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "post.md", "---\ntitle: Post\ntags:\n  - \"!!!\"\n  - Go\ncategories:\n  - \"???\"\n---\nbody\n")

	docs, _, err := newTestLoader().Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// A ref with an empty slug would route to `tags//`, which collapses
	// onto the tag index page and overwrites it.
	require.Equal(t, []TaxonomyRef{{Label: "Go", Slug: "go"}}, docs[0].Tags)
	require.Empty(t, docs[0].Categories)
}

func TestLoad_MissingDirectoryIsFatal(t *testing.T) {
	_, _, err := newTestLoader().Load(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestLoadOne_ReadsSingleDocument(t *testing.T) {
	dir := t.TempDir()
	path := writePost(t, dir, "about.md", "---\ntitle: About\n---\nhi\n")

	doc, err := newTestLoader().LoadOne(path)
	require.NoError(t, err)
	require.Equal(t, "About", doc.Title)
}
