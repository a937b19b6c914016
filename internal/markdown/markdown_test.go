package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func render(t *testing.T, body string) string {
	t.Helper()
	out, _, err := NewRenderer(Options{DefaultHideHint: "peek"}).Render([]byte(body))
	require.NoError(t, err)
	return string(out)
}

func renderTOC(t *testing.T, body string) []TOCEntry {
	t.Helper()
	_, toc, err := NewRenderer(Options{}).Render([]byte(body))
	require.NoError(t, err)
	return toc
}

// findByClass returns the first element carrying the given class, using a
// real HTML parse rather than substring matching.
func findByClass(t *testing.T, rendered, class string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(rendered))
	require.NoError(t, err)

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" && strings.Contains(a.Val, class) {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotNil(t, found, "no element with class %q in %s", class, rendered)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRender_PlainMarkdown(t *testing.T) {
	out := render(t, "Hello **world**\n")
	require.Equal(t, "<p>Hello <strong>world</strong></p>\n", out)
}

func TestRender_Admonition_WithTitle(t *testing.T) {
	out := render(t, "::: warn Watch out\nDanger ahead.\n:::\n")
	div := findByClass(t, out, "admonition-warn")
	require.Contains(t, out, `<p class="admonition-title">Watch out</p>`)
	require.Contains(t, out, "<p>Danger ahead.</p>")
	require.Equal(t, "div", div.Data)
}

func TestRender_Admonition_DefaultTitlePerKind(t *testing.T) {
	for kind, title := range map[string]string{"success": "Success", "fail": "Fail", "warn": "Warning"} {
		out := render(t, "::: "+kind+"\nbody\n:::\n")
		require.Contains(t, out, `<p class="admonition-title">`+title+"</p>", "kind %s", kind)
	}
}

func TestRender_Admonition_TitleEscaped(t *testing.T) {
	out := render(t, "::: warn a<b & \"c\"\nx\n:::\n")
	require.Contains(t, out, `a&lt;b &amp; &quot;c&quot;`)
}

func TestRender_Admonition_OnlyAtBlockLevel(t *testing.T) {
	out := render(t, "text before ::: warn not a block\n")
	require.NotContains(t, out, "admonition")
}

func TestRender_HiddenText_SingleLine(t *testing.T) {
	out := render(t, "::: hide[秘密] ::: content :::\n")
	span := findByClass(t, out, "hidden-text")
	require.Equal(t, "span", span.Data)
	require.Equal(t, "秘密", attr(span, "title"))
	require.Contains(t, out, ">content</span>")
}

func TestRender_HiddenText_ContentIsRendered(t *testing.T) {
	out := render(t, "::: hide[spoiler] ::: the **big** twist :::\n")
	require.Contains(t, out, "the <strong>big</strong> twist")
}

func TestRender_HiddenText_BlockForm(t *testing.T) {
	out := render(t, "::: hide[spoiler] :::\n\nparagraph one\n\n:::\n")
	span := findByClass(t, out, "hidden-text")
	require.Equal(t, "spoiler", attr(span, "title"))
	require.Contains(t, out, "<p>paragraph one</p>")
}

func TestRender_HiddenText_LegacyAttributeBlockDiscarded(t *testing.T) {
	out := render(t, "::: hide[label]{.legacy #id} ::: content :::\n")
	require.Equal(t, "label", attr(findByClass(t, out, "hidden-text"), "title"))
	require.NotContains(t, out, "legacy")
}

func TestRender_HiddenText_EmptyLabelUsesDefaultHint(t *testing.T) {
	out := render(t, "::: hide[] ::: content :::\n")
	require.Equal(t, "peek", attr(findByClass(t, out, "hidden-text"), "title"))
}

func TestRender_HiddenText_LabelEscaped(t *testing.T) {
	out := render(t, `::: hide[a<b&"c"] ::: x :::`+"\n")
	require.Contains(t, out, `title="a&lt;b&amp;&quot;c&quot;"`)
}

func TestRender_HiddenText_InsideCodeFenceNotRewritten(t *testing.T) {
	out := render(t, "```\n::: hide[x] ::: y :::\n```\n")
	require.NotContains(t, out, "hidden-text")
}

func TestRender_HeadingAnchors_AssignsSlugIDs(t *testing.T) {
	out := render(t, "## Hello World\n")
	require.Contains(t, out, `<h2 id="hello-world">Hello World</h2>`)
}

func TestRender_TOC_CollectsH2ToH4InOrder(t *testing.T) {
	toc := renderTOC(t, "# Title\n\n## First\n\ntext\n\n### Nested\n\n#### Deep\n\n##### Deeper\n")
	require.Equal(t, []TOCEntry{
		{ID: "first", Text: "First", Level: 2},
		{ID: "nested", Text: "Nested", Level: 3},
		{ID: "deep", Text: "Deep", Level: 4},
	}, toc)
}

func TestRender_TOC_CollisionsNumberedInOrder(t *testing.T) {
	toc := renderTOC(t, "## Setup\n\n## Setup\n\n## Setup\n")
	require.Equal(t, "setup", toc[0].ID)
	require.Equal(t, "setup-1", toc[1].ID)
	require.Equal(t, "setup-2", toc[2].ID)
}

func TestRender_TOC_CollisionCounterResetsPerDocument(t *testing.T) {
	r := NewRenderer(Options{})
	_, first, err := r.Render([]byte("## Setup\n"))
	require.NoError(t, err)
	_, second, err := r.Render([]byte("## Setup\n"))
	require.NoError(t, err)
	require.Equal(t, first[0].ID, second[0].ID)
}

func TestRender_TOC_InlineMarkupStrippedCodeKept(t *testing.T) {
	toc := renderTOC(t, "## Using `go mod` *today*\n")
	require.Equal(t, "Using go mod today", toc[0].Text)
	require.Equal(t, "using-go-mod-today", toc[0].ID)
}

func TestRender_TOC_H1Excluded(t *testing.T) {
	toc := renderTOC(t, "# Only Title\n")
	require.Empty(t, toc)
}

func TestRender_MalformedMarkdownStillRenders(t *testing.T) {
	out := render(t, "[broken link(\n\n**unclosed\n")
	require.NotEmpty(t, out)
}
