package markdown

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/blogsmith/internal/slug"
)

// tocContextKey carries the collected TOC entries of one parse through the
// parser context back to Renderer.Render.
var tocContextKey = parser.NewContextKey()

type headingAnchorExtension struct{}

func (e *headingAnchorExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&headingAnchorTransformer{}, 500),
	))
}

// headingAnchorTransformer assigns slug ids to h2-h4 headings and records
// them in document order. Slug collisions within one document are
// disambiguated with -1, -2, ... suffixes; the first occurrence keeps the
// bare slug. h1 is reserved for the page title and excluded.
type headingAnchorTransformer struct{}

func (t *headingAnchorTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	seen := map[string]int{}
	toc := []TOCEntry{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level < 2 || h.Level > 4 {
			return ast.WalkSkipChildren, nil
		}

		txt := headingText(h, source)
		base := slug.Slugify(txt)
		if base == "" {
			base = "heading"
		}

		id := base
		if count, collided := seen[base]; collided {
			seen[base] = count + 1
			id = base + "-" + strconv.Itoa(count+1)
		} else {
			seen[base] = 0
		}

		h.SetAttributeString("id", []byte(id))
		toc = append(toc, TOCEntry{ID: id, Text: txt, Level: h.Level})
		return ast.WalkSkipChildren, nil
	})

	pc.Set(tocContextKey, toc)
}

// headingText extracts the literal inline text of a heading, ignoring
// inline markup but keeping code span content.
func headingText(h ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
