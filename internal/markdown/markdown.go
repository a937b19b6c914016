// Package markdown converts one post body into HTML plus a table of
// contents. On top of CommonMark/GFM it adds admonition containers,
// hidden-text reveal spans and heading anchors, all as Goldmark parser and
// renderer extensions evaluated during the normal rendering pipeline.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// TOCEntry is one heading anchor collected during a render pass.
// ID is unique within a single document's render.
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

// Options configures document rendering.
type Options struct {
	// DefaultHideHint is the hover hint used for hidden-text spans that
	// carry no label.
	DefaultHideHint string
}

// Renderer converts Markdown bodies to HTML. One Renderer may be reused
// across documents; heading-slug collision state is scoped to each Render
// call.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds the converter with the blogsmith extensions wired in.
func NewRenderer(opts Options) *Renderer {
	hint := opts.DefaultHideHint
	if hint == "" {
		hint = "hidden"
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.CJK,
			&hiddenTextExtension{defaultHint: hint},
			&admonitionExtension{},
			&headingAnchorExtension{},
		),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return &Renderer{md: md}
}

// Render produces HTML and the document TOC. Goldmark is permissive, so
// malformed Markdown still yields output; an error here means the writer
// failed, which cannot happen with a bytes.Buffer.
func (r *Renderer) Render(body []byte) ([]byte, []TOCEntry, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := r.md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return nil, nil, err
	}

	toc, _ := ctx.Get(tocContextKey).([]TOCEntry)
	return buf.Bytes(), toc, nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escapeHTML escapes text destined for attribute values and title spans.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
