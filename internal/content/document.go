// Package content loads Markdown posts into Documents: metadata split
// from body, body rendered to HTML, taxonomy references derived. Documents
// are created once per build and discarded afterwards; the only state that
// survives across builds is what gets written back into the source files.
package content

import (
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
)

// TaxonomyRef pairs a display label with its slug, for one tag or
// category reference on one document.
type TaxonomyRef struct {
	Label string
	Slug  string
}

// Document is one loaded post.
//
// Slug is the URL path segment and is unique by convention only: duplicate
// slugs are reported at load time but the later document still wins the
// route.
type Document struct {
	Slug       string
	Title      string
	Date       time.Time
	DateText   string
	Summary    string
	BodyHTML   string
	TOC        []markdown.TOCEntry
	Tags       []TaxonomyRef
	Categories []TaxonomyRef

	// ShortLink is set once the document has been synchronized against the
	// short-link service, either in an earlier build (read back from
	// metadata) or in this one.
	ShortLink string

	// Raw parts needed to rewrite the source file in place.
	Path           string
	RawBody        []byte
	Fields         map[string]any
	HadFrontmatter bool
	Style          frontmatter.Style
}

// Route returns the site-relative route of the post's page, without the
// configured base path.
func (d *Document) Route() string {
	return "post/" + d.Slug + "/"
}
