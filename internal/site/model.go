// Package site assembles the full output page set for one build and
// writes it to the output tree. Markup construction is delegated to a
// page-template collaborator; this package only decides which pages exist
// and what data each one carries.
package site

import (
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// PageKind discriminates the page model variants.
type PageKind string

const (
	PageHome          PageKind = "home"
	PageIndex         PageKind = "index"
	PagePost          PageKind = "post"
	PageTaxonomyIndex PageKind = "taxonomy-index"
	PageTaxonomy      PageKind = "taxonomy"
	PageRandom        PageKind = "random"
)

// SiteInfo is the per-build site chrome shared by every page.
type SiteInfo struct {
	Title            string
	BasePath         string // normalized, leading and trailing slash
	ProfileName      string
	ProfileAvatar    string
	ProfileBio       string
	AnalyticsSnippet string // empty when analytics disabled
	CustomBackground string
}

// PageModel is everything a template needs to render one page.
type PageModel struct {
	Site  SiteInfo
	Kind  PageKind
	Title string

	// Doc is set for PagePost and PageHome (the about document; nil on
	// PageHome means "render the placeholder").
	Doc *content.Document
	// Docs is set for PageIndex.
	Docs []*content.Document
	// Taxonomy names the group ("tags" or "categories") for taxonomy
	// pages; Entry is set for PageTaxonomy, Entries for PageTaxonomyIndex.
	Taxonomy string
	Entry    *taxonomy.Entry
	Entries  []*taxonomy.Entry
	// Routes is set for PageRandom: the absolute candidate routes, never
	// empty (falls back to the site root when there are no posts).
	Routes []string
}

// Renderer is the page-template collaborator. It turns models into markup
// and owns the shared theme assets.
type Renderer interface {
	RenderPage(m *PageModel) ([]byte, error)
	WriteAssets(dir string) error
}
