package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/slug"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// Assembler produces the output tree. It only reads documents; all
// mutation happened in earlier stages.
type Assembler struct {
	cfg      *config.Config
	renderer Renderer
	base     string
}

// NewAssembler builds an Assembler writing through the given renderer.
func NewAssembler(cfg *config.Config, renderer Renderer) *Assembler {
	return &Assembler{cfg: cfg, renderer: renderer, base: slug.NormalizeBase(cfg.BaseURL)}
}

// Assemble writes the complete page set and shared assets, returning the
// number of pages generated. The output root is recreated from scratch:
// a build is a full rebuild, never a merge with previous output.
func (a *Assembler) Assemble(docs []*content.Document, tags, categories map[string]*taxonomy.Entry, about *content.Document) (int, error) {
	out := a.cfg.Output.Dir
	if err := os.RemoveAll(out); err != nil {
		return 0, fmt.Errorf("reset output dir %s: %w", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir %s: %w", out, err)
	}

	info := a.siteInfo()
	pages := 0
	write := func(route string, m *PageModel) error {
		m.Site = info
		markup, err := a.renderer.RenderPage(m)
		if err != nil {
			return fmt.Errorf("render %s page %q: %w", m.Kind, route, err)
		}
		if err := writePage(out, route, markup); err != nil {
			return err
		}
		pages++
		return nil
	}

	if err := write("", &PageModel{Kind: PageHome, Doc: about}); err != nil {
		return pages, err
	}
	if err := write("posts/", &PageModel{Kind: PageIndex, Title: "Articles", Docs: docs}); err != nil {
		return pages, err
	}
	for _, doc := range docs {
		if err := write(doc.Route(), &PageModel{Kind: PagePost, Title: doc.Title, Doc: doc}); err != nil {
			return pages, err
		}
	}

	for _, group := range []struct {
		name    string
		entries map[string]*taxonomy.Entry
	}{
		{"tags", tags},
		{"categories", categories},
	} {
		sorted := taxonomy.Sorted(group.entries)
		m := &PageModel{Kind: PageTaxonomyIndex, Title: titleCase(group.name), Taxonomy: group.name, Entries: sorted}
		if err := write(group.name+"/", m); err != nil {
			return pages, err
		}
		for _, entry := range sorted {
			m := &PageModel{Kind: PageTaxonomy, Title: entry.Label, Taxonomy: group.name, Entry: entry}
			if err := write(group.name+"/"+entry.Slug+"/", m); err != nil {
				return pages, err
			}
		}
	}

	if err := write("random/", &PageModel{Kind: PageRandom, Title: "Random", Routes: a.randomRoutes(docs)}); err != nil {
		return pages, err
	}

	if err := a.renderer.WriteAssets(filepath.Join(out, "assets")); err != nil {
		return pages, fmt.Errorf("write theme assets: %w", err)
	}
	if a.cfg.Theme.Dir != "" {
		if err := copyTree(a.cfg.Theme.Dir, filepath.Join(out, "assets")); err != nil {
			return pages, fmt.Errorf("copy theme dir: %w", err)
		}
	}

	return pages, nil
}

func (a *Assembler) siteInfo() SiteInfo {
	info := SiteInfo{
		Title:            a.cfg.Title,
		BasePath:         a.base,
		ProfileName:      a.cfg.Profile.Name,
		ProfileAvatar:    a.cfg.Profile.Avatar,
		ProfileBio:       a.cfg.Profile.Bio,
		CustomBackground: a.cfg.Theme.CustomBackground,
	}
	if a.cfg.Services.Analytics.Enabled {
		info.AnalyticsSnippet = a.cfg.Services.Analytics.Snippet
	}
	return info
}

// randomRoutes lists the candidate routes for the random-redirect page.
// With zero posts the site root is the only candidate, so the page never
// references an undefined entry.
func (a *Assembler) randomRoutes(docs []*content.Document) []string {
	if len(docs) == 0 {
		return []string{a.base}
	}
	routes := make([]string, 0, len(docs))
	for _, doc := range docs {
		routes = append(routes, a.base+doc.Route())
	}
	return routes
}

func writePage(out, route string, markup []byte) error {
	dir := filepath.Join(out, filepath.FromSlash(strings.TrimSuffix(route, "/")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create page dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, markup, 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", path, err)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
		_, err = io.Copy(out, in)
		return err
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
