package shortlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/retry"
	"git.home.luguber.info/inful/blogsmith/internal/slug"
)

// Settings are the preconditions for synchronization. If any of the three
// is empty the whole stage is skipped for the build.
type Settings struct {
	ServiceURL string
	Token      string
	SiteURL    string
	BasePath   string
	Policy     retry.Policy
}

func (s Settings) complete() bool {
	return s.ServiceURL != "" && s.Token != "" && s.SiteURL != ""
}

// Summary reports what one synchronization pass did.
type Summary struct {
	Synced  int
	Failed  int
	Skipped bool
}

// Synchronizer mints short links for documents that lack one and persists
// them back into the source files. It is the only component that writes
// to source storage, and it is idempotent: a document already carrying a
// string-typed short link is left untouched.
type Synchronizer struct {
	settings Settings
	client   *Client
}

// NewSynchronizer builds a Synchronizer; the client is only constructed
// when the settings are complete.
func NewSynchronizer(settings Settings) *Synchronizer {
	s := &Synchronizer{settings: settings}
	if settings.complete() {
		s.client = NewClient(settings.ServiceURL, settings.Token, settings.Policy)
	}
	return s
}

// Sync processes documents sequentially in the given order. Per-document
// failures are logged and never abort the pass or block siblings.
func (s *Synchronizer) Sync(ctx context.Context, docs []*content.Document) Summary {
	if s.client == nil {
		slog.Debug("Short-link synchronization skipped: service URL, token or site URL not configured")
		return Summary{Skipped: true}
	}

	var summary Summary
	for _, doc := range docs {
		if doc.ShortLink != "" {
			continue
		}
		if doc.Fields == nil {
			// Frontmatter did not round-trip at load; rewriting could
			// destroy the original metadata block.
			slog.Warn("Short link skipped for post with unparseable metadata", "path", doc.Path)
			continue
		}

		if err := s.syncOne(ctx, doc); err != nil {
			slog.Warn("Short-link sync failed", "slug", doc.Slug, "error", err)
			summary.Failed++
			continue
		}
		if doc.ShortLink != "" {
			summary.Synced++
		}
	}
	return summary
}

func (s *Synchronizer) syncOne(ctx context.Context, doc *content.Document) error {
	longURL := canonicalURL(s.settings.SiteURL, s.settings.BasePath, doc)

	result, err := s.client.Create(ctx, longURL, doc.Slug)
	switch {
	case errors.Is(err, ErrUnparseableResponse):
		// Non-fatal: the document keeps no short link this build and
		// retries on the next one.
		slog.Warn("Short-link response not understood", "slug", doc.Slug)
		return nil
	case err != nil:
		return err
	}

	link := result.ShortLink
	if result.Kind == Exists {
		// Short slugs mirror document slugs, so the existing link is
		// reconstructible without another round trip.
		link = JoinSlug(s.client.Base(), doc.Slug)
	}

	return s.persist(doc, link)
}

// persist writes the short link into the document's metadata block,
// preserving every other field and the body byte-for-byte.
func (s *Synchronizer) persist(doc *content.Document, link string) error {
	doc.Fields["shortLink"] = link

	raw, err := frontmatter.Serialize(doc.Fields, doc.Style)
	if err != nil {
		return fmt.Errorf("serialize metadata for %s: %w", doc.Path, err)
	}
	out := frontmatter.Join(raw, doc.RawBody, true, doc.Style)

	if err := os.WriteFile(doc.Path, out, 0o644); err != nil {
		return fmt.Errorf("rewrite %s: %w", doc.Path, err)
	}

	doc.ShortLink = link
	doc.HadFrontmatter = true
	return nil
}

func canonicalURL(siteURL, basePath string, doc *content.Document) string {
	trimmed := siteURL
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '/' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed + slug.NormalizeBase(basePath) + doc.Route()
}
