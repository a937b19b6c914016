package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/frontmatter"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
	"git.home.luguber.info/inful/blogsmith/internal/slug"
)

// summaryLength is the number of leading body characters used when a post
// declares no summary of its own.
const summaryLength = 120

// dateFormats accepted in post metadata, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	time.RFC3339,
}

// Defect records a recovered per-document load problem. Defects never
// abort a build; they are logged and surfaced on the report.
type Defect struct {
	Path string
	Err  error
}

// Report summarizes one load pass.
type Report struct {
	Defects []Defect
}

// Loader reads a content directory into Documents.
type Loader struct {
	renderer *markdown.Renderer

	// aboutFile is a reserved file name excluded from the post list (it
	// feeds the home page instead).
	aboutFile string

	// now supplies the build-time fallback for missing dates. Overridable
	// in tests.
	now func() time.Time
}

// NewLoader builds a Loader rendering bodies through the given renderer.
func NewLoader(renderer *markdown.Renderer, aboutFile string) *Loader {
	return &Loader{renderer: renderer, aboutFile: aboutFile, now: time.Now}
}

// Load reads every Markdown file under dir (recursively, hidden files
// skipped) and returns the documents sorted date-descending, ties keeping
// input order. Per-document defects are recovered with defaulted fields.
//
// A missing or unreadable content directory is pipeline-fatal and returns
// an error.
func (l *Loader) Load(dir string) ([]*Document, *Report, error) {
	report := &Report{}
	buildTime := l.now()

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(name, ".md") {
			return nil
		}
		if l.aboutFile != "" && name == l.aboutFile {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read content directory %s: %w", dir, err)
	}
	sort.Strings(paths)

	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		doc, defect := l.loadFile(path, buildTime)
		if defect != nil {
			report.Defects = append(report.Defects, *defect)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date.After(docs[j].Date)
	})

	reportDuplicateSlugs(docs)
	return docs, report, nil
}

// LoadOne loads a single document (used for the about page). A missing
// file returns an error the caller may treat as "use a placeholder".
func (l *Loader) LoadOne(path string) (*Document, error) {
	doc, defect := l.loadFile(path, l.now())
	if doc == nil {
		if defect != nil {
			return nil, defect.Err
		}
		return nil, fmt.Errorf("load %s: no document", path)
	}
	return doc, nil
}

func (l *Loader) loadFile(path string, buildTime time.Time) (*Document, *Defect) {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Skipping unreadable post", "path", path, "error", err)
		return nil, &Defect{Path: path, Err: err}
	}

	var defect *Defect
	fields, body, had, style, err := parseFrontmatter(raw)
	if err != nil {
		// Treated as a post with no metadata; loud but never fatal. Fields
		// stays nil so the short-link synchronizer knows this file cannot
		// be round-tripped safely.
		slog.Warn("Malformed frontmatter, using defaults", "path", path, "error", err)
		defect = &Defect{Path: path, Err: err}
		fields, body, had = nil, raw, false
		style = frontmatter.Style{Newline: "\n"}
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".md")

	doc := &Document{
		Path:           path,
		RawBody:        body,
		Fields:         fields,
		HadFrontmatter: had,
		Style:          style,
	}

	doc.Slug = stringField(fields, "slug")
	if doc.Slug == "" {
		doc.Slug = slug.Slugify(stem)
	}
	doc.Title = stringField(fields, "title")
	if doc.Title == "" {
		doc.Title = stem
	}

	doc.Date, doc.DateText = parseDate(fields["date"], buildTime)

	doc.Tags = taxonomyRefs(fields, "tags", "tag")
	doc.Categories = taxonomyRefs(fields, "categories", "category")

	doc.Summary = stringField(fields, "summary")
	if doc.Summary == "" {
		doc.Summary = deriveSummary(body)
	}

	// A shortLink that is present but not a plain string is a relic of an
	// earlier format bug; treat it as absent so it gets re-synchronized.
	doc.ShortLink = stringField(fields, "shortLink")

	rendered, toc, err := l.renderer.Render(body)
	if err != nil {
		slog.Warn("Render failed, emitting empty body", "path", path, "error", err)
		return doc, &Defect{Path: path, Err: err}
	}
	doc.BodyHTML = string(rendered)
	doc.TOC = toc

	return doc, defect
}

func parseFrontmatter(raw []byte) (map[string]any, []byte, bool, frontmatter.Style, error) {
	fmRaw, body, had, style, err := frontmatter.Split(raw)
	if err != nil {
		return nil, nil, false, style, err
	}
	fields, err := frontmatter.Parse(fmRaw)
	if err != nil {
		return nil, nil, false, style, err
	}
	return fields, body, had, style, nil
}

// parseDate resolves the metadata date value. Missing or unparseable
// values fall back to the build time; the display text keeps the raw
// value when one existed, and is empty otherwise.
func parseDate(value any, buildTime time.Time) (time.Time, string) {
	switch v := value.(type) {
	case time.Time:
		return v, v.Format("2006-01-02")
	case string:
		for _, layout := range dateFormats {
			if d, err := time.Parse(layout, v); err == nil {
				return d, v
			}
		}
		return buildTime, v
	default:
		return buildTime, ""
	}
}

// taxonomyRefs accepts either an ordered sequence or a comma-separated
// string under any of the given keys. Empty labels are dropped.
func taxonomyRefs(fields map[string]any, keys ...string) []TaxonomyRef {
	var labels []string
	for _, key := range keys {
		switch v := fields[key].(type) {
		case []any:
			for _, item := range v {
				labels = append(labels, fmt.Sprint(item))
			}
		case string:
			labels = append(labels, strings.Split(v, ",")...)
		}
		if labels != nil {
			break
		}
	}

	refs := make([]TaxonomyRef, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		s := slug.Slugify(label)
		if s == "" {
			// No sluggable characters means no route for the entry; keeping
			// it would collide with the taxonomy index page.
			slog.Warn("Dropping taxonomy label with no sluggable characters", "label", label)
			continue
		}
		refs = append(refs, TaxonomyRef{Label: label, Slug: s})
	}
	return refs
}

func deriveSummary(body []byte) string {
	text := strings.ReplaceAll(string(body), "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) > summaryLength {
		runes = runes[:summaryLength]
	}
	return strings.TrimSpace(string(runes))
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func reportDuplicateSlugs(docs []*Document) {
	bySlug := make(map[string]string, len(docs))
	for _, doc := range docs {
		if prev, dup := bySlug[doc.Slug]; dup {
			slog.Warn("Duplicate post slug; one route will overwrite the other",
				"slug", doc.Slug, "paths", []string{prev, doc.Path})
		}
		bySlug[doc.Slug] = doc.Path
	}
}
