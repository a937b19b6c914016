// Package pipeline runs one complete build: load documents, synchronize
// short links, aggregate taxonomies and assemble the output tree. A build
// is all-or-nothing at the pipeline level; per-document problems are
// absorbed by the individual stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/markdown"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/retry"
	"git.home.luguber.info/inful/blogsmith/internal/shortlink"
	"git.home.luguber.info/inful/blogsmith/internal/site"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// Report summarizes one finished build.
type Report struct {
	RunID      string
	Started    time.Time
	Duration   time.Duration
	Documents  int
	Tags       int
	Categories int
	Pages      int
	Defects    int
	ShortLink  shortlink.Summary
}

// String renders a one-line human summary for CLI output.
func (r *Report) String() string {
	return "build " + r.RunID[:8] +
		": " + strconv.Itoa(r.Pages) + " pages from " +
		strconv.Itoa(r.Documents) + " documents in " +
		r.Duration.Truncate(time.Millisecond).String()
}

// Builder executes builds against a fixed configuration. The page
// renderer is injected so the pipeline stays independent of any concrete
// theme.
type Builder struct {
	cfg      *config.Config
	renderer site.Renderer
	recorder metrics.Recorder
}

// NewBuilder wires a Builder. A nil recorder disables metrics.
func NewBuilder(cfg *config.Config, renderer site.Renderer, recorder metrics.Recorder) *Builder {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Builder{cfg: cfg, renderer: renderer, recorder: recorder}
}

// Build runs one build. The returned Report is valid even on error, up
// to the stage that failed.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	slog.Info("Build started", "run", report.RunID)

	err := b.run(ctx, report)

	report.Duration = time.Since(report.Started)
	b.recorder.ObserveBuildDuration(report.Duration)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		slog.Error("Build failed", "run", report.RunID, "duration", report.Duration, "error", err)
		return report, err
	}

	b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	slog.Info("Build finished",
		"run", report.RunID,
		"duration", report.Duration,
		"documents", report.Documents,
		"pages", report.Pages,
		"defects", report.Defects)
	return report, nil
}

func (b *Builder) run(ctx context.Context, report *Report) error {
	mdr := markdown.NewRenderer(markdown.Options{DefaultHideHint: b.cfg.Theme.HideTip})
	loader := content.NewLoader(mdr, b.cfg.Content.AboutFile)

	var (
		docs       []*content.Document
		loadReport *content.Report
		about      *content.Document
	)
	if err := b.stage(ctx, "load", func() error {
		var err error
		docs, loadReport, err = loader.Load(b.cfg.Content.Dir)
		if err != nil {
			return err
		}
		about, err = b.loadAbout(loader)
		return err
	}); err != nil {
		return err
	}
	report.Documents = len(docs)
	report.Defects = len(loadReport.Defects)
	b.recorder.SetDocumentsLoaded(len(docs))

	var tags, categories map[string]*taxonomy.Entry
	if err := b.stage(ctx, "taxonomy", func() error {
		tags, categories = taxonomy.Aggregate(docs)
		return nil
	}); err != nil {
		return err
	}
	report.Tags = len(tags)
	report.Categories = len(categories)

	// Entries hold document pointers, so links minted here are visible on
	// the taxonomy pages too.
	if err := b.stage(ctx, "shortlink", func() error {
		report.ShortLink = b.syncShortLinks(ctx, docs)
		return nil
	}); err != nil {
		return err
	}

	if err := b.stage(ctx, "assemble", func() error {
		pages, err := site.NewAssembler(b.cfg, b.renderer).Assemble(docs, tags, categories, about)
		report.Pages = pages
		return err
	}); err != nil {
		return err
	}
	b.recorder.SetPagesGenerated(report.Pages)
	return nil
}

// stage times one pipeline stage and checks for cancellation up front.
func (b *Builder) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	b.recorder.ObserveStageDuration(name, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s stage: %w", name, err)
	}
	return nil
}

// loadAbout reads the home-page document; its absence is not an error.
func (b *Builder) loadAbout(loader *content.Loader) (*content.Document, error) {
	path := filepath.Join(b.cfg.Content.Dir, b.cfg.Content.AboutFile)
	doc, err := loader.LoadOne(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *Builder) syncShortLinks(ctx context.Context, docs []*content.Document) shortlink.Summary {
	if !b.cfg.Services.ShortLink.Enabled {
		return shortlink.Summary{Skipped: true}
	}
	sync := shortlink.NewSynchronizer(shortlink.Settings{
		ServiceURL: b.cfg.Services.ShortLink.URL,
		Token:      b.cfg.Services.ShortLink.Token,
		SiteURL:    b.cfg.SiteURL,
		BasePath:   b.cfg.BaseURL,
		Policy:     retry.NoRetries(),
	})
	summary := sync.Sync(ctx, docs)
	for i := 0; i < summary.Synced; i++ {
		b.recorder.IncShortLinkResult("synced")
	}
	for i := 0; i < summary.Failed; i++ {
		b.recorder.IncShortLinkResult("failed")
	}
	return summary
}
