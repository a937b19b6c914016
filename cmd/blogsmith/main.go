package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/history"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/pipeline"
	"git.home.luguber.info/inful/blogsmith/internal/publish"
	"git.home.luguber.info/inful/blogsmith/internal/server"
	"git.home.luguber.info/inful/blogsmith/internal/theme"
	"git.home.luguber.info/inful/blogsmith/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"blogsmith.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct{} `cmd:"" help:"Build the site once"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Serve struct {
		Addr string `short:"a" help:"Listen address" default:"127.0.0.1:8080"`
	} `cmd:"" help:"Serve the site locally and rebuild on changes"`

	Publish struct {
		Branch  string `help:"Branch receiving the published tree" default:"site"`
		Remote  string `help:"Remote URL to push to (optional)"`
		Message string `short:"m" help:"Commit message"`
	} `cmd:"" help:"Commit the generated site to a git branch"`

	History struct {
		Limit int `short:"n" help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"List recent build runs"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "serve":
		err = runServe()
	case "publish":
		err = runPublish()
	case "history":
		err = runHistory()
	default:
		err = fmt.Errorf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func newBuilder(cfg *config.Config, registry *prometheus.Registry) (*pipeline.Builder, error) {
	th, err := theme.New(theme.Options{CustomBackground: cfg.Theme.CustomBackground})
	if err != nil {
		return nil, err
	}
	var recorder metrics.Recorder
	if registry != nil {
		recorder = metrics.NewPrometheusRecorder(registry)
	}
	return pipeline.NewBuilder(cfg, th, recorder), nil
}

// recordHistory stores the run when a history database is configured.
// History failures never fail a build.
func recordHistory(cfg *config.Config, report *pipeline.Report, buildErr error) {
	if cfg.Build.HistoryDB == "" || report == nil {
		return
	}
	store, err := history.NewStore(cfg.Build.HistoryDB)
	if err != nil {
		slog.Warn("Build history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	run := history.Run{
		ID:        report.RunID,
		Started:   report.Started,
		Duration:  report.Duration,
		Documents: report.Documents,
		Pages:     report.Pages,
		Defects:   report.Defects,
		Outcome:   history.OutcomeSuccess,
	}
	if buildErr != nil {
		run.Outcome = history.OutcomeFailed
		run.Error = buildErr.Error()
	}
	if err := store.Record(context.Background(), run); err != nil {
		slog.Warn("Recording build history failed", "error", err)
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	builder, err := newBuilder(cfg, nil)
	if err != nil {
		return err
	}

	report, err := builder.Build(context.Background())
	recordHistory(cfg, report, err)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runServe() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	builder, err := newBuilder(cfg, registry)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The first build must succeed before anything is served; later
	// rebuild failures keep the previous output tree on disk.
	report, err := builder.Build(ctx)
	recordHistory(cfg, report, err)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	rebuild := func() {
		report, err := builder.Build(ctx)
		recordHistory(cfg, report, err)
		if err != nil {
			slog.Warn("Rebuild failed, keeping previous output", "error", err)
		}
	}

	sched := watch.NewScheduler(watch.DefaultDebounce, rebuild)
	watcher, err := watch.NewWatcher(sched)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	watcher.Watch(cfg.Content.Dir, cfg.Theme.Dir, CLI.Config)
	go func() { _ = watcher.Run(ctx) }()

	if err := startPeriodicRebuild(ctx, cfg, sched); err != nil {
		return err
	}

	return server.New(CLI.Serve.Addr, cfg.Output.Dir, registry).Run(ctx)
}

// startPeriodicRebuild arms an optional timed full rebuild on top of the
// filesystem watch. It notifies the same scheduler, so the single-flight
// guarantee holds for both sources.
func startPeriodicRebuild(ctx context.Context, cfg *config.Config, sched *watch.Scheduler) error {
	interval, err := cfg.ScheduleInterval()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create periodic scheduler: %w", err)
	}
	_, err = cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Periodic rebuild triggered", "interval", interval)
			sched.Notify()
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("schedule periodic rebuild: %w", err)
	}

	cron.Start()
	go func() {
		<-ctx.Done()
		_ = cron.Shutdown()
	}()
	slog.Info("Periodic rebuild enabled", "interval", interval)
	return nil
}

func runPublish() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	hash, err := publish.Publish(context.Background(), publish.Options{
		Dir:     cfg.Output.Dir,
		Branch:  CLI.Publish.Branch,
		Remote:  CLI.Publish.Remote,
		Message: CLI.Publish.Message,
	})
	if err != nil {
		return err
	}
	if hash == "" {
		fmt.Println("nothing to publish")
		return nil
	}
	fmt.Println("published", hash)
	return nil
}

func runHistory() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if cfg.Build.HistoryDB == "" {
		return fmt.Errorf("no history database configured (set build.historyDb)")
	}
	store, err := history.NewStore(cfg.Build.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded builds")
		return nil
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %s  %-7s  %d docs  %d pages  %s",
			run.Started.Format(time.DateTime), run.ID[:8], run.Outcome,
			run.Documents, run.Pages, run.Duration.Truncate(time.Millisecond))
		if run.Error != "" {
			line += "  " + run.Error
		}
		fmt.Println(line)
	}
	return nil
}
