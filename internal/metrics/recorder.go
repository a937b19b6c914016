// Package metrics defines observability hooks for the build pipeline.
// The default NoopRecorder keeps metrics strictly optional.
package metrics

import "time"

// Outcome labels for build counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder receives pipeline observations. Implementations may forward to
// Prometheus; all methods must be cheap and never block the build.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncBuildOutcome(outcome string)
	IncShortLinkResult(result string) // result: synced|failed
	SetPagesGenerated(n int)
	SetDocumentsLoaded(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncShortLinkResult(string)                  {}
func (NoopRecorder) SetPagesGenerated(int)                      {}
func (NoopRecorder) SetDocumentsLoaded(int)                     {}
