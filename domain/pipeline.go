package domain

import "context"

// SourceUnit is one file delivered by the build tool
type SourceUnit struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FinalizeFunc runs when a build cycle completes. A non-nil error marks the cycle failed.
type FinalizeFunc func(ctx context.Context) error

// AbortFunc runs when a build cycle stops before completing, with the reason
type AbortFunc func(err error)

// BuildHandle identifies one build-tool compiler instance.
// Handles are compared by identity, so implementations must have a comparable
// dynamic type (normally a pointer). Handles of other types are refused.
type BuildHandle interface {
	// OnBuildComplete attaches fn to the build-complete event.
	// fn is called once per build cycle.
	OnBuildComplete(fn FinalizeFunc)
}

// AbortableHandle is a BuildHandle that also announces cycles abandoned
// after some files were delivered, so listeners can drop what they buffered.
type AbortableHandle interface {
	BuildHandle

	// OnBuildAbort attaches fn to the build-abort event. A cycle fires
	// either its complete hooks or its abort hooks, never both.
	OnBuildAbort(fn AbortFunc)
}

// Analyzer turns a set of source units into a raw project report
type Analyzer interface {
	AnalyzeProject(ctx context.Context, units []SourceUnit) (*ProjectReport, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface
type AnalyzerFunc func(ctx context.Context, units []SourceUnit) (*ProjectReport, error)

// AnalyzeProject calls f
func (f AnalyzerFunc) AnalyzeProject(ctx context.Context, units []SourceUnit) (*ProjectReport, error) {
	return f(ctx, units)
}

// SinkFunc is a caller-supplied reporter
type SinkFunc func(ctx context.Context, report *LeveledReport, cfg Configuration) error

// Sink consumes a leveled report
type Sink interface {
	// Name identifies the sink in diagnostics
	Name() string

	// Emit writes the report somewhere
	Emit(ctx context.Context, report *LeveledReport, cfg Configuration) error
}

// Dispatcher fans a leveled report out to sinks
type Dispatcher interface {
	Dispatch(ctx context.Context, sinks []Sink, report *LeveledReport, cfg Configuration) error
}

// ProgressManager creates progress trackers for long-running tasks
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
