package app

import (
	"fmt"
	"log"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/service"
)

// Loader is the per-unit entry point a host build tool calls.
// Each loaded unit is passed through unchanged and recorded for the cycle's report.
type Loader struct {
	aggregator *BuildAggregator
}

// LoaderOptions holds the optional collaborators of a Loader
type LoaderOptions struct {
	// Registry resolves reporters; defaults to the built-in table writing the console to stdout
	Registry *service.SinkRegistry

	// Dispatcher defaults to service.NewDispatcher()
	Dispatcher domain.Dispatcher

	// Logger receives cycle diagnostics; nil discards them
	Logger *log.Logger
}

// NewLoader validates cfg and resolves every reporter once. Configuration
// problems are reported here, before any unit is delivered.
func NewLoader(cfg domain.Configuration, analyzer domain.Analyzer, opts LoaderOptions) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if analyzer == nil {
		return nil, domain.NewInvalidInputError("an analyzer is required", nil)
	}

	registry := opts.Registry
	if registry == nil {
		registry = service.NewSinkRegistry(nil)
	}
	sinks, err := registry.ResolveAll(cfg.Reporters)
	if err != nil {
		return nil, err
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		d := service.NewDispatcher()
		d.SetLogger(opts.Logger)
		dispatcher = d
	}

	aggregator := NewBuildAggregator(analyzer, service.NewLevelProcessor(), dispatcher, sinks, cfg)
	aggregator.SetLogger(opts.Logger)

	return &Loader{aggregator: aggregator}, nil
}

// Load records one unit for handle's current build cycle and returns content unchanged.
// The first call for a handle attaches the finalizer to its build-complete event.
func (l *Loader) Load(handle domain.BuildHandle, path, content string) (string, error) {
	if handle == nil {
		return "", domain.NewInvalidInputError("a build handle is required", nil)
	}
	if !comparableHandle(handle) {
		return "", domain.NewInvalidInputError(fmt.Sprintf("build handle of type %T is not comparable", handle), nil)
	}
	l.aggregator.Register(handle)
	l.aggregator.Accumulate(domain.SourceUnit{Path: path, Content: content})
	return content, nil
}

// Aggregator exposes the loader's aggregator
func (l *Loader) Aggregator() *BuildAggregator {
	return l.aggregator
}
