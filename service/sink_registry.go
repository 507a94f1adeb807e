package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ludo-technologies/jsreport/domain"
)

// Built-in sink names
const (
	SinkConsole = "console"
	SinkJSON    = "json"
	SinkYAML    = "yaml"
	SinkMsgpack = "msgpack"
	SinkS3      = "s3"
)

// SinkFactory constructs a built-in sink
type SinkFactory func() domain.Sink

// SinkRegistry resolves reporters to sinks through a fixed table of built-ins
type SinkRegistry struct {
	builtins map[string]SinkFactory
}

// NewSinkRegistry creates a registry holding the built-in sinks.
// The console sink writes to out; nil means stdout.
func NewSinkRegistry(out io.Writer) *SinkRegistry {
	if out == nil {
		out = os.Stdout
	}
	return &SinkRegistry{
		builtins: map[string]SinkFactory{
			SinkConsole: func() domain.Sink { return NewConsoleSink(out) },
			SinkJSON:    func() domain.Sink { return NewJSONSink() },
			SinkYAML:    func() domain.Sink { return NewYAMLSink() },
			SinkMsgpack: func() domain.Sink { return NewMsgpackSink() },
			SinkS3:      func() domain.Sink { return NewS3Sink() },
		},
	}
}

// Names returns the built-in sink names, sorted
func (r *SinkRegistry) Names() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps one reporter to a sink. Invokable reporters are named "function".
func (r *SinkRegistry) Resolve(reporter domain.Reporter) (domain.Sink, error) {
	return r.resolve(reporter, "function")
}

func (r *SinkRegistry) resolve(reporter domain.Reporter, funcName string) (domain.Sink, error) {
	if fn, ok := reporter.Func(); ok {
		return &funcSink{name: funcName, fn: fn}, nil
	}

	name, _ := reporter.Name()
	factory, ok := r.builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.NewConfigurationError("reporter", name, r.Names())
	}
	return factory(), nil
}

// ResolveAll maps every reporter, failing on the first unknown name.
// Invokable reporters are named by their 1-based position, as in "function#2".
func (r *SinkRegistry) ResolveAll(reporters []domain.Reporter) ([]domain.Sink, error) {
	sinks := make([]domain.Sink, 0, len(reporters))
	for i, reporter := range reporters {
		sink, err := r.resolve(reporter, fmt.Sprintf("function#%d", i+1))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// funcSink wraps a caller-supplied reporter function
type funcSink struct {
	name string
	fn   domain.SinkFunc
}

func (s *funcSink) Name() string {
	return s.name
}

func (s *funcSink) Emit(ctx context.Context, report *domain.LeveledReport, cfg domain.Configuration) error {
	return s.fn(ctx, report, cfg)
}
