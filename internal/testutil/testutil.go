// Package testutil provides fixtures and fakes shared by jsreport tests
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ludo-technologies/jsreport/domain"
)

// TwoModuleReport returns a raw report with two modules whose method averages
// and maintainability differ, plus one class in the second module.
func TwoModuleReport() *domain.ProjectReport {
	moduleA := domain.ModuleReport{
		SrcPath:         "src/a.js",
		Maintainability: 119.88,
		Aggregate:       metrics(3.5, 0.031, 14.5, 10, 5),
		MethodAggregate: metrics(7, 0.062, 29, 20, 10),
		MethodAverage:   metrics(3.5, 0.031, 14.5, 10, 5),
		Methods: []domain.MethodReport{
			{Name: "parse", LineStart: 1, LineEnd: 10, Metrics: metrics(4, 0.04, 18, 12, 6)},
			{Name: "format", LineStart: 12, LineEnd: 19, Metrics: metrics(3, 0.022, 11, 8, 4)},
		},
	}

	moduleB := domain.ModuleReport{
		SrcPath:         "src/b.js",
		Maintainability: 96.843,
		Aggregate:       metrics(7, 0.082, 29.438, 22.5, 14.5),
		MethodAggregate: metrics(14, 0.164, 58.876, 45, 29),
		MethodAverage:   metrics(7, 0.082, 29.438, 22.5, 14.5),
		Methods: []domain.MethodReport{
			{Name: "main", LineStart: 1, LineEnd: 30, Metrics: metrics(9, 0.1, 35, 30, 20)},
		},
		Classes: []domain.ClassReport{
			{
				Name:            "Store",
				LineStart:       32,
				LineEnd:         50,
				MethodAggregate: metrics(5, 0.064, 23.876, 15, 9),
				MethodAverage:   metrics(5, 0.064, 23.876, 15, 9),
				Methods: []domain.MethodReport{
					{Name: "get", LineStart: 33, LineEnd: 47, Metrics: metrics(5, 0.064, 23.876, 15, 9)},
				},
			},
		},
	}

	return &domain.ProjectReport{
		ModuleAverage: domain.ModuleAverage{
			Maintainability: 108.362,
			MethodAverage:   metrics(5.25, 0.057, 21.969, 16.25, 9.75),
		},
		Modules: []domain.ModuleReport{moduleA, moduleB},
	}
}

// EmptyReport returns a raw report with zero modules
func EmptyReport() *domain.ProjectReport {
	return &domain.ProjectReport{Modules: []domain.ModuleReport{}}
}

func metrics(cyclomatic, bugs, difficulty, physical, logical float64) domain.Metrics {
	return domain.Metrics{
		Cyclomatic: cyclomatic,
		Halstead: domain.HalsteadMetrics{
			Bugs:       bugs,
			Difficulty: difficulty,
		},
		Sloc: domain.SlocMetrics{
			Physical: physical,
			Logical:  logical,
		},
	}
}

// RecordingAnalyzer records every call and returns Report (or Err)
type RecordingAnalyzer struct {
	mu     sync.Mutex
	calls  [][]domain.SourceUnit
	Report *domain.ProjectReport
	Err    error
}

// AnalyzeProject implements domain.Analyzer
func (a *RecordingAnalyzer) AnalyzeProject(_ context.Context, units []domain.SourceUnit) (*domain.ProjectReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	snapshot := make([]domain.SourceUnit, len(units))
	copy(snapshot, units)
	a.calls = append(a.calls, snapshot)
	if a.Err != nil {
		return nil, a.Err
	}
	if a.Report != nil {
		return a.Report, nil
	}
	return EmptyReport(), nil
}

// Calls returns the units of every call in order
func (a *RecordingAnalyzer) Calls() [][]domain.SourceUnit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]domain.SourceUnit(nil), a.calls...)
}

// FakeHandle is a build handle whose build-complete event is fired by hand
type FakeHandle struct {
	mu    sync.Mutex
	hooks []domain.FinalizeFunc
}

// OnBuildComplete implements domain.BuildHandle
func (h *FakeHandle) OnBuildComplete(fn domain.FinalizeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Hooks returns the number of attached callbacks
func (h *FakeHandle) Hooks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Complete fires the build-complete event and joins hook errors
func (h *FakeHandle) Complete(ctx context.Context) error {
	h.mu.Lock()
	hooks := append([]domain.FinalizeFunc(nil), h.hooks...)
	h.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordingSink captures every report it receives
type RecordingSink struct {
	SinkName string
	Err      error

	mu      sync.Mutex
	reports []*domain.LeveledReport
}

// Name implements domain.Sink
func (s *RecordingSink) Name() string {
	if s.SinkName == "" {
		return "recording"
	}
	return s.SinkName
}

// Emit implements domain.Sink
func (s *RecordingSink) Emit(_ context.Context, report *domain.LeveledReport, _ domain.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.Err
}

// Reports returns the reports received so far
func (s *RecordingSink) Reports() []*domain.LeveledReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.LeveledReport(nil), s.reports...)
}

// WriteFile creates a file below dir, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}
