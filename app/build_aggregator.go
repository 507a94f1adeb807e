package app

import (
	"context"
	"io"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/service"
)

// BuildAggregator collects the source units of one build cycle and turns them
// into a dispatched report when the build completes.
//
// One aggregator belongs to one build-tool instance. It is safe for concurrent
// use: units delivered while a finalize pass is running are kept for the next cycle.
type BuildAggregator struct {
	analyzer   domain.Analyzer
	processor  *service.LevelProcessor
	dispatcher domain.Dispatcher
	sinks      []domain.Sink
	config     domain.Configuration

	mu         sync.Mutex
	buffer     []domain.SourceUnit
	registered map[domain.BuildHandle]struct{}

	// finalizeMu serializes finalize passes
	finalizeMu sync.Mutex

	logger *log.Logger
}

// NewBuildAggregator creates an aggregator dispatching to sinks with cfg
func NewBuildAggregator(
	analyzer domain.Analyzer,
	processor *service.LevelProcessor,
	dispatcher domain.Dispatcher,
	sinks []domain.Sink,
	cfg domain.Configuration,
) *BuildAggregator {
	if processor == nil {
		processor = service.NewLevelProcessor()
	}
	if dispatcher == nil {
		dispatcher = service.NewDispatcher()
	}
	return &BuildAggregator{
		analyzer:   analyzer,
		processor:  processor,
		dispatcher: dispatcher,
		sinks:      sinks,
		config:     cfg,
		registered: make(map[domain.BuildHandle]struct{}),
		logger:     log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger for cycle diagnostics
func (a *BuildAggregator) SetLogger(logger *log.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if logger != nil {
		a.logger = logger
	}
}

// Accumulate appends unit to the current cycle. Paths are not deduplicated.
func (a *BuildAggregator) Accumulate(unit domain.SourceUnit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buffer = append(a.buffer, unit)
}

// Pending returns the number of units waiting for the next finalize pass
func (a *BuildAggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffer)
}

// RegisterFinalizer attaches onFinalize to handle's build-complete event.
// A handle is registered at most once; repeated calls return false and do nothing.
// Handles that also implement domain.AbortableHandle get Discard attached to
// their abort event. Handles whose dynamic type is not comparable are refused.
func (a *BuildAggregator) RegisterFinalizer(handle domain.BuildHandle, onFinalize domain.FinalizeFunc) bool {
	if !comparableHandle(handle) || onFinalize == nil {
		return false
	}

	a.mu.Lock()
	if _, ok := a.registered[handle]; ok {
		a.mu.Unlock()
		return false
	}
	a.registered[handle] = struct{}{}
	a.mu.Unlock()

	handle.OnBuildComplete(onFinalize)
	if abortable, ok := handle.(domain.AbortableHandle); ok {
		abortable.OnBuildAbort(a.Discard)
	}
	return true
}

// comparableHandle reports whether handle can key the registration map
func comparableHandle(handle domain.BuildHandle) bool {
	return handle != nil && reflect.TypeOf(handle).Comparable()
}

// Discard drops the units of an abandoned cycle so they are not counted
// in the next finalize pass
func (a *BuildAggregator) Discard(reason error) {
	a.mu.Lock()
	dropped := len(a.buffer)
	a.buffer = nil
	logger := a.logger
	a.mu.Unlock()

	logger.Printf("discard: %d units dropped: %v", dropped, reason)
}

// Register attaches the aggregator's own Finalize to handle
func (a *BuildAggregator) Register(handle domain.BuildHandle) bool {
	return a.RegisterFinalizer(handle, a.Finalize)
}

// Finalize runs one pass over the units accumulated since the previous pass:
// analyze, reshape to the configured level, dispatch. The buffer is emptied
// whether or not the pass succeeds.
func (a *BuildAggregator) Finalize(ctx context.Context) error {
	a.finalizeMu.Lock()
	defer a.finalizeMu.Unlock()

	units, logger := a.takeSnapshot()
	start := time.Now()
	logger.Printf("finalize: %d units", len(units))

	raw, err := a.analyzer.AnalyzeProject(ctx, units)
	if err != nil {
		return domain.NewAnalysisError("complexity analysis failed", err)
	}

	leveled, err := a.processor.Process(raw, a.config.Level)
	if err != nil {
		return err
	}

	if err := a.dispatcher.Dispatch(ctx, a.sinks, leveled, a.config); err != nil {
		return err
	}

	logger.Printf("finalize: %d modules dispatched to %d sinks in %s",
		len(raw.Modules), len(a.sinks), time.Since(start).Round(time.Millisecond))
	return nil
}

// takeSnapshot swaps the buffer out under the lock
func (a *BuildAggregator) takeSnapshot() ([]domain.SourceUnit, *log.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	units := a.buffer
	a.buffer = nil
	if units == nil {
		units = []domain.SourceUnit{}
	}
	return units, a.logger
}
