package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/testutil"
	"github.com/ludo-technologies/jsreport/service"
)

func newTestAggregator(analyzer domain.Analyzer, level domain.Level, sinks ...domain.Sink) *BuildAggregator {
	cfg := domain.Configuration{
		Reporters: []domain.Reporter{domain.Named("console")},
		Level:     level,
	}
	return NewBuildAggregator(analyzer, service.NewLevelProcessor(), service.NewDispatcher(), sinks, cfg)
}

func unit(i int) domain.SourceUnit {
	return domain.SourceUnit{Path: fmt.Sprintf("src/%d.js", i), Content: fmt.Sprintf("// %d", i)}
}

func TestBuildAggregatorAnalyzesUnitsInOrder(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		t.Run(fmt.Sprintf("%d units", n), func(t *testing.T) {
			analyzer := &testutil.RecordingAnalyzer{}
			agg := newTestAggregator(analyzer, domain.LevelRaw)
			handle := &testutil.FakeHandle{}
			require.True(t, agg.Register(handle))

			expected := make([]domain.SourceUnit, n)
			for i := 0; i < n; i++ {
				expected[i] = unit(i)
				agg.Accumulate(expected[i])
			}

			require.NoError(t, handle.Complete(context.Background()))

			calls := analyzer.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, expected, calls[0])
		})
	}
}

func TestBuildAggregatorKeepsDuplicatePaths(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	agg := newTestAggregator(analyzer, domain.LevelRaw)

	agg.Accumulate(domain.SourceUnit{Path: "a.js", Content: "1"})
	agg.Accumulate(domain.SourceUnit{Path: "a.js", Content: "2"})
	require.NoError(t, agg.Finalize(context.Background()))

	require.Len(t, analyzer.Calls(), 1)
	assert.Len(t, analyzer.Calls()[0], 2)
}

func TestBuildAggregatorRegistersOncePerHandle(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	agg := newTestAggregator(analyzer, domain.LevelRaw)
	handle := &testutil.FakeHandle{}

	assert.True(t, agg.Register(handle))
	assert.False(t, agg.Register(handle))
	assert.False(t, agg.RegisterFinalizer(handle, func(context.Context) error { return nil }))
	assert.Equal(t, 1, handle.Hooks())

	// A different handle gets its own callback
	other := &testutil.FakeHandle{}
	assert.True(t, agg.Register(other))
	assert.Equal(t, 1, other.Hooks())

	agg.Accumulate(unit(1))
	require.NoError(t, handle.Complete(context.Background()))

	agg.Accumulate(unit(2))
	require.NoError(t, handle.Complete(context.Background()))

	calls := analyzer.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []domain.SourceUnit{unit(1)}, calls[0])
	assert.Equal(t, []domain.SourceUnit{unit(2)}, calls[1])
}

func TestBuildAggregatorRejectsNilRegistration(t *testing.T) {
	agg := newTestAggregator(&testutil.RecordingAnalyzer{}, domain.LevelRaw)
	assert.False(t, agg.RegisterFinalizer(nil, agg.Finalize))
	assert.False(t, agg.RegisterFinalizer(&testutil.FakeHandle{}, nil))
}

// funcHandle is a handle whose dynamic type cannot key a map
type funcHandle func(domain.FinalizeFunc)

func (h funcHandle) OnBuildComplete(fn domain.FinalizeFunc) { h(fn) }

// abortableHandle records both hook kinds
type abortableHandle struct {
	testutil.FakeHandle
	aborts []domain.AbortFunc
}

func (h *abortableHandle) OnBuildAbort(fn domain.AbortFunc) {
	h.aborts = append(h.aborts, fn)
}

func TestBuildAggregatorRejectsNonComparableHandle(t *testing.T) {
	agg := newTestAggregator(&testutil.RecordingAnalyzer{}, domain.LevelRaw)
	attached := 0
	handle := funcHandle(func(domain.FinalizeFunc) { attached++ })

	assert.NotPanics(t, func() {
		assert.False(t, agg.Register(handle))
	})
	assert.Zero(t, attached)
}

func TestBuildAggregatorDiscardOnAbort(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	agg := newTestAggregator(analyzer, domain.LevelRaw)
	handle := &abortableHandle{}
	require.True(t, agg.Register(handle))
	require.Len(t, handle.aborts, 1)

	agg.Accumulate(unit(1))
	agg.Accumulate(unit(2))
	handle.aborts[0](errors.New("read failed"))
	assert.Equal(t, 0, agg.Pending())

	agg.Accumulate(unit(3))
	require.NoError(t, handle.Complete(context.Background()))

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []domain.SourceUnit{unit(3)}, calls[0])
}

func TestBuildAggregatorBufferEmptyAfterFinalize(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	agg := newTestAggregator(analyzer, domain.LevelRaw)

	agg.Accumulate(unit(1))
	agg.Accumulate(unit(2))
	require.NoError(t, agg.Finalize(context.Background()))
	assert.Equal(t, 0, agg.Pending())

	agg.Accumulate(unit(3))
	require.NoError(t, agg.Finalize(context.Background()))

	calls := analyzer.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []domain.SourceUnit{unit(3)}, calls[1])
}

func TestBuildAggregatorEmptyCycleStillDispatches(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	sink := &testutil.RecordingSink{}
	agg := newTestAggregator(analyzer, domain.LevelProject, sink)

	require.NoError(t, agg.Finalize(context.Background()))

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.NotNil(t, calls[0])
	assert.Empty(t, calls[0])

	reports := sink.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, 0, reports[0].Project.Files)
	assert.Nil(t, reports[0].Project.Averages)
}

func TestBuildAggregatorAnalysisFailure(t *testing.T) {
	cause := errors.New("analyzer exploded")
	analyzer := &testutil.RecordingAnalyzer{Err: cause}
	sink := &testutil.RecordingSink{}
	agg := newTestAggregator(analyzer, domain.LevelRaw, sink)

	agg.Accumulate(unit(1))
	err := agg.Finalize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, domain.HasCode(err, domain.ErrCodeAnalysisError))

	// The failed pass still resets the buffer and nothing is dispatched
	assert.Equal(t, 0, agg.Pending())
	assert.Empty(t, sink.Reports())
}

func TestBuildAggregatorDispatchesLeveledReport(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{Report: testutil.TwoModuleReport()}
	first := &testutil.RecordingSink{SinkName: "first"}
	second := &testutil.RecordingSink{SinkName: "second", Err: errors.New("disk full")}
	agg := newTestAggregator(analyzer, domain.LevelFile, first, second)

	err := agg.Finalize(context.Background())
	require.Error(t, err)

	var dispatchErr *domain.DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, []string{"second"}, dispatchErr.FailedSinks())

	require.Len(t, first.Reports(), 1)
	report := first.Reports()[0]
	assert.Equal(t, domain.LevelFile, report.Level)
	require.NotNil(t, report.File)
	assert.Len(t, report.File.Files, 2)
}

func TestBuildAggregatorConcurrentAccumulate(t *testing.T) {
	analyzer := &testutil.RecordingAnalyzer{}
	agg := newTestAggregator(analyzer, domain.LevelRaw)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				agg.Accumulate(unit(w*perWriter + i))
			}
		}(w)
	}

	// Finalize passes race with writers; no unit may be lost or seen twice
	var finalizeErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			if err := agg.Finalize(context.Background()); err != nil {
				finalizeErr = err
			}
		}
	}()

	wg.Wait()
	<-done
	require.NoError(t, finalizeErr)
	require.NoError(t, agg.Finalize(context.Background()))

	seen := make(map[string]int)
	for _, call := range analyzer.Calls() {
		for _, u := range call {
			seen[u.Path]++
		}
	}
	assert.Len(t, seen, writers*perWriter)
	for path, count := range seen {
		assert.Equal(t, 1, count, path)
	}
}
