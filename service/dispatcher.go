package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ludo-technologies/jsreport/domain"
	"golang.org/x/sync/errgroup"
)

// DispatcherImpl implements domain.Dispatcher.
// Every sink runs in its own goroutine; a failing sink never cancels its siblings.
type DispatcherImpl struct {
	logger *log.Logger
	mu     sync.RWMutex
}

// NewDispatcher creates a new dispatcher
func NewDispatcher() *DispatcherImpl {
	return &DispatcherImpl{
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger used for sink failures
func (d *DispatcherImpl) SetLogger(logger *log.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if logger != nil {
		d.logger = logger
	}
}

// Dispatch starts every sink, waits for all of them to settle, and reports
// the failures of all sinks that returned an error.
func (d *DispatcherImpl) Dispatch(ctx context.Context, sinks []domain.Sink, report *domain.LeveledReport, cfg domain.Configuration) error {
	if len(sinks) == 0 {
		return nil
	}

	d.mu.RLock()
	logger := d.logger
	d.mu.RUnlock()

	// A plain group: no limit, so every sink is started before Wait, and no
	// derived context, so one failure does not cancel the rest.
	var g errgroup.Group

	// Indexed by sink position so failures are reported in configuration order
	failures := make([]error, len(sinks))

	for i, sink := range sinks {
		g.Go(func() error {
			failures[i] = emitSafely(ctx, sink, report, cfg)
			if failures[i] != nil {
				logger.Printf("sink %s failed: %v", sink.Name(), failures[i])
			}
			return nil
		})
	}

	// Goroutines always return nil; failures are collected above.
	_ = g.Wait()

	var dispatchErr domain.DispatchError
	for i, err := range failures {
		if err != nil {
			dispatchErr.Failures = append(dispatchErr.Failures, domain.SinkFailure{
				Sink: sinks[i].Name(),
				Err:  err,
			})
		}
	}
	if len(dispatchErr.Failures) > 0 {
		return &dispatchErr
	}
	return nil
}

// emitSafely turns a panicking sink into an ordinary failure
func emitSafely(ctx context.Context, sink domain.Sink, report *domain.LeveledReport, cfg domain.Configuration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Emit(ctx, report, cfg)
}
