package buildtool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ludo-technologies/jsreport/domain"
)

// UnitLoader receives every file of a build cycle
type UnitLoader interface {
	Load(handle domain.BuildHandle, path, content string) (string, error)
}

// Options configures a Compiler
type Options struct {
	// Roots are the files and directories to build
	Roots []string

	IncludePatterns  []string
	ExcludePatterns  []string
	RespectGitignore bool

	// Debounce is the quiet period before a watch rebuild
	Debounce time.Duration
}

// BuildResult summarizes one build cycle
type BuildResult struct {
	Cycle    int
	Units    int
	Duration time.Duration
}

// Compiler is a filesystem-driven build host. Each cycle delivers the
// collected files to the loader and then fires the build-complete hooks.
// A cycle that fails part way fires the build-abort hooks instead.
type Compiler struct {
	opts      Options
	loader    UnitLoader
	collector *FileCollector

	mu     sync.Mutex
	hooks  []domain.FinalizeFunc
	aborts []domain.AbortFunc
	cycles int

	// runMu keeps cycles from overlapping
	runMu sync.Mutex

	logger *log.Logger
}

// NewCompiler creates a compiler delivering to loader
func NewCompiler(opts Options, loader UnitLoader) *Compiler {
	return &Compiler{
		opts:      opts,
		loader:    loader,
		collector: NewFileCollector(opts.IncludePatterns, opts.ExcludePatterns, opts.RespectGitignore),
		logger:    log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger for cycle and watch diagnostics
func (c *Compiler) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// OnBuildComplete implements domain.BuildHandle
func (c *Compiler) OnBuildComplete(fn domain.FinalizeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// OnBuildAbort implements domain.AbortableHandle
func (c *Compiler) OnBuildAbort(fn domain.AbortFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborts = append(c.aborts, fn)
}

// Run performs one build cycle. Hook failures are joined into the returned error.
// When reading or loading a file fails, or ctx is cancelled mid-cycle, the
// abort hooks run instead of the build-complete hooks.
func (c *Compiler) Run(ctx context.Context) (*BuildResult, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	start := time.Now()
	c.mu.Lock()
	c.cycles++
	result := &BuildResult{Cycle: c.cycles}
	c.mu.Unlock()

	files, err := c.collector.Collect(c.opts.Roots)
	if err != nil {
		return result, domain.NewFileNotFoundError("failed to collect files", err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, c.abort(result, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return result, c.abort(result, domain.NewFileNotFoundError(path, err))
		}
		if _, err := c.loader.Load(c, path, string(content)); err != nil {
			return result, c.abort(result, fmt.Errorf("failed to load %s: %w", path, err))
		}
		result.Units++
	}

	c.mu.Lock()
	hooks := append([]domain.FinalizeFunc(nil), c.hooks...)
	c.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	result.Duration = time.Since(start)
	c.logger.Printf("build %d: %d units in %s", result.Cycle, result.Units, result.Duration.Round(time.Millisecond))
	return result, errors.Join(errs...)
}

// abort fires the abort hooks for a cycle that stopped with err and returns err
func (c *Compiler) abort(result *BuildResult, err error) error {
	c.mu.Lock()
	aborts := append([]domain.AbortFunc(nil), c.aborts...)
	c.mu.Unlock()

	for _, fn := range aborts {
		fn(err)
	}
	c.logger.Printf("build %d: aborted after %d units: %v", result.Cycle, result.Units, err)
	return err
}

// Watch runs a cycle, then another after every burst of relevant file changes,
// until ctx is cancelled. onCycle is called after each cycle; cycle failures do
// not stop watching.
func (c *Compiler) Watch(ctx context.Context, onCycle func(*BuildResult, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := c.collector.Directories(c.opts.Roots)
	if err != nil {
		return domain.NewFileNotFoundError("failed to list watched directories", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	report := func() {
		result, err := c.Run(ctx)
		if onCycle != nil {
			onCycle(result, err)
		}
	}
	report()

	debounce := c.opts.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !c.relevant(watcher, event) {
				continue
			}
			c.logger.Printf("change: %s %s", event.Op, event.Name)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Printf("watch error: %v", err)

		case <-timer.C:
			report()
		}
	}
}

// relevant filters events down to source changes and follows new directories
func (c *Compiler) relevant(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !c.collector.isExcluded(event.Name) {
				_ = watcher.Add(event.Name)
				return true
			}
			return false
		}
	}

	for _, root := range c.opts.Roots {
		if within(root, event.Name) && c.collector.Accepts(root, event.Name) {
			return true
		}
	}

	// Removed or renamed files disappear from the next cycle
	return (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) && c.collector.IsSourceFile(event.Name)
}

func within(root, path string) bool {
	if root == path {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
