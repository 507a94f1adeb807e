package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/parser"
)

// ProjectAnalyzer implements domain.Analyzer on tree-sitter.
// Module reports are cached by path and content, so unchanged units are not
// reanalyzed across build cycles.
type ProjectAnalyzer struct {
	modules  *ModuleAnalyzer
	cache    *lru.Cache[string, domain.ModuleReport]
	workers  int
	progress domain.ProgressManager

	mu     sync.RWMutex
	logger *log.Logger
}

// NewProjectAnalyzer creates an analyzer. A cacheSize of zero disables caching.
func NewProjectAnalyzer(opts Options, cacheSize int) (*ProjectAnalyzer, error) {
	a := &ProjectAnalyzer{
		modules: NewModuleAnalyzer(opts),
		workers: runtime.NumCPU(),
		logger:  log.New(io.Discard, "", 0),
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, domain.ModuleReport](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create module cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// SetLogger sets the logger used for cache diagnostics
func (a *ProjectAnalyzer) SetLogger(logger *log.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if logger != nil {
		a.logger = logger
	}
}

// SetProgressManager enables progress reporting
func (a *ProjectAnalyzer) SetProgressManager(pm domain.ProgressManager) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progress = pm
}

// SetWorkers bounds the number of units analyzed at once
func (a *ProjectAnalyzer) SetWorkers(n int) {
	if n > 0 {
		a.workers = n
	}
}

// AnalyzeProject implements domain.Analyzer. Modules keep the order of units.
func (a *ProjectAnalyzer) AnalyzeProject(ctx context.Context, units []domain.SourceUnit) (*domain.ProjectReport, error) {
	a.mu.RLock()
	logger, progress := a.logger, a.progress
	a.mu.RUnlock()

	var task domain.TaskProgress
	if progress != nil && len(units) > 0 {
		task = progress.StartTask("Analyzing complexity", len(units))
		defer task.Complete()
	}

	modules := make([]domain.ModuleReport, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, unit := range units {
		g.Go(func() error {
			if task != nil {
				task.Describe(unit.Path)
			}
			report, hit, err := a.analyzeUnit(gctx, unit)
			if err != nil {
				return err
			}
			if hit {
				logger.Printf("cache hit: %s", unit.Path)
			}
			modules[i] = report
			if task != nil {
				task.Increment(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.ProjectReport{
		ModuleAverage: projectAverage(modules),
		Modules:       modules,
	}, nil
}

// analyzeUnit returns the cached report for unit or computes a new one
func (a *ProjectAnalyzer) analyzeUnit(ctx context.Context, unit domain.SourceUnit) (domain.ModuleReport, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ModuleReport{}, false, err
	}

	key := cacheKey(unit)
	if a.cache != nil {
		if report, ok := a.cache.Get(key); ok {
			return report, true, nil
		}
	}

	source := []byte(unit.Content)
	tree, err := parser.ParseForLanguage(ctx, unit.Path, source)
	if err != nil {
		return domain.ModuleReport{}, false, domain.NewParseError(unit.Path, err)
	}
	defer tree.Close()

	report, err := a.modules.Analyze(unit.Path, source, tree.RootNode())
	if err != nil {
		return domain.ModuleReport{}, false, err
	}

	if a.cache != nil {
		a.cache.Add(key, *report)
	}
	return *report, false, nil
}

// cacheKey identifies a unit by path and content digest
func cacheKey(unit domain.SourceUnit) string {
	sum := sha256.Sum256([]byte(unit.Content))
	return unit.Path + "\x00" + hex.EncodeToString(sum[:])
}

// CacheLen returns the number of cached module reports
func (a *ProjectAnalyzer) CacheLen() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Len()
}
