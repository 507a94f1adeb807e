package service

import (
	"io"
	"os"
	"sync"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// maxUnitWidth bounds the unit path shown next to a bar
const maxUnitWidth = 40

// ProgressManagerImpl implements ProgressManager with progress bars on stderr
type ProgressManagerImpl struct {
	mu     sync.Mutex
	writer io.Writer
	tasks  []*progressbar.ProgressBar
}

// NewProgressManager returns a bar-backed manager when enabled and stderr is a
// terminal, and a no-op manager otherwise.
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return &ProgressManagerImpl{writer: os.Stderr}
	}
	return &NoOpProgressManager{}
}

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// StartTask creates a bar counting total source files under title
func (pm *ProgressManagerImpl) StartTask(title string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	pm.mu.Lock()
	pm.tasks = append(pm.tasks, bar)
	pm.mu.Unlock()

	return &TaskProgressImpl{bar: bar, title: title}
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	return true
}

// Close finishes any bars still running
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.tasks {
		_ = bar.Finish()
	}
	pm.tasks = nil
}

// TaskProgressImpl implements TaskProgress with a progressbar
type TaskProgressImpl struct {
	bar   *progressbar.ProgressBar
	title string
}

// Increment adds n to the current progress
func (tp *TaskProgressImpl) Increment(n int) {
	_ = tp.bar.Add(n)
}

// Describe shows the unit being processed after the task title
func (tp *TaskProgressImpl) Describe(unitPath string) {
	tp.bar.Describe(UnitDescription(tp.title, unitPath))
}

// UnitDescription joins title and a unit path, keeping only the tail of long paths
func UnitDescription(title, unitPath string) string {
	if unitPath == "" {
		return title
	}
	runes := []rune(unitPath)
	if len(runes) > maxUnitWidth {
		unitPath = "..." + string(runes[len(runes)-maxUnitWidth+3:])
	}
	return title + " " + unitPath
}

// Complete marks the task as finished
func (tp *TaskProgressImpl) Complete() {
	_ = tp.bar.Finish()
}

// NoOpProgressManager implements ProgressManager with no-op methods
type NoOpProgressManager struct{}

// StartTask returns a no-op task progress
func (pm *NoOpProgressManager) StartTask(_ string, _ int) domain.TaskProgress {
	return &NoOpTaskProgress{}
}

// IsInteractive returns false for no-op manager
func (pm *NoOpProgressManager) IsInteractive() bool {
	return false
}

// Close is a no-op
func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress implements TaskProgress with no-op methods
type NoOpTaskProgress struct{}

// Increment is a no-op
func (tp *NoOpTaskProgress) Increment(_ int) {}

// Describe is a no-op
func (tp *NoOpTaskProgress) Describe(_ string) {}

// Complete is a no-op
func (tp *NoOpTaskProgress) Complete() {}
