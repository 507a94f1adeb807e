package buildtool

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileCollector selects the source files of a build from its roots
type FileCollector struct {
	includePatterns  []string
	excludePatterns  []string
	respectGitignore bool
}

// NewFileCollector creates a collector. Patterns are matched against file and
// directory names; an exclude pattern containing a separator is also matched
// as a path fragment.
func NewFileCollector(includePatterns, excludePatterns []string, respectGitignore bool) *FileCollector {
	return &FileCollector{
		includePatterns:  includePatterns,
		excludePatterns:  excludePatterns,
		respectGitignore: respectGitignore,
	}
}

// Collect returns the matching files under paths, in lexical order per root.
// Files given directly are kept when they match the include patterns.
func (c *FileCollector) Collect(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if c.IsSourceFile(root) && !c.isExcluded(root) {
				add(root)
			}
			continue
		}

		gitignore := c.loadGitignore(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && c.ignored(root, path, d.IsDir(), gitignore) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && c.IsSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Directories returns every directory under paths that Collect would descend into
func (c *FileCollector) Directories(paths []string) ([]string, error) {
	var dirs []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			dirs = append(dirs, filepath.Dir(root))
			continue
		}

		gitignore := c.loadGitignore(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && c.ignored(root, path, true, gitignore) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IsSourceFile checks a file name against the include patterns
func (c *FileCollector) IsSourceFile(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range c.includePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Accepts reports whether a changed path below root belongs to the build
func (c *FileCollector) Accepts(root, path string) bool {
	if !c.IsSourceFile(path) {
		return false
	}
	return !c.ignored(root, path, false, c.loadGitignore(root))
}

func (c *FileCollector) ignored(root, path string, isDir bool, gitignore *ignore.GitIgnore) bool {
	if c.isExcluded(path) {
		return true
	}
	if gitignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return gitignore.MatchesPath(rel)
}

// isExcluded checks if a path matches any exclude pattern
func (c *FileCollector) isExcluded(path string) bool {
	name := filepath.Base(path)
	slashed := filepath.ToSlash(path)
	for _, pattern := range c.excludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if strings.Contains(pattern, "/") && strings.Contains(slashed, pattern) {
			return true
		}
	}
	return false
}

// loadGitignore compiles root/.gitignore, if present and enabled
func (c *FileCollector) loadGitignore(root string) *ignore.GitIgnore {
	if !c.respectGitignore {
		return nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gitignore, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gitignore
}
