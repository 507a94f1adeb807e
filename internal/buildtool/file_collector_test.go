package buildtool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/jsreport/internal/testutil"
)

var sourcePatterns = []string{"*.js", "*.jsx", "*.mjs", "*.cjs", "*.ts", "*.tsx", "*.mts", "*.cts"}

func TestFileCollectorCollect(t *testing.T) {
	tempDir := t.TempDir()

	for _, f := range []string{"test.js", "test.ts", "test.jsx", "test.tsx", "test.txt", "lib/util.mjs"} {
		testutil.WriteFile(t, tempDir, f, "// test")
	}

	collector := NewFileCollector(sourcePatterns, nil, false)
	files, err := collector.Collect([]string{tempDir})
	require.NoError(t, err)

	if len(files) != 5 {
		t.Errorf("Expected 5 JS/TS files, got %d: %v", len(files), files)
	}
	assert.Contains(t, files, filepath.Join(tempDir, "lib", "util.mjs"))
	assert.NotContains(t, files, filepath.Join(tempDir, "test.txt"))
}

func TestFileCollectorIsSourceFile(t *testing.T) {
	collector := NewFileCollector(sourcePatterns, nil, false)

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.js", true},
		{"test.ts", true},
		{"test.jsx", true},
		{"test.tsx", true},
		{"test.mjs", true},
		{"test.cjs", true},
		{"test.mts", true},
		{"test.cts", true},
		{"src/deep/test.js", true},
		{"test.py", false},
		{"test.go", false},
		{"test.txt", false},
	}

	for _, tt := range tests {
		if result := collector.IsSourceFile(tt.path); result != tt.expected {
			t.Errorf("IsSourceFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileCollectorExcludePatterns(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, "src/app.js", "export {}")
	testutil.WriteFile(t, tempDir, "node_modules/pkg/index.js", "module.exports = {}")
	testutil.WriteFile(t, tempDir, "dist/app.min.js", "x")
	testutil.WriteFile(t, tempDir, "src/vendor.min.js", "x")
	testutil.WriteFile(t, tempDir, "src/generated/api.js", "x")

	collector := NewFileCollector(sourcePatterns, []string{"node_modules", "*.min.js", "src/generated"}, false)
	files, err := collector.Collect([]string{tempDir})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(tempDir, "src", "app.js")}, files)
}

func TestFileCollectorRespectsGitignore(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, ".gitignore", "out/\n*.gen.ts\n")
	testutil.WriteFile(t, tempDir, "index.ts", "export {}")
	testutil.WriteFile(t, tempDir, "schema.gen.ts", "export {}")
	testutil.WriteFile(t, tempDir, "out/bundle.js", "x")

	withIgnore := NewFileCollector(sourcePatterns, nil, true)
	files, err := withIgnore.Collect([]string{tempDir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "index.ts")}, files)

	withoutIgnore := NewFileCollector(sourcePatterns, nil, false)
	files, err = withoutIgnore.Collect([]string{tempDir})
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestFileCollectorDirectFileAndDuplicates(t *testing.T) {
	tempDir := t.TempDir()
	file := testutil.WriteFile(t, tempDir, "main.js", "main()")
	notes := testutil.WriteFile(t, tempDir, "notes.md", "# notes")

	collector := NewFileCollector(sourcePatterns, nil, false)
	files, err := collector.Collect([]string{file, tempDir, notes})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestFileCollectorMissingRoot(t *testing.T) {
	collector := NewFileCollector(sourcePatterns, nil, false)
	_, err := collector.Collect([]string{filepath.Join(t.TempDir(), "missing")})
	assert.True(t, os.IsNotExist(err))
}

func TestFileCollectorDirectories(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, "src/a.js", "a")
	testutil.WriteFile(t, tempDir, "node_modules/x/b.js", "b")

	collector := NewFileCollector(sourcePatterns, []string{"node_modules"}, false)
	dirs, err := collector.Directories([]string{tempDir})
	require.NoError(t, err)
	assert.Equal(t, []string{tempDir, filepath.Join(tempDir, "src")}, dirs)
}

func TestFileCollectorAccepts(t *testing.T) {
	tempDir := t.TempDir()
	testutil.WriteFile(t, tempDir, ".gitignore", "tmp/\n")

	collector := NewFileCollector(sourcePatterns, []string{"node_modules"}, true)
	assert.True(t, collector.Accepts(tempDir, filepath.Join(tempDir, "src", "a.ts")))
	assert.False(t, collector.Accepts(tempDir, filepath.Join(tempDir, "src", "a.css")))
	assert.False(t, collector.Accepts(tempDir, filepath.Join(tempDir, "node_modules")))
}
