package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/testutil"
)

func init() {
	color.NoColor = true
}

func TestConsoleHeaders(t *testing.T) {
	assert.Equal(t, "File", ConsoleHeaders(domain.LevelRaw)[0])
	assert.Equal(t, "File", ConsoleHeaders(domain.LevelFile)[0])
	assert.Equal(t, []string{"Project", "Files"}, ConsoleHeaders(domain.LevelProject)[:2])
	assert.Equal(t, []string{"Name", "Type"}, ConsoleHeaders(domain.LevelMethod)[:2])
	for _, level := range domain.Levels() {
		assert.Equal(t, "Maintblty", ConsoleHeaders(level)[len(ConsoleHeaders(level))-1])
	}
}

func TestConsoleSinkRendersEveryLevel(t *testing.T) {
	for _, level := range domain.Levels() {
		t.Run(string(level), func(t *testing.T) {
			report, err := NewLevelProcessor().Process(testutil.TwoModuleReport(), level)
			require.NoError(t, err)

			var out bytes.Buffer
			err = NewConsoleSink(&out).Emit(context.Background(), report, domain.Configuration{})
			require.NoError(t, err)

			text := out.String()
			assert.True(t, strings.HasPrefix(text, ConsoleTitle+"\n"))
			for _, header := range ConsoleHeaders(level) {
				assert.Contains(t, text, header)
			}
		})
	}
}

func TestConsoleSinkRows(t *testing.T) {
	report, err := NewLevelProcessor().Process(testutil.TwoModuleReport(), domain.LevelFile)
	require.NoError(t, err)

	table, err := RenderConsoleTable(report)
	require.NoError(t, err)
	assert.Contains(t, table, "src/a.js")
	assert.Contains(t, table, "src/b.js")
	assert.Contains(t, table, "119.88")
	assert.Contains(t, table, "108.362")
	assert.Contains(t, table, "Average")
}

func TestConsoleSinkMethodTree(t *testing.T) {
	report, err := NewLevelProcessor().Process(testutil.TwoModuleReport(), domain.LevelMethod)
	require.NoError(t, err)

	table, err := RenderConsoleTable(report)
	require.NoError(t, err)
	for _, name := range []string{"project", "src/a.js", "parse", "format", "main", "get"} {
		assert.Contains(t, table, name)
	}
}

func TestConsoleSinkProjectWithoutModules(t *testing.T) {
	report, err := NewLevelProcessor().Process(testutil.EmptyReport(), domain.LevelProject)
	require.NoError(t, err)

	table, err := RenderConsoleTable(report)
	require.NoError(t, err)
	assert.Contains(t, table, "Project")
	assert.Contains(t, table, "-")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestConsoleSinkNeverFails(t *testing.T) {
	sink := NewConsoleSink(failingWriter{})
	report, err := NewLevelProcessor().Process(testutil.TwoModuleReport(), domain.LevelRaw)
	require.NoError(t, err)

	assert.NoError(t, sink.Emit(context.Background(), report, domain.Configuration{}))
	assert.NoError(t, sink.Emit(context.Background(), nil, domain.Configuration{}))
	assert.NoError(t, sink.Emit(context.Background(), &domain.LeveledReport{Level: domain.LevelFile}, domain.Configuration{}))
}

func TestFormatMaintainability(t *testing.T) {
	v := 90.5
	assert.Equal(t, "90.5", formatMaintainability(&v))
	assert.Equal(t, "-", formatMaintainability(nil))
}
