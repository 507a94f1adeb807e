package service

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/testutil"
)

func processFixture(t *testing.T, level domain.Level) *domain.LeveledReport {
	t.Helper()
	report, err := NewLevelProcessor().Process(testutil.TwoModuleReport(), level)
	require.NoError(t, err)
	return report
}

func TestJSONSinkRoundTrip(t *testing.T) {
	for _, level := range domain.Levels() {
		t.Run(string(level), func(t *testing.T) {
			dir := t.TempDir()
			report := processFixture(t, level)
			cfg := domain.Configuration{Level: level, OutputDir: dir, ReportFilename: "complexity"}

			sink := NewJSONSink()
			require.NoError(t, sink.Emit(context.Background(), report, cfg))
			assert.Equal(t, filepath.Join(dir, "complexity.json"), sink.LastPath)

			data, err := os.ReadFile(sink.LastPath)
			require.NoError(t, err)

			var decoded domain.LeveledReport
			decoded.Level = level
			switch level {
			case domain.LevelRaw:
				decoded.Raw = &domain.ProjectReport{}
			case domain.LevelFile:
				decoded.File = &domain.FileLevelReport{}
			case domain.LevelProject:
				decoded.Project = &domain.ProjectLevelReport{}
			case domain.LevelMethod:
				decoded.Tree = &domain.ReportNode{}
			}
			require.NoError(t, json.Unmarshal(data, decoded.Value()))
			assert.Equal(t, report.Value(), decoded.Value())
		})
	}
}

func TestJSONSinkFormatting(t *testing.T) {
	dir := t.TempDir()
	report := processFixture(t, domain.LevelProject)
	cfg := domain.Configuration{OutputDir: dir, ReportFilename: "report"}

	require.NoError(t, NewJSONSink().Emit(context.Background(), report, cfg))
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "{", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `    "files": 2`), lines[1])
}

func TestJSONSinkSuffixNotDuplicated(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"complexity", "complexity.json"},
		{"complexity.json", "complexity.json"},
		{"complexity.json.json", "complexity.json.json"},
		{"report.v2", "report.v2.json"},
		{"x.json", "x.json"},
		{".json", ".json.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReportFileName(tt.name, ".json"))
		})
	}
}

func TestJSONSinkCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "complexity")
	cfg := domain.Configuration{OutputDir: dir, ReportFilename: "r.json"}

	require.NoError(t, NewJSONSink().Emit(context.Background(), processFixture(t, domain.LevelFile), cfg))
	_, err := os.Stat(filepath.Join(dir, "r.json"))
	assert.NoError(t, err)
}

func TestJSONSinkErrors(t *testing.T) {
	report := processFixture(t, domain.LevelFile)

	err := NewJSONSink().Emit(context.Background(), report, domain.Configuration{OutputDir: t.TempDir()})
	assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))

	// The output directory path is occupied by a regular file
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err = NewJSONSink().Emit(context.Background(), report, domain.Configuration{OutputDir: blocker, ReportFilename: "r"})
	assert.True(t, domain.HasCode(err, domain.ErrCodeOutputError))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewJSONSink().Emit(ctx, report, domain.Configuration{OutputDir: t.TempDir(), ReportFilename: "r"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYAMLSinkWritesActiveVariant(t *testing.T) {
	dir := t.TempDir()
	report := processFixture(t, domain.LevelProject)
	cfg := domain.Configuration{OutputDir: dir, ReportFilename: "complexity.yaml"}

	sink := NewYAMLSink()
	require.NoError(t, sink.Emit(context.Background(), report, cfg))
	assert.Equal(t, filepath.Join(dir, "complexity.yaml"), sink.LastPath)

	data, err := os.ReadFile(sink.LastPath)
	require.NoError(t, err)

	var decoded domain.ProjectLevelReport
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, *report.Project, decoded)
}

func TestMsgpackSinkUsesJSONFieldNames(t *testing.T) {
	dir := t.TempDir()
	report := processFixture(t, domain.LevelFile)
	cfg := domain.Configuration{OutputDir: dir, ReportFilename: "complexity"}

	sink := NewMsgpackSink()
	require.NoError(t, sink.Emit(context.Background(), report, cfg))
	assert.Equal(t, filepath.Join(dir, "complexity.msgpack"), sink.LastPath)

	data, err := os.ReadFile(sink.LastPath)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(data, &generic))
	assert.Contains(t, generic, "files")
	assert.Contains(t, generic, "averages")
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(processFixture(t, domain.LevelRaw), OutputFormat("xml"), &buf)
	assert.Error(t, err)
}

func TestLeveledReportMarshalJSON(t *testing.T) {
	report := processFixture(t, domain.LevelProject)

	direct, err := json.Marshal(report)
	require.NoError(t, err)
	variant, err := json.Marshal(report.Project)
	require.NoError(t, err)
	assert.JSONEq(t, string(variant), string(direct))
}
