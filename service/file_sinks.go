package service

import (
	"context"

	"github.com/ludo-technologies/jsreport/domain"
)

// FileSink writes the leveled report to <OutputDir>/<ReportFilename><ext>
type FileSink struct {
	name   string
	format OutputFormat

	// LastPath is the file written by the most recent successful Emit
	LastPath string
}

// NewJSONSink creates the json sink
func NewJSONSink() *FileSink {
	return &FileSink{name: SinkJSON, format: OutputFormatJSON}
}

// NewYAMLSink creates the yaml sink
func NewYAMLSink() *FileSink {
	return &FileSink{name: SinkYAML, format: OutputFormatYAML}
}

// NewMsgpackSink creates the msgpack sink
func NewMsgpackSink() *FileSink {
	return &FileSink{name: SinkMsgpack, format: OutputFormatMsgpack}
}

// Name implements domain.Sink
func (s *FileSink) Name() string {
	return s.name
}

// Emit implements domain.Sink
func (s *FileSink) Emit(ctx context.Context, report *domain.LeveledReport, cfg domain.Configuration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := WriteReportFile(report, s.format, cfg.OutputDir, cfg.ReportFilename)
	if err != nil {
		return err
	}
	s.LastPath = path
	return nil
}
