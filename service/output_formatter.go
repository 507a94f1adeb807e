package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// OutputFormat names an on-disk encoding of a leveled report
type OutputFormat string

const (
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatMsgpack OutputFormat = "msgpack"
)

// Extension returns the file suffix for the format, including the dot
func (f OutputFormat) Extension() string {
	return "." + string(f)
}

// JSONIndent is the indentation used for JSON reports
const JSONIndent = "    "

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", JSONIndent)
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// WriteMsgpack writes data as MessagePack using the JSON field names
func WriteMsgpack(writer io.Writer, data interface{}) error {
	encoder := msgpack.NewEncoder(writer)
	encoder.SetCustomStructTag("json")
	return encoder.Encode(data)
}

// Write encodes the report's active variant in the given format
func Write(report *domain.LeveledReport, format OutputFormat, writer io.Writer) error {
	switch format {
	case OutputFormatJSON:
		return WriteJSON(writer, report.Value())
	case OutputFormatYAML:
		return WriteYAML(writer, report.Value())
	case OutputFormatMsgpack:
		return WriteMsgpack(writer, report.Value())
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// ReportFileName gives name exactly one ext suffix, replacing a trailing ext
// rather than duplicating it. A name that is nothing but ext is kept as the
// stem, so ".json" becomes ".json.json".
func ReportFileName(name string, ext string) string {
	if len(name) > len(ext) {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ext
}

// WriteReportFile encodes the report into <dir>/<name><ext>, creating dir if needed.
// It returns the path written.
func WriteReportFile(report *domain.LeveledReport, format OutputFormat, dir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.NewOutputError("report filename is empty", nil)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.NewOutputError("failed to create output directory "+dir, err)
	}

	path := filepath.Join(dir, ReportFileName(name, format.Extension()))
	file, err := os.Create(path)
	if err != nil {
		return "", domain.NewOutputError("failed to create report file", err)
	}

	if err := Write(report, format, file); err != nil {
		_ = file.Close()
		return "", domain.NewOutputError("failed to write "+path, err)
	}
	if err := file.Close(); err != nil {
		return "", domain.NewOutputError("failed to close "+path, err)
	}
	return path, nil
}
