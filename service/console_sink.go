package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/ludo-technologies/jsreport/domain"
)

// ConsoleTitle is printed above every console table
const ConsoleTitle = "Complexity report"

// Maintainability bands used to colour the console output
const (
	MaintainabilityGood     = 85.0
	MaintainabilityModerate = 65.0
)

// metricHeaders are the columns shared by every level
var metricHeaders = []string{"Av Phys SLOC", "Av SLOC", "Av Cyclomtc", "Av Bugs", "Av Difficulty", "Maintblty"}

// ConsoleHeaders returns the fixed column headers for a level
func ConsoleHeaders(level domain.Level) []string {
	var first []string
	switch level {
	case domain.LevelProject:
		first = []string{"Project", "Files"}
	case domain.LevelMethod:
		first = []string{"Name", "Type"}
	default:
		first = []string{"File"}
	}
	return append(first, metricHeaders...)
}

// ConsoleSink renders a summary table. It never fails.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a console sink writing to out
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Name implements domain.Sink
func (s *ConsoleSink) Name() string {
	return SinkConsole
}

// Emit implements domain.Sink. Rendering problems are swallowed.
func (s *ConsoleSink) Emit(_ context.Context, report *domain.LeveledReport, _ domain.Configuration) error {
	defer func() {
		_ = recover()
	}()

	rendered, err := RenderConsoleTable(report)
	if err != nil {
		return nil
	}
	_, _ = color.New(color.FgCyan, color.Bold).Fprintln(s.out, ConsoleTitle)
	_, _ = fmt.Fprintln(s.out, rendered)
	return nil
}

// RenderConsoleTable renders the table for the report's level, without the title
func RenderConsoleTable(report *domain.LeveledReport) (string, error) {
	if report == nil || report.Value() == nil {
		return "", fmt.Errorf("no report to render")
	}

	var rows [][]string
	switch report.Level {
	case domain.LevelRaw:
		rows = rawRows(report.Raw)
	case domain.LevelFile:
		rows = fileRows(report.File)
	case domain.LevelProject:
		rows = projectRows(report.Project)
	case domain.LevelMethod:
		rows = treeRows(report.Tree)
	default:
		return "", fmt.Errorf("unsupported level: %s", report.Level)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(ConsoleHeaders(report.Level)...).
		Rows(rows...)
	return t.String(), nil
}

func rawRows(raw *domain.ProjectReport) [][]string {
	rows := make([][]string, 0, len(raw.Modules)+1)
	for _, m := range raw.Modules {
		rows = append(rows, append([]string{m.SrcPath}, metricCells(m.MethodAverage.Summary(), &m.Maintainability)...))
	}
	avg := raw.ModuleAverage
	rows = append(rows, append([]string{"Average"}, metricCells(avg.MethodAverage.Summary(), &avg.Maintainability)...))
	return rows
}

func fileRows(r *domain.FileLevelReport) [][]string {
	rows := make([][]string, 0, len(r.Files)+1)
	for _, f := range r.Files {
		rows = append(rows, append([]string{f.Filename}, metricCells(f.Methods, &f.Maintainability)...))
	}
	if r.Averages != nil {
		rows = append(rows, append([]string{"Average"}, metricCells(r.Averages.Methods, &r.Averages.Maintainability)...))
	}
	return rows
}

func projectRows(r *domain.ProjectLevelReport) [][]string {
	row := []string{"Project", strconv.Itoa(r.Files)}
	if r.Averages == nil {
		return [][]string{append(row, "-", "-", "-", "-", "-", "-")}
	}
	return [][]string{append(row, metricCells(r.Averages.Methods, &r.Averages.Maintainability)...)}
}

func treeRows(root *domain.ReportNode) [][]string {
	var rows [][]string
	var walk func(n *domain.ReportNode, depth int)
	walk = func(n *domain.ReportNode, depth int) {
		name := n.Name
		for i := 0; i < depth; i++ {
			name = "  " + name
		}
		rows = append(rows, append([]string{name, string(n.Kind)}, metricCells(n.Averages, n.Maintainability)...))
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	walk(root, 0)
	return rows
}

func metricCells(a domain.AggregateReport, maintainability *float64) []string {
	return []string{
		formatFigure(a.Sloc.Physical),
		formatFigure(a.Sloc.Logical),
		formatFigure(a.Cyclomatic),
		formatFigure(a.Halstead.Bugs),
		formatFigure(a.Halstead.Difficulty),
		formatMaintainability(maintainability),
	}
}

func formatFigure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMaintainability(v *float64) string {
	if v == nil {
		return "-"
	}
	text := formatFigure(*v)
	switch {
	case *v >= MaintainabilityGood:
		return color.GreenString(text)
	case *v >= MaintainabilityModerate:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}
