package service

import (
	"fmt"
	"math"

	"github.com/ludo-technologies/jsreport/domain"
)

// ReportPrecision is the number of decimal places the analyzer reports figures with
const ReportPrecision = 3

// LevelProcessor reshapes raw project reports into leveled reports.
// It holds no state; the zero value is ready to use.
type LevelProcessor struct{}

// NewLevelProcessor creates a new level processor
func NewLevelProcessor() *LevelProcessor {
	return &LevelProcessor{}
}

// Process reshapes raw according to level
func (p *LevelProcessor) Process(raw *domain.ProjectReport, level domain.Level) (*domain.LeveledReport, error) {
	if _, err := domain.ParseLevel(string(level)); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.NewInvalidInputError("cannot process a nil project report", nil)
	}

	report := &domain.LeveledReport{Level: level}
	switch level {
	case domain.LevelRaw:
		report.Raw = raw
	case domain.LevelFile:
		report.File = buildFileLevel(raw)
	case domain.LevelProject:
		report.Project = buildProjectLevel(raw)
	case domain.LevelMethod:
		report.Tree = buildMethodTree(raw)
	default:
		return nil, fmt.Errorf("level %q has no processor", level)
	}
	return report, nil
}

// buildFileLevel reports each module's per-method averages
func buildFileLevel(raw *domain.ProjectReport) *domain.FileLevelReport {
	files := make([]domain.FileEntry, len(raw.Modules))
	for i, m := range raw.Modules {
		files[i] = domain.FileEntry{
			Filename:        m.SrcPath,
			Maintainability: m.Maintainability,
			Methods:         m.MethodAverage.Summary(),
		}
	}
	return &domain.FileLevelReport{
		Files:    files,
		Averages: moduleMean(raw.Modules),
	}
}

func buildProjectLevel(raw *domain.ProjectReport) *domain.ProjectLevelReport {
	return &domain.ProjectLevelReport{
		Files:    len(raw.Modules),
		Averages: moduleMean(raw.Modules),
	}
}

// moduleMean is the unweighted arithmetic mean across modules; every module
// counts once regardless of size. Returns nil for zero modules.
func moduleMean(modules []domain.ModuleReport) *domain.LevelAverages {
	if len(modules) == 0 {
		return nil
	}

	var sum domain.LevelAverages
	for _, m := range modules {
		avg := m.MethodAverage
		sum.Maintainability += m.Maintainability
		sum.Methods.Cyclomatic += avg.Cyclomatic
		sum.Methods.Halstead.Bugs += avg.Halstead.Bugs
		sum.Methods.Halstead.Difficulty += avg.Halstead.Difficulty
		sum.Methods.Sloc.Physical += avg.Sloc.Physical
		sum.Methods.Sloc.Logical += avg.Sloc.Logical
	}

	n := float64(len(modules))
	return &domain.LevelAverages{
		Maintainability: Round(sum.Maintainability / n),
		Methods: domain.AggregateReport{
			Cyclomatic: Round(sum.Methods.Cyclomatic / n),
			Halstead: domain.HalsteadSummary{
				Bugs:       Round(sum.Methods.Halstead.Bugs / n),
				Difficulty: Round(sum.Methods.Halstead.Difficulty / n),
			},
			Sloc: domain.SlocMetrics{
				Physical: Round(sum.Methods.Sloc.Physical / n),
				Logical:  Round(sum.Methods.Sloc.Logical / n),
			},
		},
	}
}

// buildMethodTree copies the analyzer's figures into a project/file/method tree
// without recomputing anything.
func buildMethodTree(raw *domain.ProjectReport) *domain.ReportNode {
	projectMaintainability := raw.ModuleAverage.Maintainability
	project := &domain.ReportNode{
		Name:            "project",
		Kind:            domain.NodeKindProject,
		Maintainability: &projectMaintainability,
		Averages:        raw.ModuleAverage.MethodAverage.Summary(),
		Children:        make([]domain.ReportNode, 0, len(raw.Modules)),
	}

	for i := range raw.Modules {
		m := &raw.Modules[i]
		maintainability := m.Maintainability
		totals := m.MethodAggregate.Summary()

		methods := m.AllMethods()
		file := domain.ReportNode{
			Name:            m.SrcPath,
			Kind:            domain.NodeKindFile,
			Maintainability: &maintainability,
			Averages:        m.MethodAverage.Summary(),
			Totals:          &totals,
			Children:        make([]domain.ReportNode, 0, len(methods)),
		}
		for _, method := range methods {
			file.Children = append(file.Children, domain.ReportNode{
				Name:     method.Name,
				Kind:     domain.NodeKindMethod,
				Averages: method.Metrics.Summary(),
			})
		}
		project.Children = append(project.Children, file)
	}

	return project
}

// Round rounds v to ReportPrecision decimal places, halves away from zero
func Round(v float64) float64 {
	scale := math.Pow(10, ReportPrecision)
	return math.Round(v*scale) / scale
}
