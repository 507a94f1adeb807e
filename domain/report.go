package domain

import "encoding/json"

// HalsteadCount holds distinct/total counts for Halstead operators or operands
type HalsteadCount struct {
	Distinct int `json:"distinct" yaml:"distinct"`
	Total    int `json:"total" yaml:"total"`
}

// HalsteadMetrics represents the full set of Halstead measures for a function or module
type HalsteadMetrics struct {
	Bugs       float64       `json:"bugs" yaml:"bugs"`
	Difficulty float64       `json:"difficulty" yaml:"difficulty"`
	Effort     float64       `json:"effort" yaml:"effort"`
	Length     float64       `json:"length" yaml:"length"`
	Time       float64       `json:"time" yaml:"time"`
	Vocabulary float64       `json:"vocabulary" yaml:"vocabulary"`
	Volume     float64       `json:"volume" yaml:"volume"`
	Operators  HalsteadCount `json:"operators" yaml:"operators"`
	Operands   HalsteadCount `json:"operands" yaml:"operands"`
}

// SlocMetrics represents source lines of code
type SlocMetrics struct {
	Physical float64 `json:"physical" yaml:"physical"`
	Logical  float64 `json:"logical" yaml:"logical"`
}

// Metrics represents the analyzer's raw measurements for one function, or an
// aggregate/average over several functions.
type Metrics struct {
	Cyclomatic        float64         `json:"cyclomatic" yaml:"cyclomatic"`
	CyclomaticDensity float64         `json:"cyclomaticDensity" yaml:"cyclomatic_density"`
	Halstead          HalsteadMetrics `json:"halstead" yaml:"halstead"`
	Sloc              SlocMetrics     `json:"sloc" yaml:"sloc"`
	ParamCount        float64         `json:"paramCount" yaml:"param_count"`
}

// Summary projects the metrics onto the figures carried by an AggregateReport
func (m Metrics) Summary() AggregateReport {
	return AggregateReport{
		Cyclomatic: m.Cyclomatic,
		Halstead: HalsteadSummary{
			Bugs:       m.Halstead.Bugs,
			Difficulty: m.Halstead.Difficulty,
		},
		Sloc: SlocMetrics{
			Physical: m.Sloc.Physical,
			Logical:  m.Sloc.Logical,
		},
	}
}

// MethodReport represents one function or class method as reported by the analyzer
type MethodReport struct {
	Metrics   `yaml:",inline"`
	Name      string `json:"name" yaml:"name"`
	LineStart int    `json:"lineStart" yaml:"line_start"`
	LineEnd   int    `json:"lineEnd" yaml:"line_end"`
}

// ClassReport represents a class declaration and its methods
type ClassReport struct {
	Name            string         `json:"name" yaml:"name"`
	LineStart       int            `json:"lineStart" yaml:"line_start"`
	LineEnd         int            `json:"lineEnd" yaml:"line_end"`
	MethodAggregate Metrics        `json:"methodAggregate" yaml:"method_aggregate"`
	MethodAverage   Metrics        `json:"methodAverage" yaml:"method_average"`
	Methods         []MethodReport `json:"methods" yaml:"methods"`
}

// ModuleReport represents one analyzed source unit
type ModuleReport struct {
	SrcPath         string         `json:"srcPath" yaml:"src_path"`
	Maintainability float64        `json:"maintainability" yaml:"maintainability"`
	Aggregate       Metrics        `json:"aggregate" yaml:"aggregate"`
	MethodAggregate Metrics        `json:"methodAggregate" yaml:"method_aggregate"`
	MethodAverage   Metrics        `json:"methodAverage" yaml:"method_average"`
	Methods         []MethodReport `json:"methods" yaml:"methods"`
	Classes         []ClassReport  `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// AllMethods returns module-scope methods followed by each class's methods in class order
func (m *ModuleReport) AllMethods() []MethodReport {
	methods := make([]MethodReport, 0, len(m.Methods))
	methods = append(methods, m.Methods...)
	for _, class := range m.Classes {
		methods = append(methods, class.Methods...)
	}
	return methods
}

// ModuleAverage holds the per-project average over all modules
type ModuleAverage struct {
	Maintainability float64 `json:"maintainability" yaml:"maintainability"`
	MethodAverage   Metrics `json:"methodAverage" yaml:"method_average"`
}

// ProjectReport is the raw report produced by an Analyzer for a whole build cycle
type ProjectReport struct {
	ModuleAverage ModuleAverage  `json:"moduleAverage" yaml:"module_average"`
	Modules       []ModuleReport `json:"modules" yaml:"modules"`
}

// HalsteadSummary holds the Halstead figures surfaced by leveled reports
type HalsteadSummary struct {
	Bugs       float64 `json:"bugs" yaml:"bugs"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
}

// AggregateReport is one statistical summary (a total or an average) for one granularity
type AggregateReport struct {
	Cyclomatic float64         `json:"cyclomatic" yaml:"cyclomatic"`
	Halstead   HalsteadSummary `json:"halstead" yaml:"halstead"`
	Sloc       SlocMetrics     `json:"sloc" yaml:"sloc"`
}

// NodeKind tags a ReportNode with its granularity
type NodeKind string

const (
	NodeKindProject NodeKind = "project"
	NodeKindFile    NodeKind = "file"
	NodeKindMethod  NodeKind = "method"
)

// ReportNode is the tree shape used by the method level.
// Project nodes hold file nodes, file nodes hold method nodes.
type ReportNode struct {
	Name            string           `json:"name" yaml:"name"`
	Kind            NodeKind         `json:"type" yaml:"type"`
	Maintainability *float64         `json:"maintainability" yaml:"maintainability"`
	Averages        AggregateReport  `json:"averages" yaml:"averages"`
	Totals          *AggregateReport `json:"totals,omitempty" yaml:"totals,omitempty"`
	Children        []ReportNode     `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// FileEntry is one row of a file-level report
type FileEntry struct {
	Filename        string          `json:"filename" yaml:"filename"`
	Maintainability float64         `json:"maintainability" yaml:"maintainability"`
	Methods         AggregateReport `json:"methods" yaml:"methods"`
}

// LevelAverages is the unweighted mean across modules
type LevelAverages struct {
	Maintainability float64         `json:"maintainability" yaml:"maintainability"`
	Methods         AggregateReport `json:"methods" yaml:"methods"`
}

// FileLevelReport is the output of the file level
type FileLevelReport struct {
	Files    []FileEntry    `json:"files" yaml:"files"`
	Averages *LevelAverages `json:"averages" yaml:"averages"`
}

// ProjectLevelReport is the output of the project level
type ProjectLevelReport struct {
	Files    int            `json:"files" yaml:"files"`
	Averages *LevelAverages `json:"averages" yaml:"averages"`
}

// LeveledReport carries exactly one report variant, selected by Level
type LeveledReport struct {
	Level   Level
	Raw     *ProjectReport
	File    *FileLevelReport
	Project *ProjectLevelReport
	Tree    *ReportNode
}

// Value returns the active report variant
func (r *LeveledReport) Value() any {
	if r == nil {
		return nil
	}
	switch r.Level {
	case LevelRaw:
		return r.Raw
	case LevelFile:
		return r.File
	case LevelProject:
		return r.Project
	case LevelMethod:
		return r.Tree
	default:
		return nil
	}
}

// MarshalJSON encodes only the active variant
func (r *LeveledReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// MarshalYAML encodes only the active variant
func (r *LeveledReport) MarshalYAML() (interface{}, error) {
	return r.Value(), nil
}
