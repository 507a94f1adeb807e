package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the type of JavaScript/TypeScript project
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeNodeBackend ProjectType = "node"
)

// ProjectTypes lists the presets offered by init, in display order
func ProjectTypes() []ProjectType {
	return []ProjectType{ProjectTypeGeneric, ProjectTypeReact, ProjectTypeNodeBackend}
}

// ProjectPreset holds file selection presets for a project type
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// TemplateOptions are the choices made when generating a config file
type TemplateOptions struct {
	ProjectType ProjectType
	Level       string
	Reporters   []string
	OutputDir   string
}

// DefaultTemplateOptions returns the options used by a non-interactive init
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{
		ProjectType: ProjectTypeGeneric,
		Level:       DefaultLevel,
		Reporters:   []string{DefaultReporter},
		OutputDir:   DefaultOutputDir,
	}
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	sources := DefaultConfig().Analysis.IncludePatterns
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: sources,
			ExcludePatterns: []string{
				"node_modules",
				"dist",
				"build",
				"coverage",
				"*.min.js",
				"*.bundle.js",
			},
		},
		ProjectTypeReact: {
			IncludePatterns: sources,
			ExcludePatterns: []string{
				"node_modules",
				"dist",
				"build",
				".next",
				"coverage",
				"storybook-static",
				"*.min.js",
				"*.bundle.js",
			},
		},
		ProjectTypeNodeBackend: {
			IncludePatterns: sources,
			ExcludePatterns: []string{
				"node_modules",
				"dist",
				"build",
				"coverage",
				"test",
				"tests",
				"__tests__",
				"*.min.js",
			},
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(opts TemplateOptions) string {
	preset, ok := GetProjectPresets()[opts.ProjectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeGeneric]
	}
	defaults := DefaultConfig()

	level := opts.Level
	if level == "" {
		level = DefaultLevel
	}
	reporters := opts.Reporters
	if len(reporters) == 0 {
		reporters = []string{DefaultReporter}
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	return `# jsreport configuration
# Documentation: https://github.com/ludo-technologies/jsreport

# ============================================================================
# REPORT
# ============================================================================
# Where reports go: console, json, yaml, msgpack, s3
reporter:` + formatYAMLList(reporters, 2) + `

# Report granularity: raw, file, project, method
level: ` + level + `

# Directory the file reporters write into (relative to the working directory)
output_dir: ` + outputDir + `

# Base name of the report file; an extension is appended per reporter.
# Leave unset to use a timestamped name.
# report_filename: complexity

# ============================================================================
# ANALYSIS SCOPE
# ============================================================================
analysis:
  # File name patterns to include
  include_patterns:` + formatYAMLList(preset.IncludePatterns, 4) + `

  # File or directory name patterns to skip
  exclude_patterns:` + formatYAMLList(preset.ExcludePatterns, 4) + `

  # Skip files ignored by .gitignore
  respect_gitignore: true

# ============================================================================
# METRICS
# ============================================================================
analyzer:
  # Count && || ?? as decision points
  logical_or: ` + strconv.FormatBool(defaults.Analyzer.LogicalOr) + `

  # Count each switch case as a decision point
  switch_case: ` + strconv.FormatBool(defaults.Analyzer.SwitchCase) + `

  # Count for...in and for...of loops as decision points
  for_in: ` + strconv.FormatBool(defaults.Analyzer.ForIn) + `

  # Count catch clauses as decision points
  try_catch: ` + strconv.FormatBool(defaults.Analyzer.TryCatch) + `

  # Rescale the maintainability index to 0-100
  new_mi: ` + strconv.FormatBool(defaults.Analyzer.NewMI) + `

  # Module reports kept between watch rebuilds (0 disables the cache)
  cache_size: ` + strconv.Itoa(defaults.Analyzer.CacheSize) + `

# ============================================================================
# OBJECT STORAGE (s3 reporter)
# ============================================================================
# Credentials are best supplied as JSREPORT_STORAGE_ACCESS_KEY and
# JSREPORT_STORAGE_SECRET_KEY, for example from a .env file.
storage:
  endpoint: ""
  region: ` + defaults.Storage.Region + `
  bucket: ""
  use_ssl: true
  prefix: ""

# ============================================================================
# WATCH MODE
# ============================================================================
watch:
  # Quiet period before a rebuild starts
  debounce_ms: ` + strconv.Itoa(defaults.Watch.DebounceMs) + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# jsreport configuration (minimal)
# See full options: https://github.com/ludo-technologies/jsreport

reporter:
  - console
level: raw
output_dir: complexity

analysis:
  exclude_patterns:
    - node_modules
    - dist
`
}

// formatYAMLList formats items as a block sequence indented by indent spaces
func formatYAMLList(items []string, indent int) string {
	if len(items) == 0 {
		return " []"
	}

	pad := strings.Repeat(" ", indent)
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("\n" + pad + "- " + strconv.Quote(item))
	}
	return sb.String()
}
