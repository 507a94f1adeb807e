package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/config"
	"github.com/ludo-technologies/jsreport/service"
)

const defaultInitPath = "jsreport.yaml"

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a jsreport configuration file",
		Long: `Generate a documented jsreport configuration file with sensible defaults.

By default, creates jsreport.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create jsreport.yaml in current directory
  jsreport init

  # Custom output path
  jsreport init --config custom.yaml

  # Overwrite existing file
  jsreport init --force

  # Generate smaller config with essential options only
  jsreport init --minimal

  # Interactive setup wizard
  jsreport init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", defaultInitPath,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	opts := config.DefaultTemplateOptions()

	if interactive {
		var err error
		opts, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(opts)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'jsreport run .' to build your first report.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.TemplateOptions, string, error) {
	opts := config.DefaultTemplateOptions()

	fmt.Println()
	fmt.Println("jsreport Configuration Setup")
	fmt.Println("============================")
	fmt.Println()

	projectLabels := map[config.ProjectType]string{
		config.ProjectTypeGeneric:     "Generic JavaScript/TypeScript",
		config.ProjectTypeReact:       "React/Next.js",
		config.ProjectTypeNodeBackend: "Node.js Backend",
	}
	type projectItem struct {
		Label string
		Value config.ProjectType
	}
	var projectItems []projectItem
	for _, pt := range config.ProjectTypes() {
		projectItems = append(projectItems, projectItem{Label: projectLabels[pt], Value: pt})
	}

	projectPrompt := promptui.Select{
		Label: "What type of project is this?",
		Items: projectItems,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }}",
			Inactive: "   {{ .Label | white }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("project selection cancelled: %w", err)
	}
	opts.ProjectType = projectItems[projectIdx].Value

	fmt.Println()

	levels := []struct {
		Label       string
		Description string
		Value       domain.Level
	}{
		{"raw", "Every module, method and class", domain.LevelRaw},
		{"file", "One row per file plus averages", domain.LevelFile},
		{"project", "Averages across the build only", domain.LevelProject},
		{"method", "Project, file and method tree", domain.LevelMethod},
	}
	levelPrompt := promptui.Select{
		Label: "How detailed should the report be?",
		Items: levels,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	levelIdx, _, err := levelPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("level selection cancelled: %w", err)
	}
	opts.Level = string(levels[levelIdx].Value)

	fmt.Println()

	known := service.NewSinkRegistry(nil).Names()
	reporterPrompt := promptui.Prompt{
		Label:    "Reporters (" + strings.Join(known, ", ") + ")",
		Default:  strings.Join(opts.Reporters, ","),
		Validate: reporterValidator(known),
	}
	reporters, err := reporterPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("reporter input cancelled: %w", err)
	}
	opts.Reporters = parseReporterList(reporters)

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}
	outputPath, err := outputPrompt.Run()
	if err != nil {
		return opts, "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return opts, outputPath, nil
}

// reporterValidator accepts a comma separated list of known reporter names
func reporterValidator(known []string) promptui.ValidateFunc {
	return func(input string) error {
		names := parseReporterList(input)
		if len(names) == 0 {
			return fmt.Errorf("at least one reporter is required")
		}
		for _, name := range names {
			if !contains(known, name) {
				return domain.NewConfigurationError("reporter", name, known)
			}
		}
		return nil
	}
}

func parseReporterList(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
