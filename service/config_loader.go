package service

import (
	"strings"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/config"
)

// ConfigOverrides holds values given on the command line.
// Zero values leave the configured value in place.
type ConfigOverrides struct {
	Reporters      []string
	Level          string
	OutputDir      string
	ReportFilename string
}

// ConfigurationLoaderImpl loads, merges and converts configuration
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from path, or discovers a file from target when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// MergeConfig applies CLI overrides on top of base
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, override ConfigOverrides) *config.Config {
	merged := *base

	if reporters := splitReporters(override.Reporters); len(reporters) > 0 {
		merged.Reporter = reporters
	}
	if override.Level != "" {
		merged.Level = override.Level
	}
	if override.OutputDir != "" {
		merged.OutputDir = override.OutputDir
	}
	if override.ReportFilename != "" {
		merged.ReportFilename = override.ReportFilename
	}

	return &merged
}

// ToConfiguration converts the loaded configuration into the pipeline's form
func (c *ConfigurationLoaderImpl) ToConfiguration(cfg *config.Config) domain.Configuration {
	reporters := make([]domain.Reporter, 0, len(cfg.Reporter))
	for _, name := range cfg.Reporter {
		reporters = append(reporters, domain.Named(name))
	}

	return domain.Configuration{
		Reporters:      reporters,
		Level:          domain.Level(cfg.Level),
		OutputDir:      cfg.OutputDir,
		ReportFilename: cfg.ReportFilename,
		Storage:        cfg.Storage.StorageSettings(),
	}
}

// splitReporters accepts both repeated flags and comma separated lists
func splitReporters(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
