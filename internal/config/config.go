package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ludo-technologies/jsreport/domain"
	"github.com/ludo-technologies/jsreport/internal/constants"
	"github.com/spf13/viper"
)

// Defaults for the report pipeline
const (
	// DefaultReporter is used when no reporter is configured
	DefaultReporter = "console"

	// DefaultLevel keeps the analyzer's native report shape
	DefaultLevel = "raw"

	// DefaultOutputDir is relative to the current working directory
	DefaultOutputDir = "complexity"

	// DefaultReportFilenamePrefix prefixes the timestamp-derived report name
	DefaultReportFilenamePrefix = "complexity"

	// DefaultCacheSize is the number of analyzed modules kept between builds
	DefaultCacheSize = 1024

	// DefaultDebounceMs groups bursts of file events into one rebuild
	DefaultDebounceMs = 200
)

// Config represents the main configuration structure
type Config struct {
	// Reporter lists the sinks to dispatch to; a single string is accepted
	Reporter []string `json:"reporter" mapstructure:"reporter" yaml:"reporter"`

	// Level is the report granularity: raw, file, project, method
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// OutputDir is where file sinks write reports
	OutputDir string `json:"outputDir" mapstructure:"output_dir" yaml:"output_dir"`

	// ReportFilename is the base name of file reports
	ReportFilename string `json:"reportFilename" mapstructure:"report_filename" yaml:"report_filename"`

	// Analysis controls which files are delivered to the pipeline
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Analyzer controls the complexity metrics
	Analyzer AnalyzerConfig `json:"analyzer" mapstructure:"analyzer" yaml:"analyzer"`

	// Storage configures the s3 reporter
	Storage StorageConfig `json:"storage" mapstructure:"storage" yaml:"storage"`

	// Watch configures rebuilds in watch mode
	Watch WatchConfig `json:"watch" mapstructure:"watch" yaml:"watch"`
}

// AnalysisConfig holds file selection configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore skips files ignored by .gitignore in the analyzed roots
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// AnalyzerConfig mirrors the escomplex settings
type AnalyzerConfig struct {
	// LogicalOr counts && || ?? as decision points
	LogicalOr bool `json:"logical_or" mapstructure:"logical_or" yaml:"logical_or"`

	// SwitchCase counts each non-default case as a decision point
	SwitchCase bool `json:"switch_case" mapstructure:"switch_case" yaml:"switch_case"`

	// ForIn counts for...in and for...of loops as decision points
	ForIn bool `json:"for_in" mapstructure:"for_in" yaml:"for_in"`

	// TryCatch counts catch clauses as decision points
	TryCatch bool `json:"try_catch" mapstructure:"try_catch" yaml:"try_catch"`

	// NewMI rescales the maintainability index to 0-100
	NewMI bool `json:"new_mi" mapstructure:"new_mi" yaml:"new_mi"`

	// CacheSize is the number of module reports kept across builds (0 disables the cache)
	CacheSize int `json:"cache_size" mapstructure:"cache_size" yaml:"cache_size"`
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint  string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" mapstructure:"region" yaml:"region"`
	Bucket    string `json:"bucket" mapstructure:"bucket" yaml:"bucket"`
	AccessKey string `json:"access_key" mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" mapstructure:"use_ssl" yaml:"use_ssl"`
	Prefix    string `json:"prefix" mapstructure:"prefix" yaml:"prefix"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	// DebounceMs is the quiet period before a rebuild starts
	DebounceMs int `json:"debounce_ms" mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// DefaultReportFilename derives a report name from t
func DefaultReportFilename(t time.Time) string {
	return DefaultReportFilenamePrefix + "-" + t.UTC().Format("20060102-150405")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Reporter:       []string{DefaultReporter},
		Level:          DefaultLevel,
		OutputDir:      DefaultOutputDir,
		ReportFilename: DefaultReportFilename(time.Now()),
		Analysis: AnalysisConfig{
			IncludePatterns: []string{
				"*.js", "*.jsx", "*.mjs", "*.cjs",
				"*.ts", "*.tsx", "*.mts", "*.cts",
			},
			ExcludePatterns: []string{
				"node_modules",
				"vendor",
				"dist",
				"build",
				"coverage",
				".git",
				"*.min.js",
				"*.bundle.js",
			},
			RespectGitignore: true,
		},
		Analyzer: AnalyzerConfig{
			LogicalOr:  true,
			SwitchCase: true,
			ForIn:      false,
			TryCatch:   false,
			NewMI:      false,
			CacheSize:  DefaultCacheSize,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
		Watch: WatchConfig{
			DebounceMs: DefaultDebounceMs,
		},
	}
}

// LoadEnv loads a .env file from the working directory into the process
// environment, if one exists. Existing variables are not overridden.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// When configPath is empty a config file is discovered from targetPath upward.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads defaults, the file (if any) and the environment
func loadConfigFromFile(configPath string) (*Config, error) {
	// A fresh viper instance per load avoids shared global state
	v := viper.New()
	config := DefaultConfig()
	setDefaults(v, config)

	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := checkStringKeys(v, "output_dir", "report_filename", "level"); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment overrides apply on Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("reporter", c.Reporter)
	v.SetDefault("level", c.Level)
	v.SetDefault("output_dir", c.OutputDir)
	v.SetDefault("report_filename", c.ReportFilename)

	v.SetDefault("analysis.include_patterns", c.Analysis.IncludePatterns)
	v.SetDefault("analysis.exclude_patterns", c.Analysis.ExcludePatterns)
	v.SetDefault("analysis.respect_gitignore", c.Analysis.RespectGitignore)

	v.SetDefault("analyzer.logical_or", c.Analyzer.LogicalOr)
	v.SetDefault("analyzer.switch_case", c.Analyzer.SwitchCase)
	v.SetDefault("analyzer.for_in", c.Analyzer.ForIn)
	v.SetDefault("analyzer.try_catch", c.Analyzer.TryCatch)
	v.SetDefault("analyzer.new_mi", c.Analyzer.NewMI)
	v.SetDefault("analyzer.cache_size", c.Analyzer.CacheSize)

	v.SetDefault("storage.endpoint", c.Storage.Endpoint)
	v.SetDefault("storage.region", c.Storage.Region)
	v.SetDefault("storage.bucket", c.Storage.Bucket)
	v.SetDefault("storage.access_key", c.Storage.AccessKey)
	v.SetDefault("storage.secret_key", c.Storage.SecretKey)
	v.SetDefault("storage.use_ssl", c.Storage.UseSSL)
	v.SetDefault("storage.prefix", c.Storage.Prefix)

	v.SetDefault("watch.debounce_ms", c.Watch.DebounceMs)
}

// checkStringKeys rejects config file values that are not strings, before
// weak decoding would silently convert them.
func checkStringKeys(v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		if !v.InConfig(key) {
			continue
		}
		if _, ok := v.Get(key).(string); !ok {
			return domain.NewConfigurationError(key, v.Get(key), []string{"a string"})
		}
	}
	return nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigFileCandidates lists the file names searched for, in order of preference
func ConfigFileCandidates() []string {
	return []string{
		"jsreport.yaml",
		"jsreport.yml",
		".jsreport.yaml",
		".jsreport.yml",
		constants.ConfigFileName,
		"jsreport.json",
		".jsreport.json",
	}
}

// findDefaultConfig looks for a configuration file from targetPath up to the
// filesystem root, then in the user config directory, then $JSREPORT_CONFIG.
func findDefaultConfig(targetPath string) string {
	candidates := ConfigFileCandidates()

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, err := domain.ParseLevel(c.Level); err != nil {
		return err
	}

	if len(c.Reporter) == 0 {
		return fmt.Errorf("reporter cannot be empty")
	}
	for i, r := range c.Reporter {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("reporter #%d is empty", i+1)
		}
	}

	if strings.TrimSpace(c.ReportFilename) == "" {
		return fmt.Errorf("report_filename cannot be empty")
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Analyzer.CacheSize < 0 {
		return fmt.Errorf("analyzer.cache_size must be >= 0, got %d", c.Analyzer.CacheSize)
	}

	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}

	return nil
}

// DebounceInterval returns the watch debounce as a duration
func (c *WatchConfig) DebounceInterval() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// StorageSettings converts the storage section to the pipeline's form
func (c *StorageConfig) StorageSettings() domain.StorageConfig {
	return domain.StorageConfig{
		Endpoint:  c.Endpoint,
		Region:    c.Region,
		Bucket:    c.Bucket,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
		Prefix:    c.Prefix,
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("reporter", config.Reporter)
	v.Set("level", config.Level)
	v.Set("output_dir", config.OutputDir)
	v.Set("report_filename", config.ReportFilename)
	v.Set("analysis", config.Analysis)
	v.Set("analyzer", config.Analyzer)
	v.Set("watch", config.Watch)

	return v.WriteConfig()
}
