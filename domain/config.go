package domain

import (
	"fmt"
	"strings"
)

// Level represents the granularity a project report is reshaped to
type Level string

const (
	LevelRaw     Level = "raw"
	LevelFile    Level = "file"
	LevelProject Level = "project"
	LevelMethod  Level = "method"
)

// Levels lists every accepted level in display order
func Levels() []Level {
	return []Level{LevelRaw, LevelFile, LevelProject, LevelMethod}
}

// LevelNames returns the accepted level names as strings
func LevelNames() []string {
	levels := Levels()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = string(l)
	}
	return names
}

// ParseLevel validates a level name
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", NewConfigurationError("level", s, LevelNames())
}

// Reporter identifies a sink either by a function supplied directly or by a built-in name
type Reporter struct {
	fn   SinkFunc
	name string
}

// Invokable creates a reporter that calls fn as-is
func Invokable(fn SinkFunc) Reporter {
	return Reporter{fn: fn}
}

// Named creates a reporter resolved against the built-in sink table
func Named(name string) Reporter {
	return Reporter{name: name}
}

// Func returns the supplied function, if this is an invokable reporter
func (r Reporter) Func() (SinkFunc, bool) {
	return r.fn, r.fn != nil
}

// Name returns the built-in name, if this is a named reporter
func (r Reporter) Name() (string, bool) {
	return r.name, r.fn == nil
}

// String implements fmt.Stringer
func (r Reporter) String() string {
	if r.fn != nil {
		return "<func>"
	}
	return r.name
}

// StorageConfig configures the object storage sink
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// Configuration is the fully resolved configuration handed to the pipeline
type Configuration struct {
	Reporters      []Reporter
	Level          Level
	OutputDir      string
	ReportFilename string
	Storage        StorageConfig
}

// Validate checks the fields the pipeline depends on
func (c Configuration) Validate() error {
	if _, err := ParseLevel(string(c.Level)); err != nil {
		return err
	}
	if len(c.Reporters) == 0 {
		return NewConfigError("at least one reporter is required", nil)
	}
	for i, r := range c.Reporters {
		if name, ok := r.Name(); ok && strings.TrimSpace(name) == "" {
			return NewConfigError(fmt.Sprintf("reporter #%d has an empty name", i+1), nil)
		}
	}
	return nil
}
