package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "jsreport"

	// ConfigFileName is the default config file name
	ConfigFileName = ".jsreport.toml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "JSREPORT"
)

// Exit codes
const (
	// ExitOK means every cycle completed and every sink succeeded
	ExitOK = 0

	// ExitFailure covers configuration, analysis and dispatch failures
	ExitFailure = 1
)
