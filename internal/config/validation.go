package config

import (
	"fmt"
	"os"
	"strings"

	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// Err converts the errors to an INVALID_CONFIG error, or nil when valid.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	var collection kerrors.ValidationErrorCollection
	for _, e := range vr.Errors {
		collection.AddField(e.Field, e.Value, e.Message, e.Suggestions...)
	}
	return collection.ToKuviaError()
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		writeIssues(&builder, vr.Errors)
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		writeIssues(&builder, vr.Warnings)
	}

	return builder.String()
}

func writeIssues(builder *strings.Builder, issues []ValidationError) {
	for _, issue := range issues {
		builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
		for _, suggestion := range issue.Suggestions {
			builder.WriteString(fmt.Sprintf("      %s\n", suggestion))
		}
	}
}

// Validate checks config and reports errors and warnings.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateScanConfig(config, result)
	validatePageConfig(&config.Page, result)
	validateServerConfig(&config.Server, result)
	validateLogConfig(&config.Log, result)

	result.Valid = !result.HasErrors()
	return result
}

func validateScanConfig(config *Config, result *ValidationResult) {
	if len(config.Scan.Types) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyScanTypes,
			Value:   config.Scan.Types,
			Message: "at least one file type is required",
			Suggestions: []string{
				"Use the defaults: jpg, jpeg, png, gif, webp",
			},
		})
	}
	for _, t := range config.Scan.Types {
		if !isAlphanumeric(strings.TrimPrefix(t, ".")) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   KeyScanTypes,
				Value:   t,
				Message: fmt.Sprintf("file type '%s' must be an extension such as jpg", t),
				Suggestions: []string{
					"Separate several types with commas: --types jpg,png",
					"Use --pattern for anything that is not a plain extension",
				},
			})
		}
	}

	if config.Source.JSON != "" && (config.HasScanInputs() || len(config.Files) > 0) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   KeySourceJSON,
			Value:   config.Source.JSON,
			Message: "a JSON image list replaces scanned and listed files",
			Suggestions: []string{
				"Remove --dir, --pattern and file arguments, or drop --json",
			},
		})
	}
}

func validatePageConfig(config *PageConfig, result *ValidationResult) {
	if config.Template == "" {
		return
	}

	info, err := os.Stat(config.Template)
	switch {
	case err != nil:
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyPageTemplate,
			Value:   config.Template,
			Message: fmt.Sprintf("template is not readable: %v", err),
			Suggestions: []string{
				"Check the path, relative paths start from the working directory",
			},
		})
	case info.IsDir():
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyPageTemplate,
			Value:   config.Template,
			Message: "template is a directory",
		})
	}
}

func validateServerConfig(config *ServerConfig, result *ValidationResult) {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyServerPort,
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   KeyServerPort,
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
		})
	}

	// Basic validation - no dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   KeyServerHost,
				Value:   config.Host,
				Message: fmt.Sprintf("host contains invalid character: %s", char),
				Suggestions: []string{
					"Use 'localhost' for local viewing",
					"Use '0.0.0.0' to bind to all interfaces",
				},
			})
			break
		}
	}
}

func validateLogConfig(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyLogLevel,
			Value:   config.Level,
			Message: err.Error(),
			Suggestions: []string{
				"Use one of: debug, info, warn, error",
			},
		})
	}
	if config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   KeyLogFormat,
			Value:   config.Format,
			Message: fmt.Sprintf("unknown log format '%s'", config.Format),
			Suggestions: []string{
				"Use 'text' for terminals or 'json' for log collectors",
			},
		})
	}
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}
