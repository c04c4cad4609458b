// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cfgbind/cfgbind/pkg/xmlconf"
)

const (
	// LogLevelDebug shows hydration decisions such as partial-name resolution.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn shows schema violations tolerated in lenient mode.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError shows only failures.
	LogLevelError LogLevel = "error"

	// LogFormatText writes human-readable, styled lines.
	LogFormatText LogFormat = "text"
	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt writes logfmt key=value lines.
	LogFormatLogfmt LogFormat = "logfmt"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidRootPath is returned when a root entry is empty or whitespace-only.
	ErrInvalidRootPath = errors.New("invalid root path")
	// ErrInvalidMarkerAttribute is returned when the marker is not an XML name.
	ErrInvalidMarkerAttribute = errors.New("invalid marker attribute")
	// ErrInvalidDocumentSize is returned for a non-positive size limit.
	ErrInvalidDocumentSize = errors.New("invalid max document size")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	attributeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
)

type (
	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// LogFormat selects the CLI log formatter.
	LogFormat string

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// RootPath is a directory or .zip archive searched for loadable units.
	RootPath string

	// InvalidRootPathError is returned when a RootPath is empty or whitespace-only.
	InvalidRootPathError struct {
		Value RootPath
	}

	// MarkerAttribute names the attribute that declares an element's type.
	MarkerAttribute string

	// InvalidMarkerAttributeError is returned when a MarkerAttribute is not a valid
	// attribute name.
	InvalidMarkerAttributeError struct {
		Value MarkerAttribute
	}

	// InvalidDocumentSizeError is returned for a non-positive document size limit.
	InvalidDocumentSizeError struct {
		Value int64
	}

	// InvalidConfigError collects the field errors of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Roots lists the directories and archives searched for types.
		// When empty, only built-in types are available.
		Roots []RootPath `json:"roots" mapstructure:"roots"`
		// MarkerAttribute names the type-declaring attribute.
		MarkerAttribute MarkerAttribute `json:"marker_attribute" mapstructure:"marker_attribute"`
		// StrictSchema fails hydration on schema violations instead of logging them.
		StrictSchema bool `json:"strict_schema" mapstructure:"strict_schema"`
		// MaxDocumentSize caps the size of documents read, in bytes.
		MaxDocumentSize int64 `json:"max_document_size" mapstructure:"max_document_size"`
		// Log configures CLI logging.
		Log LogConfig `json:"log" mapstructure:"log"`
	}

	// LogConfig configures CLI logging.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Roots:           []RootPath{},
		MarkerAttribute: xmlconf.DefaultMarkerAttribute,
		StrictSchema:    true,
		MaxDocumentSize: xmlconf.DefaultMaxDocumentSize,
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// RootStrings returns the roots as plain paths.
func (c Config) RootStrings() []string {
	out := make([]string, len(c.Roots))
	for i, r := range c.Roots {
		out[i] = string(r)
	}
	return out
}

// IsValid returns whether the Config has valid fields, and the field errors
// wrapped in an InvalidConfigError when it does not.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, r := range c.Roots {
		if valid, fieldErrs := r.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.MarkerAttribute.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.MaxDocumentSize <= 0 {
		errs = append(errs, &InvalidDocumentSizeError{Value: c.MaxDocumentSize})
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is one of the defined formats.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidLogFormatError.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// String returns the string representation of the RootPath.
func (p RootPath) String() string { return string(p) }

// IsValid returns whether the RootPath is non-empty and not whitespace-only.
func (p RootPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidRootPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRootPathError.
func (e *InvalidRootPathError) Error() string {
	return fmt.Sprintf("invalid root path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidRootPath for errors.Is() compatibility.
func (e *InvalidRootPathError) Unwrap() error { return ErrInvalidRootPath }

// String returns the string representation of the MarkerAttribute.
func (m MarkerAttribute) String() string { return string(m) }

// IsValid returns whether the MarkerAttribute is a valid attribute name.
func (m MarkerAttribute) IsValid() (bool, []error) {
	if !attributeNamePattern.MatchString(string(m)) {
		return false, []error{&InvalidMarkerAttributeError{Value: m}}
	}
	return true, nil
}

// Error implements the error interface for InvalidMarkerAttributeError.
func (e *InvalidMarkerAttributeError) Error() string {
	return fmt.Sprintf("invalid marker attribute %q: must be an XML attribute name", e.Value)
}

// Unwrap returns ErrInvalidMarkerAttribute for errors.Is() compatibility.
func (e *InvalidMarkerAttributeError) Unwrap() error { return ErrInvalidMarkerAttribute }

// Error implements the error interface for InvalidDocumentSizeError.
func (e *InvalidDocumentSizeError) Error() string {
	return fmt.Sprintf("invalid max document size %d: must be positive", e.Value)
}

// Unwrap returns ErrInvalidDocumentSize for errors.Is() compatibility.
func (e *InvalidDocumentSizeError) Unwrap() error { return ErrInvalidDocumentSize }
