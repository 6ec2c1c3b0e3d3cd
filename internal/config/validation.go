package config

import (
	"errors"
	"fmt"
	"strings"

	"mobileinput/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error concerns field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func (e ValidationErrors) Unwrap() error { return ErrInvalidConfig }

// ValidateConfig performs validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateWidgets(&c.Widgets)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validatePreview(&c.Preview)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateWidgets(w *WidgetsConfig) ValidationErrors {
	var errs ValidationErrors
	switch w.DuplicateCreate {
	case DuplicateReplace, DuplicateReject:
	default:
		errs = append(errs, *oneOfError("widgets.duplicate_create", DuplicateReplace, DuplicateReject))
	}
	switch w.CharacterLimitMode {
	case LimitTrimOne, LimitClamp:
	default:
		errs = append(errs, *oneOfError("widgets.character_limit_mode", LimitTrimOne, LimitClamp))
	}
	if w.FontExtension != "" && !strings.HasPrefix(w.FontExtension, ".") {
		errs = append(errs, ValidationError{Field: "widgets.font_extension", Message: "must start with a dot"})
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors
	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, *oneOfError("logging.level", "debug", "info", "warn", "error"))
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, *oneOfError("logging.format", "text", "json"))
	}
	switch strings.ToLower(l.Output) {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, *RequiredFieldError("logging.file_path"))
		}
	default:
		errs = append(errs, *oneOfError("logging.output", "stdout", "stderr", "file", "both"))
	}
	if l.MaxSizeMB < 1 {
		errs = append(errs, *RangeError("logging.max_size_mb", 1, "unbounded"))
	}
	if l.MaxBackups < 0 {
		errs = append(errs, *RangeError("logging.max_backups", 0, "unbounded"))
	}
	return errs
}

func validatePreview(p *PreviewConfig) ValidationErrors {
	var errs ValidationErrors
	if p.Width < 0 || p.Height < 0 {
		errs = append(errs, ValidationError{Field: "preview.size", Message: "width and height must not be negative"})
	}
	switch strings.ToLower(p.Orientation) {
	case "", "portrait", "landscape":
	default:
		errs = append(errs, *oneOfError("preview.orientation", "portrait", "landscape"))
	}
	return errs
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required field is missing"}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("value must be between %v and %v", min, max)}
}

func oneOfError(field string, allowed ...string) *ValidationError {
	return &ValidationError{Field: field, Message: "must be one of " + strings.Join(allowed, ", ")}
}
