package domain

import (
	"errors"
	"fmt"
)

// ConfigurationErrorKind classifies a configuration failure.
type ConfigurationErrorKind string

const (
	UnknownPreset      ConfigurationErrorKind = "unknown_preset"
	UnmappedField      ConfigurationErrorKind = "unmapped_field"
	UnresolvableOption ConfigurationErrorKind = "unresolvable_option"
	BypassPreset       ConfigurationErrorKind = "bypass_preset"
	MissingTarget      ConfigurationErrorKind = "missing_target"
)

// ConfigurationError is fatal for a single chart instance and always renders the
// "unsupported chart" placeholder.
type ConfigurationError struct {
	Kind    ConfigurationErrorKind
	Subject string
	Detail  string
}

func (e *ConfigurationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("chart configuration: %s %q: %s", e.Kind, e.Subject, e.Detail)
	}
	return fmt.Sprintf("chart configuration: %s %q", e.Kind, e.Subject)
}

// NewUnknownPresetError reports a preset key no table knows about.
func NewUnknownPresetError(key PresetKey) error {
	return &ConfigurationError{Kind: UnknownPreset, Subject: string(key)}
}

// NewUnmappedFieldError reports a field missing from the normalization table.
func NewUnmappedFieldError(field string, vocabulary string) error {
	return &ConfigurationError{Kind: UnmappedField, Subject: field, Detail: vocabulary}
}

// NewUnresolvableOptionError reports an option value the registry cannot resolve.
func NewUnresolvableOptionError(group OptionGroup, value string) error {
	return &ConfigurationError{Kind: UnresolvableOption, Subject: string(group), Detail: value}
}

// NewMissingTargetError reports a dataset preset requested without a ticker.
func NewMissingTargetError(key PresetKey) error {
	return &ConfigurationError{Kind: MissingTarget, Subject: string(key), Detail: "target ticker is required"}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// DatasetFetchError wraps network, decryption or server failures of the dataset
// service. The core never retries it.
type DatasetFetchError struct {
	Cause error
}

func (e *DatasetFetchError) Error() string {
	if e.Cause == nil {
		return "dataset fetch failed"
	}
	return "dataset fetch failed: " + e.Cause.Error()
}

func (e *DatasetFetchError) Unwrap() error { return e.Cause }

var (
	// ErrEmptyResult marks a successful query with nothing to chart.
	ErrEmptyResult = errors.New("dataset returned no chartable rows")

	// ErrUnsupportedRenderer means the dispatcher found neither a match nor a fallback.
	// It indicates a defect in the renderer table.
	ErrUnsupportedRenderer = errors.New("no renderer for preset and visualization")
)
