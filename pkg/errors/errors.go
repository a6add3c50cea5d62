package errors

import (
	"errors"
	"fmt"
	"image"
)

// SourceError reports a request whose source locator cannot be resolved to a
// fetcher (unknown scheme, empty source, unparsable reference).
type SourceError struct {
	Source  string
	Message string
	Err     error
}

// NewSourceError constructs a SourceError.
func NewSourceError(source string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &SourceError{Source: source, Message: message, Err: err}
}

func (e *SourceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Source != "" {
		return fmt.Sprintf("source error: %s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("source error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *SourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FetchError represents a failed retrieval of encoded image bytes. Partial
// carries a previously cached image when one survives the failed refresh, so
// the presentation layer can surface it alongside the cause.
type FetchError struct {
	URL        string
	StatusCode int
	Partial    image.Image
	Err        error
}

// NewFetchError constructs a FetchError without an HTTP status.
func NewFetchError(url string, err error) error {
	return &FetchError{URL: url, Err: err}
}

// NewFetchStatusError constructs a FetchError for an unexpected HTTP status.
func NewFetchStatusError(url string, status int) error {
	return &FetchError{URL: url, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error: %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch error: %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError represents a failure turning encoded bytes into pixels.
// Partial holds whatever was decoded before the failure (for animated
// sources the frames that did decode).
type DecodeError struct {
	Format  string
	Partial image.Image
	Err     error
}

// NewDecodeError constructs a DecodeError.
func NewDecodeError(format string, err error) error {
	return &DecodeError{Format: format, Err: err}
}

// NewPartialDecodeError constructs a DecodeError carrying a partial image.
func NewPartialDecodeError(format string, partial image.Image, err error) error {
	return &DecodeError{Format: format, Partial: partial, Err: err}
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Format != "" {
		return fmt.Sprintf("decode error [%s]: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decode error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CacheError indicates a failure in the memory or disk cache layer.
type CacheError struct {
	Op  string
	Key string
	Err error
}

// NewCacheError constructs a CacheError for the given cache operation.
func NewCacheError(op, key string, err error) error {
	return &CacheError{Op: op, Key: key, Err: err}
}

func (e *CacheError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("cache error: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CacheError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError indicates issues within plugin registration or execution.
type PluginError struct {
	Plugin  string
	Message string
	Err     error
}

// NewPluginError constructs a PluginError for the named plugin.
func NewPluginError(plugin string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &PluginError{Plugin: plugin, Message: message, Err: err}
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("plugin error [%s]: %s", e.Plugin, e.Message)
	}
	return fmt.Sprintf("plugin error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError represents a configuration parsing failure with optional line
// metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Partial extracts the partial image attached to a fetch or decode failure,
// if any. It returns nil when err carries no usable pixels.
func Partial(err error) image.Image {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Partial != nil {
		return fe.Partial
	}
	var de *DecodeError
	if errors.As(err, &de) && de.Partial != nil {
		return de.Partial
	}
	return nil
}

// Sentinel errors for common failure modes.
var (
	ErrEmptySource      = errors.New("empty image source")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrCacheMiss        = errors.New("cache miss")
)
