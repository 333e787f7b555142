package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput          = errors.New("empty input")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrModelLoad           = errors.New("model load failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

/* UnsupportedLanguageError */

// UnsupportedLanguageError is returned by language-forcing APIs when no model
// is loaded for the requested code. Auto-detection never produces it.
type UnsupportedLanguageError struct {
	Language string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Language)
}

func (*UnsupportedLanguageError) Unwrap() error {
	return ErrUnsupportedLanguage
}

func NewUnsupportedLanguageError(lang string) error {
	return &UnsupportedLanguageError{Language: lang}
}

/* ModelLoadError */

// ModelLoadError reports a missing or corrupt model file at startup.
type ModelLoadError struct {
	Language string
	Path     string
	Err      error
}

func (e *ModelLoadError) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("load model %s (%s): %v", e.Language, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("load model %s: %v", e.Language, e.Err)
	default:
		return fmt.Sprintf("load model %s", e.Language)
	}
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ModelLoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrModelLoad}
	}
	return []error{ErrModelLoad, e.Err}
}

func NewModelLoadError(lang, path string, err error) error {
	return &ModelLoadError{Language: lang, Path: path, Err: err}
}
