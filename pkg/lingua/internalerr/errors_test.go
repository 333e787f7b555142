package internalerr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestUnsupportedLanguageErrorUnwrap(t *testing.T) {
	err := NewUnsupportedLanguageError("xx")

	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Error("UnsupportedLanguageError should unwrap to ErrUnsupportedLanguage")
	}

	var ule *UnsupportedLanguageError
	if !errors.As(err, &ule) {
		t.Fatal("errors.As should find *UnsupportedLanguageError")
	}
	if ule.Language != "xx" {
		t.Errorf("Expected language xx, got %q", ule.Language)
	}
}

func TestModelLoadErrorUnwrap(t *testing.T) {
	err := NewModelLoadError("en", "models/en/pos.txt", os.ErrNotExist)

	if !errors.Is(err, ErrModelLoad) {
		t.Error("ModelLoadError should unwrap to ErrModelLoad")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("ModelLoadError should expose the underlying cause")
	}

	wrapped := fmt.Errorf("startup: %w", err)
	if !errors.Is(wrapped, ErrModelLoad) {
		t.Error("Wrapped ModelLoadError should still match ErrModelLoad")
	}
}

func TestModelLoadErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ModelLoadError
		want string
	}{
		{&ModelLoadError{Language: "en", Path: "p", Err: errors.New("boom")}, "load model en (p): boom"},
		{&ModelLoadError{Language: "de", Err: errors.New("boom")}, "load model de: boom"},
		{&ModelLoadError{Language: "fr"}, "load model fr"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	bare := &ModelLoadError{Language: "fr"}
	if !errors.Is(bare, ErrModelLoad) {
		t.Error("ModelLoadError without cause should still match ErrModelLoad")
	}
}
