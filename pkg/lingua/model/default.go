package model

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed data
var embedded embed.FS

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Embedded returns the built-in English, German, Spanish and French models.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err) // the directory is part of the binary
	}
	return sub
}

// Default returns the process-wide bundle built from the embedded models.
// It is loaded on first use; later calls return the same bundle.
func Default() (*Bundle, error) {
	defaultOnce.Do(func() {
		defaultBundle, defaultErr = LoadFS(Embedded(), nil)
	})
	return defaultBundle, defaultErr
}
