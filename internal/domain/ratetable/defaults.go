package ratetable

import (
	_ "embed"
	"sync"
)

//go:embed defaults/2025.yaml
var defaultDocument []byte

const DefaultYear = 2025

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded rate table. It is parsed once per process.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(defaultDocument)
	})
	return defaultTable, defaultErr
}

// DefaultDocument returns a copy of the embedded YAML document, used to seed the database source.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultDocument))
	copy(out, defaultDocument)
	return out
}
