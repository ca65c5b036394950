// Package featcache persists extracted feature matrices so that repeated
// corpus builds skip the audio front-end for files that have not changed.
//
// Keys are two-segment paths: a namespace (the fingerprint of the
// extractor configuration) and the identity of the source file. Matrices
// are stored msgpack-encoded.
//
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing.
package featcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("featcache: not found")
)

// separator joins the namespace and the source of a Key. It cannot occur in
// a file path.
const separator byte = 0

// Key identifies one cached matrix.
type Key struct {
	// Namespace groups entries produced by one extractor configuration.
	Namespace string
	// Source identifies the input, typically path, size and mtime.
	Source string
}

// String returns the key in human-readable form.
func (k Key) String() string {
	return k.Namespace + "/" + k.Source
}

func (k Key) encode() []byte {
	b := make([]byte, 0, len(k.Namespace)+1+len(k.Source))
	b = append(b, k.Namespace...)
	b = append(b, separator)
	b = append(b, k.Source...)
	return b
}

func namespacePrefix(ns string) []byte {
	b := make([]byte, 0, len(ns)+1)
	b = append(b, ns...)
	return append(b, separator)
}

// Store is the interface for a feature-matrix cache.
type Store interface {
	// Get retrieves the matrix for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([][]float32, error)

	// Set stores a matrix. Overwrites any existing value.
	Set(ctx context.Context, key Key, m [][]float32) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// Count returns the number of entries in a namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// Purge removes every entry of a namespace.
	Purge(ctx context.Context, namespace string) error

	// Close releases any resources held by the store.
	Close() error
}

// matrix is the msgpack wire form of a feature matrix: a flat row-major
// buffer plus its width, so ragged rows cannot be represented.
type matrix struct {
	Rows int       `msgpack:"r"`
	Cols int       `msgpack:"c"`
	Data []float32 `msgpack:"d"`
}

func marshalMatrix(m [][]float32) ([]byte, error) {
	w := matrix{Rows: len(m)}
	if len(m) > 0 {
		w.Cols = len(m[0])
	}
	w.Data = make([]float32, 0, w.Rows*w.Cols)
	for t, row := range m {
		if len(row) != w.Cols {
			return nil, fmt.Errorf("featcache: row %d has width %d, want %d", t, len(row), w.Cols)
		}
		w.Data = append(w.Data, row...)
	}
	return msgpack.Marshal(&w)
}

func unmarshalMatrix(b []byte) ([][]float32, error) {
	var w matrix
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("featcache: decode: %w", err)
	}
	if w.Rows < 0 || w.Cols < 0 || len(w.Data) != w.Rows*w.Cols {
		return nil, fmt.Errorf("featcache: corrupt entry: %dx%d with %d values", w.Rows, w.Cols, len(w.Data))
	}
	m := make([][]float32, w.Rows)
	for t := range m {
		m[t] = w.Data[t*w.Cols : (t+1)*w.Cols : (t+1)*w.Cols]
	}
	return m, nil
}
