// Package engine wires the page store, the name directory, and the
// single-writer guard together into the one surface the CLI, TCP server,
// and HTTP server all share. It is adapted from the teacher project's
// internal/engine, which wired a pager, a catalog, and per-table B+ trees;
// here there are no tables or trees, only handles and named directory
// entries, since the engine underneath addresses blobs, not rows.
package engine

import (
	"fmt"

	"verter/internal/directory"
	"verter/internal/store"
	"verter/internal/txnlock"
)

// Engine bundles an open page store with its directory layer and a guard
// suitable for serializing access from multiple goroutines.
type Engine struct {
	file  *store.File
	dir   *directory.Directory
	guard *txnlock.Guard
}

// New wraps an already-open store.File.
func New(f *store.File) *Engine {
	return &Engine{file: f, dir: directory.Open(f), guard: txnlock.New()}
}

// Alloc returns a handle to a fresh empty blob.
func (e *Engine) Alloc() (uint64, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Alloc()
}

// Read returns the bytes stored at handle.
func (e *Engine) Read(handle uint64) ([]byte, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Read(handle)
}

// Write overwrites the blob at handle with data.
func (e *Engine) Write(handle uint64, data []byte) error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Write(handle, data)
}

// Delete releases the chain rooted at handle.
func (e *Engine) Delete(handle uint64) error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Delete(handle)
}

// ReadRoot reads the file's distinguished root blob.
func (e *Engine) ReadRoot() ([]byte, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.ReadRoot()
}

// WriteRoot overwrites the file's distinguished root blob.
func (e *Engine) WriteRoot(data []byte) error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.WriteRoot(data)
}

// Put stores data under name in the directory layer.
func (e *Engine) Put(name string, data []byte) (uint64, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.dir.Put(name, data)
}

// Get returns the bytes stored under name in the directory layer.
func (e *Engine) Get(name string) ([]byte, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.dir.Get(name)
}

// Remove deletes the directory entry named name.
func (e *Engine) Remove(name string) error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.dir.Delete(name)
}

// List returns every name currently registered in the directory layer.
func (e *Engine) List() ([]string, error) {
	l := e.guard.Acquire()
	defer l.Release()
	return e.dir.List()
}

// Stat describes a handle's chain without exposing its payload.
type Stat struct {
	Handle      uint64
	LengthBytes int
}

// Stat reports the logical length of the blob at handle.
func (e *Engine) Stat(handle uint64) (Stat, error) {
	l := e.guard.Acquire()
	defer l.Release()
	data, err := e.file.Read(handle)
	if err != nil {
		return Stat{}, err
	}
	return Stat{Handle: handle, LengthBytes: len(data)}, nil
}

// Flush calls fsync on the underlying file.
func (e *Engine) Flush() error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Flush()
}

// Close releases the underlying file.
func (e *Engine) Close() error {
	l := e.guard.Acquire()
	defer l.Release()
	return e.file.Close()
}

func (s Stat) String() string {
	return fmt.Sprintf("handle=%d length=%d", s.Handle, s.LengthBytes)
}
