// Package directory is a thin convenience layer over internal/store: it
// keeps a name -> handle table gob-encoded inside the store's single root
// blob, so a caller that wants more than one named chunk of data doesn't
// have to invent its own bookkeeping. It is adapted from the teacher
// project's catalog.go (table name -> table id), but keyed on plain blob
// handles instead of a B+-tree id, since the engine underneath has no
// notion of rows or keys.
//
// This is a convenience, not part of the core contract: the underlying
// engine is perfectly usable with raw handles and never requires a
// Directory. Non-atomicity across the data write and the directory's own
// persisted snapshot is intentional — see SPEC_FULL.md section E.
package directory

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pkg/errors"

	"verter/internal/store"
)

// Directory maps names to blob handles, persisting its table inside the
// root blob of the wrapped file.
type Directory struct {
	file *store.File
}

// entries is the gob-encoded shape stored in the root blob.
type entries struct {
	Names map[string]uint64
}

// Open wraps an already-open store.File. It does not read the directory
// eagerly — each operation reloads the current root so concurrent external
// writers to the root (via the raw store API) are observed.
func Open(file *store.File) *Directory {
	return &Directory{file: file}
}

func (d *Directory) load() (entries, error) {
	raw, err := d.file.ReadRoot()
	if err != nil {
		return entries{}, err
	}
	if len(raw) == 0 {
		return entries{Names: map[string]uint64{}}, nil
	}
	var e entries
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&e); err != nil {
		return entries{}, errors.Wrap(err, "verter: decode directory")
	}
	if e.Names == nil {
		e.Names = map[string]uint64{}
	}
	return e, nil
}

func (d *Directory) save(e entries) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return errors.Wrap(err, "verter: encode directory")
	}
	return d.file.WriteRoot(buf.Bytes())
}

// Put allocates a new blob (or reuses the existing one registered under
// name) and writes data into it, recording the name -> handle mapping in
// the root directory.
func (d *Directory) Put(name string, data []byte) (uint64, error) {
	e, err := d.load()
	if err != nil {
		return 0, err
	}
	handle, exists := e.Names[name]
	if !exists {
		handle, err = d.file.Alloc()
		if err != nil {
			return 0, err
		}
	}
	if err := d.file.Write(handle, data); err != nil {
		return 0, err
	}
	e.Names[name] = handle
	if err := d.save(e); err != nil {
		return 0, err
	}
	return handle, nil
}

// Get returns the bytes stored under name.
func (d *Directory) Get(name string) ([]byte, error) {
	e, err := d.load()
	if err != nil {
		return nil, err
	}
	handle, ok := e.Names[name]
	if !ok {
		return nil, fmt.Errorf("verter: no entry named %q", name)
	}
	return d.file.Read(handle)
}

// Delete frees the blob registered under name and removes the mapping.
func (d *Directory) Delete(name string) error {
	e, err := d.load()
	if err != nil {
		return err
	}
	handle, ok := e.Names[name]
	if !ok {
		return fmt.Errorf("verter: no entry named %q", name)
	}
	if err := d.file.Delete(handle); err != nil {
		return err
	}
	delete(e.Names, name)
	return d.save(e)
}

// List returns the registered names in no particular order.
func (d *Directory) List() ([]string, error) {
	e, err := d.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(e.Names))
	for name := range e.Names {
		names = append(names, name)
	}
	return names, nil
}

// Handle returns the handle currently registered under name, if any.
func (d *Directory) Handle(name string) (uint64, bool, error) {
	e, err := d.load()
	if err != nil {
		return 0, false, err
	}
	h, ok := e.Names[name]
	return h, ok, nil
}
