// Package store implements a single-file persistent storage engine for
// variable-length binary blobs. A file holds one distinguished root blob and
// zero or more additional blobs, each addressable by a stable handle (a byte
// offset into the file). Space is managed with a paged layout and an
// intrusive free list, so deleting or shrinking a blob never compacts the
// file.
//
// The engine assumes single-writer exclusive access to its file for the
// lifetime of an open handle; it makes no attempt at its own concurrency
// control. Callers that share a *File across goroutines must serialize
// access themselves (see internal/txnlock).
package store

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const bytesInU64 = 8

// Config holds the two values that must be supplied identically on every
// open of a given file: the magic bytes stamped at offset 0, and the number
// of payload bytes per page. Neither is self-describing on disk.
type Config struct {
	// MagicBytes is stored verbatim at file offset 0 and must match exactly
	// (including length) on every reopen.
	MagicBytes []byte
	// PageSize is the number of payload bytes per page, excluding the 8-byte
	// tagged header. Must be positive.
	PageSize int
}

// DefaultConfig matches the reference layout: 8 magic bytes, 120 payload
// bytes per page.
func DefaultConfig() Config {
	return Config{
		MagicBytes: []byte("VERTER__"),
		PageSize:   120,
	}
}

// File is an open handle to a page store. It is not safe for concurrent use
// from multiple goroutines — see the package doc.
type File struct {
	f      *os.File
	config Config
}

// Open opens path as a page store, creating and initializing it if it does
// not yet exist. An existing file whose magic bytes don't match cfg returns
// ErrInvalidFile. cfg.PageSize must match whatever the file was created
// with; the file does not store its own page size, so a mismatch here is
// undefined behavior at the file level (see spec notes) rather than a
// detected error.
func Open(path string, cfg Config) (*File, error) {
	if len(cfg.MagicBytes) == 0 {
		return nil, errors.New("verter: magic bytes must be non-empty")
	}
	if cfg.PageSize <= 0 {
		return nil, errors.New("verter: page size must be positive")
	}

	_, statErr := os.Stat(path)
	create := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o660)
	if err != nil {
		return nil, wrapIO("open", err)
	}

	file := &File{f: f, config: cfg}

	if create {
		if err := file.createHeader(); err != nil {
			f.Close()
			return nil, err
		}
		return file, nil
	}

	if err := file.checkMagic(); err != nil {
		f.Close()
		return nil, err
	}
	return file, nil
}

// Close releases the underlying file. No flush policy is mandated; call
// Flush first if durability across this close matters to the caller.
func (file *File) Close() error {
	return wrapIO("close", file.f.Close())
}

// Flush calls fsync on the underlying file. The engine never calls this
// internally — durability on crash is otherwise undefined, per spec.
func (file *File) Flush() error {
	return wrapIO("flush", file.f.Sync())
}

// --- fixed header layout -------------------------------------------------

func (file *File) magicOffset() int64 { return 0 }

func (file *File) freeListOffset() int64 {
	return file.magicOffset() + int64(len(file.config.MagicBytes))
}

func (file *File) rootOffset() int64 {
	return file.freeListOffset() + bytesInU64
}

func (file *File) headerSize() int64 {
	return file.rootOffset() + bytesInU64
}

func (file *File) pageStride() int64 {
	return bytesInU64 + int64(file.config.PageSize)
}

// --- low level primitives -------------------------------------------------

// readAt fills buf completely from offset or reports ErrCorruptedFile if the
// file is truncated mid-read (a short read past a page boundary can only
// mean the file no longer has the bytes an on-disk pointer promised).
func (file *File) readAt(offset int64, buf []byte) error {
	n, err := file.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return wrapIO("read", err)
	}
	if n != len(buf) {
		return ErrCorruptedFile
	}
	return nil
}

func (file *File) writeAt(offset int64, buf []byte) error {
	n, err := file.f.WriteAt(buf, offset)
	if err != nil {
		return wrapIO("write", err)
	}
	if n != len(buf) {
		return wrapIO("write", io.ErrShortWrite)
	}
	return nil
}

func (file *File) readU64(offset int64) (uint64, error) {
	var buf [bytesInU64]byte
	if err := file.readAt(offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (file *File) writeU64(offset int64, val uint64) error {
	var buf [bytesInU64]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	return file.writeAt(offset, buf[:])
}

func (file *File) readPageHeader(handle uint64) (pageHeader, error) {
	word, err := file.readU64(int64(handle))
	if err != nil {
		return pageHeader{}, err
	}
	return decodeHeader(word), nil
}

func (file *File) writePageHeader(handle uint64, h pageHeader) error {
	return file.writeU64(int64(handle), encodeHeader(h))
}

func (file *File) fileSize() (int64, error) {
	info, err := file.f.Stat()
	if err != nil {
		return 0, wrapIO("stat", err)
	}
	return info.Size(), nil
}

// --- header manager -------------------------------------------------------

func (file *File) createHeader() error {
	if err := file.writeAt(file.magicOffset(), file.config.MagicBytes); err != nil {
		return err
	}
	if err := file.writeU64(file.freeListOffset(), 0); err != nil {
		return err
	}
	if err := file.writeU64(file.rootOffset(), 0); err != nil {
		return err
	}
	root, err := file.Alloc()
	if err != nil {
		return err
	}
	return file.writeU64(file.rootOffset(), root)
}

func (file *File) checkMagic() error {
	got := make([]byte, len(file.config.MagicBytes))
	n, err := file.f.ReadAt(got, file.magicOffset())
	if err != nil && err != io.EOF {
		return wrapIO("read magic", err)
	}
	if n != len(got) {
		return ErrInvalidFile
	}
	for i := range got {
		if got[i] != file.config.MagicBytes[i] {
			return ErrInvalidFile
		}
	}
	return nil
}

func (file *File) freeListHead() (uint64, error) {
	return file.readU64(file.freeListOffset())
}

func (file *File) setFreeListHead(handle uint64) error {
	return file.writeU64(file.freeListOffset(), handle)
}

func (file *File) rootHandle() (uint64, error) {
	return file.readU64(file.rootOffset())
}

func (file *File) setRootHandle(handle uint64) error {
	return file.writeU64(file.rootOffset(), handle)
}

// --- pointer validation ----------------------------------------------------

// checkPointer validates handle per spec.md §3: it must be at or past the
// header, aligned to the page stride, within the current file size, and
// currently tagged NEXT or FINAL (not DELETED, not the reserved tag).
func (file *File) checkPointer(handle uint64) error {
	h := int64(handle)
	if h < file.headerSize() || (h-file.headerSize())%file.pageStride() != 0 {
		return ErrInvalidPointer
	}
	size, err := file.fileSize()
	if err != nil {
		return err
	}
	if h >= size {
		return ErrInvalidPointer
	}
	hdr, err := file.readPageHeader(handle)
	if err != nil {
		return err
	}
	switch hdr.tag {
	case tagNext, tagFinal:
		return nil
	case tagDeleted:
		return ErrDeletedPointer
	default:
		return ErrCorruptedFile
	}
}
