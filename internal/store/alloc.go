package store

// Allocator: hands out page handles, either by popping the free list or by
// extending the file, and releases whole chains back onto the free list.

// Alloc returns a handle to a fresh, empty blob (a single page tagged
// FINAL(0)). It pops the free list if non-empty, otherwise extends the
// file by one page stride.
func (file *File) Alloc() (uint64, error) {
	head, err := file.freeListHead()
	if err != nil {
		return 0, err
	}

	var handle uint64
	if head == 0 {
		handle, err = file.extendFile()
		if err != nil {
			return 0, err
		}
	} else {
		hdr, err := file.readPageHeader(head)
		if err != nil {
			return 0, err
		}
		if hdr.tag != tagDeleted {
			return 0, ErrCorruptedFile
		}
		if err := file.setFreeListHead(hdr.value); err != nil {
			return 0, err
		}
		handle = head
	}

	if err := file.writePageHeader(handle, pageHeader{tag: tagFinal, value: 0}); err != nil {
		return 0, err
	}
	return handle, nil
}

// extendFile appends one full page stride (header + page_size payload
// bytes) filled with 0xFF payload, per the defensive-scrub design note, and
// returns the new page's handle.
func (file *File) extendFile() (uint64, error) {
	size, err := file.fileSize()
	if err != nil {
		return 0, err
	}
	payload := make([]byte, file.pageStride())
	for i := range payload {
		payload[i] = 0xFF
	}
	if err := file.writeAt(size, payload); err != nil {
		return 0, err
	}
	return uint64(size), nil
}

// Delete validates handle and walks its chain to the FINAL page, pushing
// every page visited onto the free list in traversal order (so the chain's
// pages end up reversed on the free list relative to visit order — harmless,
// per spec.md §4.3).
func (file *File) Delete(handle uint64) error {
	if err := file.checkPointer(handle); err != nil {
		return err
	}
	ptr := handle
	for {
		hdr, err := file.readPageHeader(ptr)
		if err != nil {
			return err
		}

		freeHead, err := file.freeListHead()
		if err != nil {
			return err
		}
		if err := file.writePageHeader(ptr, pageHeader{tag: tagDeleted, value: freeHead}); err != nil {
			return err
		}
		if err := file.setFreeListHead(ptr); err != nil {
			return err
		}
		if err := file.scrubPayload(ptr); err != nil {
			return err
		}

		switch hdr.tag {
		case tagNext:
			ptr = hdr.value
		case tagFinal:
			return nil
		default:
			return ErrCorruptedFile
		}
	}
}

// scrubPayload overwrites a page's payload bytes with 0xFF. Not required for
// correctness — readers honor FINAL's byte count — but it keeps hex-dump
// inspection and post-hoc corruption detection meaningful (spec.md §9).
func (file *File) scrubPayload(handle uint64) error {
	payload := make([]byte, file.config.PageSize)
	for i := range payload {
		payload[i] = 0xFF
	}
	return file.writeAt(int64(handle)+bytesInU64, payload)
}
