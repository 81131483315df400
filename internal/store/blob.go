package store

// Blob I/O: walks, extends, and truncates page chains to implement read,
// write, and delete over variable-length data.

// Read validates handle, then follows its chain and returns the accumulated
// payload bytes. The first page of a blob carrying FINAL(0) is the
// canonical empty blob.
func (file *File) Read(handle uint64) ([]byte, error) {
	if err := file.checkPointer(handle); err != nil {
		return nil, err
	}

	data := []byte{}
	ptr := handle
	for {
		hdr, err := file.readPageHeader(ptr)
		if err != nil {
			return nil, err
		}
		switch hdr.tag {
		case tagNext:
			chunk := make([]byte, file.config.PageSize)
			if err := file.readAt(int64(ptr)+bytesInU64, chunk); err != nil {
				return nil, err
			}
			data = append(data, chunk...)
			ptr = hdr.value
		case tagFinal:
			n := int(hdr.value)
			chunk := make([]byte, n)
			if err := file.readAt(int64(ptr)+bytesInU64, chunk); err != nil {
				return nil, err
			}
			data = append(data, chunk...)
			return data, nil
		default:
			return nil, ErrCorruptedFile
		}
	}
}

// ReadRoot loads the root handle from the file header and reads it.
func (file *File) ReadRoot() ([]byte, error) {
	root, err := file.rootHandle()
	if err != nil {
		return nil, err
	}
	return file.Read(root)
}

// Write validates handle, then writes data over its chain: growing the
// chain on demand for data longer than the existing chain, and truncating
// (deleting) any now-orphaned tail pages for data that got shorter. The
// chain's first page — and so the handle itself — never moves.
func (file *File) Write(handle uint64, data []byte) error {
	if err := file.checkPointer(handle); err != nil {
		return err
	}

	pageSize := file.config.PageSize
	ptr := handle
	for len(data) > pageSize {
		if err := file.writeAt(int64(ptr)+bytesInU64, data[:pageSize]); err != nil {
			return err
		}
		hdr, err := file.readPageHeader(ptr)
		if err != nil {
			return err
		}
		switch hdr.tag {
		case tagNext:
			ptr = hdr.value
		case tagFinal:
			next, err := file.Alloc()
			if err != nil {
				return err
			}
			if err := file.writePageHeader(ptr, pageHeader{tag: tagNext, value: next}); err != nil {
				return err
			}
			ptr = next
		default:
			return ErrCorruptedFile
		}
		data = data[pageSize:]
	}

	hdr, err := file.readPageHeader(ptr)
	if err != nil {
		return err
	}
	switch hdr.tag {
	case tagNext:
		if err := file.Delete(hdr.value); err != nil {
			return err
		}
	case tagFinal:
	default:
		return ErrCorruptedFile
	}

	buf := make([]byte, pageSize)
	copy(buf, data)
	for i := len(data); i < pageSize; i++ {
		buf[i] = 0xFF
	}
	if err := file.writeAt(int64(ptr)+bytesInU64, buf); err != nil {
		return err
	}
	return file.writePageHeader(ptr, pageHeader{tag: tagFinal, value: uint64(len(data))})
}

// WriteRoot loads the root handle from the file header and writes through
// it. The root handle itself is stable across writes — WriteRoot never
// relocates the root blob's first page.
func (file *File) WriteRoot(data []byte) error {
	root, err := file.rootHandle()
	if err != nil {
		return err
	}
	return file.Write(root, data)
}
