// Package files implements whole-file reads and small file-system helpers.
package files

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Exists returns true if file or directory exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadAll returns the whole content of the file at path.
//
// The file is memory mapped and copied out, so the returned slice is owned by the caller
// and the mapping is released before returning.
func ReadAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %q", path)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%q is a directory", path)
	}
	if info.Size() == 0 {
		// Empty files can't be mapped.
		return []byte{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap %q", path)
	}
	content := make([]byte, len(m))
	copy(content, m)
	if err := m.Unmap(); err != nil {
		return nil, errors.Wrapf(err, "failed to unmap %q", path)
	}
	return content, nil
}
