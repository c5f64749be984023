package utils

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temp file in the same directory and renames
// it over path, so readers never observe a partially written file. Ownership is
// fixed when running under sudo.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return FixFileOwnership(path)
}

// MkdirAllWithOwnership creates a directory (and parents) and fixes ownership when running with sudo.
func MkdirAllWithOwnership(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return err
	}
	return FixFileOwnership(path)
}

// OpenFileWithOwnership opens a file with flags and fixes ownership when running with sudo.
// Caller is responsible for closing the file.
func OpenFileWithOwnership(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	if flag&os.O_CREATE != 0 {
		_ = FixFileOwnership(path) // non-critical
	}
	return f, nil
}
