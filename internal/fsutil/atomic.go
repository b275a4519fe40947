// Package fsutil holds small filesystem helpers shared by the updater and CLI.
package fsutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to path using a tmp+rename strategy.
// The tmp file lives in the same directory so the rename stays on one
// filesystem. Parent directories are created as needed.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	_, err := AtomicCopy(path, bytes.NewReader(data), perm, 0)
	return err
}

// AtomicCopy streams r into path through a buffered writer of bufSize bytes
// (bufio's default when bufSize <= 0), then renames the result into place.
// On any failure the tmp file is removed and path is left untouched.
func AtomicCopy(path string, r io.Reader, perm os.FileMode, bufSize int) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create tmp: %w", err)
	}
	tmp := f.Name()
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	var w *bufio.Writer
	if bufSize > 0 {
		w = bufio.NewWriterSize(f, bufSize)
	} else {
		w = bufio.NewWriter(f)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		cleanup()
		return n, fmt.Errorf("write tmp: %w", err)
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return n, fmt.Errorf("flush tmp: %w", err)
	}
	if err := f.Chmod(perm); err != nil {
		cleanup()
		return n, fmt.Errorf("chmod tmp: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return n, fmt.Errorf("close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return n, err
	}
	return n, nil
}
