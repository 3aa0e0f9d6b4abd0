// Package fileutil reads transaction input and writes key and config files.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// StdinPath names standard input in ReadInput.
const StdinPath = "-"

// DefaultMaxInput bounds ReadInput when no limit is given.
const DefaultMaxInput int64 = 4 << 20

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "path is empty"})

// WriteAtomic writes data to path with perm. The data goes to a temp file
// in the same directory, which is synced and then renamed over path, so a
// failed write leaves any existing file intact.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return writeError(path, "create temp file", err)
	}

	tmpPath := tmpFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmpFile.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return writeError(path, "set permissions", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return writeError(path, "write", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return writeError(path, "sync", err)
	}
	if err := tmpFile.Close(); err != nil {
		return writeError(path, "close", err)
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path is chosen by the caller
		return writeError(path, "rename", err)
	}

	// Directory sync makes the rename durable; failures are ignored.
	if dirFile, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}
	return nil
}

func writeError(path, step string, cause error) error {
	return txerr.WithCause(txerr.WithDetails(txerr.ErrGeneral, map[string]string{
		"path": path,
		"step": step,
	}), cause)
}

// ReadInput reads path, or stdin when path is "-". Input longer than
// maxBytes is rejected; maxBytes <= 0 selects DefaultMaxInput. Surrounding
// whitespace is trimmed so hex and JSON pasted with a trailing newline decode.
func ReadInput(path string, stdin io.Reader, maxBytes int64) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInput
	}

	var r io.Reader
	switch path {
	case StdinPath:
		if stdin == nil {
			stdin = os.Stdin
		}
		r = stdin
	default:
		f, err := os.Open(path) //nolint:gosec // G304: reading user-named input is the purpose
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, txerr.WithDetails(txerr.ErrNotFound, map[string]string{"path": path})
			}
			return nil, txerr.WithCause(txerr.WithDetails(txerr.ErrGeneral, map[string]string{"path": path}), err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, txerr.WithCause(txerr.WithDetails(txerr.ErrGeneral, map[string]string{"path": path}), err)
	}
	if int64(len(data)) > maxBytes {
		return nil, txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{
			"path":   path,
			"reason": fmt.Sprintf("input exceeds %d bytes", maxBytes),
		})
	}
	return bytes.TrimSpace(data), nil
}
