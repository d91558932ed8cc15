// =============================================================================
// Sweepstakes Prefill Generator - File Manager Utility
// =============================================================================
//
// This module provides the file handling the generator needs:
//   - Discovery of contest logs under the input directory
//   - Output directory management
//   - Atomic output writes
//   - The run summary report (summary.go)
//
// OUTPUT STRATEGY:
//   - Every output is written to a temporary file next to its final name and
//     renamed into place once complete
//   - An output that fails midway is removed, so a previous run's file is
//     either replaced completely or left untouched
//   - Outputs are rewritten from scratch on every run
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// InputDir is the directory walked for Cabrillo logs.
	InputDir string

	// OutputDir is the directory output files are written to.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// SkippedEntry is a directory entry that was not returned as a log file.
type SkippedEntry struct {
	// Path is the path of the entry.
	Path string

	// Reason says why the entry was skipped, e.g. "symlink" or the error
	// that occurred while reading it.
	Reason string
}

// Discovery is the result of walking the input directory.
type Discovery struct {
	// Files holds the regular files found, in lexical order.
	Files []string

	// Skipped holds non-regular entries and entries that could not be read.
	Skipped []SkippedEntry
}

// DiscoverLogFiles walks the input directory recursively.
//
// InputDir itself may be a symlink to a directory; it is resolved before the
// walk and the returned paths stay below InputDir as named.
//
// RETURNS:
//   - Every regular file below InputDir, in lexical order. Symlinks, sockets,
//     devices and unreadable subdirectories are listed in Skipped.
//   - An error if InputDir itself cannot be read.
func (fm *FileManager) DiscoverLogFiles() (*Discovery, error) {
	root, err := filepath.EvalSymlinks(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input directory: %w", err)
	}

	result := &Discovery{}

	// named maps a path below the resolved root back below InputDir.
	named := func(path string) string {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return path
		}
		return filepath.Join(fm.InputDir, rel)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			result.Skipped = append(result.Skipped, SkippedEntry{Path: named(path), Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			result.Skipped = append(result.Skipped, SkippedEntry{Path: named(path), Reason: describeMode(d.Type())})
			return nil
		}

		result.Files = append(result.Files, named(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	return result, nil
}

// describeMode names the kind of a non-regular file.
func describeMode(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeDevice != 0:
		return "device"
	default:
		return "not a regular file (" + mode.String() + ")"
	}
}

// =============================================================================
// ATOMIC OUTPUT
// =============================================================================

// WriteFile writes an output file atomically.
//
// PARAMETERS:
//   - name: The file name, relative to OutputDir unless absolute.
//   - write: Produces the file contents.
//
// RETURNS:
//   - The path of the written file.
//   - The number of bytes written.
//   - An error if the file cannot be created or write fails. The temporary
//     file is removed and any existing file is left untouched.
func (fm *FileManager) WriteFile(name string, write func(io.Writer) error) (string, int64, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(fm.OutputDir, name)
	}

	tmpPath := filepath.Join(filepath.Dir(path), TempFileName(filepath.Base(path)))
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		return "", 0, errors.Join(fmt.Errorf("failed to write %s: %w", path, err), discard(tmp))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return path, cw.n, nil
}

// TempFileName returns a hidden, unique temporary name for an output file.
//
// EXAMPLE:
//   name:   "TRMASTER.ASC"
//   output: ".TRMASTER.ASC.a1b2c3d4-e5f6-7890-abcd-ef1234567890.tmp"
func TempFileName(name string) string {
	return fmt.Sprintf(".%s.%s.tmp", name, uuid.New().String())
}

// discard closes and removes a temporary file.
func discard(f *os.File) error {
	closeErr := f.Close()
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return closeErr
	}
	return nil
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
