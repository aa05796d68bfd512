package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bidslite/internal/faults"
)

// File is a read-only descriptor of one candidate input file.
type File struct {
	Path      string
	Name      string
	Ancestors []string
}

// Components returns the file name followed by its ancestors, innermost first.
func (f File) Components() []string {
	out := make([]string, 0, len(f.Ancestors)+1)
	out = append(out, f.Name)
	for i := len(f.Ancestors) - 1; i >= 0; i-- {
		out = append(out, f.Ancestors[i])
	}
	return out
}

// HasExtension reports whether the file name ends with any of the given
// extensions, compared case-insensitively.
func (f File) HasExtension(exts []string) bool {
	lower := strings.ToLower(f.Name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// NewFile builds a File for path relative to root. Ancestors are the
// directories strictly between root and the file.
func NewFile(root, path string) File {
	name := filepath.Base(path)
	var ancestors []string
	if rel, err := filepath.Rel(root, filepath.Dir(path)); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ancestors = strings.Split(filepath.ToSlash(rel), "/")
	}
	return File{Path: path, Name: name, Ancestors: ancestors}
}

// ScanOptions controls directory enumeration.
type ScanOptions struct {
	// Exclude holds doublestar patterns matched against the slash-separated
	// path relative to the scan root.
	Exclude []string
}

// Scan walks root once and returns every regular file not excluded.
func Scan(root string, opts ScanOptions) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, "source", "scan", fmt.Sprintf("input directory %q does not exist", root), err)
		}
		return nil, faults.Wrap(faults.ErrIO, "source", "scan", "stat input directory", err)
	}
	if !info.IsDir() {
		return nil, faults.Wrap(faults.ErrValidation, "source", "scan", fmt.Sprintf("%q is not a directory", root), nil)
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, faults.Wrap(faults.ErrConfiguration, "source", "scan", fmt.Sprintf("invalid exclude pattern %q", pattern), nil)
		}
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if excluded(filepath.ToSlash(rel), opts.Exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, NewFile(root, path))
		return nil
	})
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "source", "scan", "walk input directory", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// DirSnapshot enumerates a directory on demand.
type DirSnapshot struct {
	Root    string
	Options ScanOptions
}

// Files scans the snapshot root.
func (s DirSnapshot) Files() ([]File, error) {
	return Scan(s.Root, s.Options)
}

// StaticSnapshot serves a fixed file listing.
type StaticSnapshot []File

// Files returns the listing unchanged.
func (s StaticSnapshot) Files() ([]File, error) {
	return []File(s), nil
}
