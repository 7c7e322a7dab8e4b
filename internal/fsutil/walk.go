package fsutil

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Entry is one item produced by Walk.
type Entry struct {
	// RelPath is the slash-separated path relative to the walked root.
	RelPath string
	// AbsPath is the absolute filesystem path.
	AbsPath string
	IsDir   bool
	// Size is the file size in bytes; 0 for directories.
	Size    int64
	ModTime time.Time
}

// WalkFunc receives each entry in traversal order. Returning an error stops
// the walk and propagates the error to the Walk caller.
type WalkFunc func(e Entry) error

// Walk traverses rootAbs depth-first, visiting both files and intermediate
// directories so empty directories are representable in an archive. Entries
// at each level come in the lexicographic order of os.ReadDir, which makes
// repeated walks of an unmodified tree deterministic. The root itself is not
// reported. Subdirectories that cannot be read are skipped so that one
// unreadable branch does not abort an otherwise large traversal; only a
// failure to open the root is fatal.
func Walk(rootAbs string, fn WalkFunc) error {
	if _, err := os.ReadDir(rootAbs); err != nil {
		return fmt.Errorf("reading root directory: %w", err)
	}
	return walkDir(rootAbs, "", fn)
}

func walkDir(absDir, relDir string, fn WalkFunc) error {
	entries, err := os.ReadDir(absDir)
	if err != nil {
		// Unreadable subdirectory, skip-and-continue policy.
		return nil
	}
	for _, de := range entries {
		rel := de.Name()
		if relDir != "" {
			rel = path.Join(relDir, de.Name())
		}
		abs := filepath.Join(absDir, de.Name())

		if de.IsDir() {
			e := Entry{RelPath: rel, AbsPath: abs, IsDir: true}
			if info, err := de.Info(); err == nil {
				e.ModTime = info.ModTime()
			}
			if err := fn(e); err != nil {
				return err
			}
			if err := walkDir(abs, rel, fn); err != nil {
				return err
			}
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		e := Entry{RelPath: rel, AbsPath: abs, Size: info.Size(), ModTime: info.ModTime()}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// CountFiles counts regular files under rootAbs recursively. It is used to
// fix total_files at operation init so progress percentages are accurate.
func CountFiles(rootAbs string) (int, error) {
	count := 0
	err := Walk(rootAbs, func(e Entry) error {
		if !e.IsDir {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
