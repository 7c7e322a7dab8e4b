// Package fsutil provides safe path resolution and deterministic directory
// traversal confined to a served root directory.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths that escape the served root or
	// contain forbidden bytes.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotFound is returned when a resolved path does not exist.
	ErrNotFound = errors.New("path not found")
)

// CleanRelPath takes a user path like "", ".", "/a/b", "a//b", "a\b" and
// returns a slash-based relative path without a leading slash ("" means root).
func CleanRelPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "." || p == "/" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p) // force absolute for stable cleaning
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// ResolveWithinRoot returns an absolute filesystem path under rootAbs for a
// client-supplied relative path. It rejects traversal outside the root
// (".." segments, absolute-path injection, symlink escape) and paths that
// contain NUL or other control characters.
func ResolveWithinRoot(rootAbs, rel string) (string, error) {
	for _, r := range rel {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("%w: control character in path", ErrInvalidPath)
		}
	}

	trimmed := strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/")
	if strings.HasPrefix(trimmed, "/") && trimmed != "/" {
		return "", fmt.Errorf("%w: absolute path", ErrInvalidPath)
	}
	if len(trimmed) >= 2 && trimmed[1] == ':' {
		return "", fmt.Errorf("%w: absolute path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: parent traversal", ErrInvalidPath)
		}
	}

	rel = CleanRelPath(rel)
	rootClean := filepath.Clean(rootAbs)
	if rel == "" {
		return rootClean, nil
	}

	abs := filepath.Clean(filepath.Join(rootClean, filepath.FromSlash(rel)))
	if !isWithin(rootClean, abs) {
		return "", fmt.Errorf("%w: escapes served root", ErrInvalidPath)
	}

	// Resolve symlinks so a link pointing outside the root cannot smuggle
	// content in. EvalSymlinks also doubles as the existence check.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return "", err
	}
	resolvedRoot, err := filepath.EvalSymlinks(rootClean)
	if err != nil {
		return "", err
	}
	if !isWithin(resolvedRoot, resolved) {
		return "", fmt.Errorf("%w: symlink escapes served root", ErrInvalidPath)
	}
	return abs, nil
}

func isWithin(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}
