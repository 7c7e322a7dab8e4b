// handlers_browse.go - Directory listing handlers
package api

import (
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/serve-folder/backend/internal/fsutil"
	"github.com/serve-folder/backend/internal/models"
)

// BrowseHandlerImpl implements the BrowseHandler interface
type BrowseHandlerImpl struct {
	root string
}

// NewBrowseHandler creates a new browse handler serving the given root
func NewBrowseHandler(root string) BrowseHandler {
	return &BrowseHandlerImpl{root: root}
}

// HandleListDirectory returns the JSON listing of one directory level
func (h *BrowseHandlerImpl) HandleListDirectory(c echo.Context) error {
	resp, err := h.listDirectory(c.QueryParam("path"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleListDirectoryMsgpack returns the same listing msgpack-encoded,
// for large directories where JSON overhead matters
func (h *BrowseHandlerImpl) HandleListDirectoryMsgpack(c echo.Context) error {
	resp, err := h.listDirectory(c.QueryParam("path"))
	if err != nil {
		return err
	}
	data, merr := msgpack.Marshal(resp)
	if merr != nil {
		return NewInternalError("failed to encode listing", merr)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *BrowseHandlerImpl) listDirectory(rel string) (*models.DirResponse, error) {
	abs, err := fsutil.ResolveWithinRoot(h.root, rel)
	if err != nil {
		return nil, pathError(rel, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, pathError(rel, err)
	}
	if !info.IsDir() {
		return nil, NewInvalidPathError(nil)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsPermission(err) {
			return nil, NewAccessDeniedError(rel)
		}
		return nil, NewInternalError("failed to read directory", err)
	}

	relClean := fsutil.CleanRelPath(rel)
	entries := make([]models.FileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entry := models.FileEntry{
			Name:  de.Name(),
			Path:  path.Join(relClean, de.Name()),
			IsDir: fi.IsDir(),
		}
		if fi.Mode().IsRegular() {
			entry.Size = fi.Size()
		}
		entries = append(entries, entry)
	}

	// Directories first, then case-insensitive by name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return &models.DirResponse{
		CurrentPath: relClean,
		Entries:     entries,
	}, nil
}
