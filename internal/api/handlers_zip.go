// handlers_zip.go - Folder-to-ZIP download operation handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serve-folder/backend/internal/fsutil"
	"github.com/serve-folder/backend/internal/models"
	"github.com/serve-folder/backend/internal/zipstream"
)

// ZipHandlerImpl implements the ZipHandler interface
type ZipHandlerImpl struct {
	root     string
	registry OperationRegistry
	encoder  *zipstream.Encoder
}

// NewZipHandler creates a new zip handler instance
func NewZipHandler(root string, registry OperationRegistry, encoder *zipstream.Encoder) ZipHandler {
	return &ZipHandlerImpl{
		root:     root,
		registry: registry,
		encoder:  encoder,
	}
}

// HandleZipInit creates an operation record for a folder download and
// pre-scans the tree so total_files is fixed before any bytes stream.
func (h *ZipHandlerImpl) HandleZipInit(c echo.Context) error {
	rel := c.QueryParam("path")
	abs, err := h.resolveDir(rel)
	if err != nil {
		return err
	}

	op := h.registry.Create()

	total, cerr := fsutil.CountFiles(abs)
	if cerr != nil {
		h.registry.Complete(op.ID, false)
		if os.IsPermission(cerr) {
			return NewAccessDeniedError(rel)
		}
		return NewInternalError("failed to scan directory", cerr)
	}
	h.registry.SetTotal(op.ID, total)

	return c.JSON(http.StatusOK, models.InitResponse{
		Success:     true,
		OperationID: op.ID,
	})
}

// HandleZipProgress returns the current progress snapshot for an operation.
// Unknown or expired ids yield 404, which tells the client to stop polling.
func (h *ZipHandlerImpl) HandleZipProgress(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return NewValidationError("id")
	}

	progress, ok := h.registry.Get(id)
	if !ok {
		return NewNotFoundError("operation", id)
	}
	return c.JSON(http.StatusOK, progress)
}

// HandleZipProgressStream streams progress snapshots via SSE until the
// operation reaches a terminal state.
func (h *ZipHandlerImpl) HandleZipProgressStream(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return NewValidationError("id")
	}

	if _, ok := h.registry.Get(id); !ok {
		return NewNotFoundError("operation", id)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(30 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			progress, ok := h.registry.Get(id)
			if !ok {
				h.sendSSEEvent(c, "error", map[string]string{"message": "operation not found"})
				return nil
			}
			h.sendSSEEvent(c, "progress", progress)
			if progress.Status.Terminal() {
				return nil
			}

		case <-timeout.C:
			h.sendSSEEvent(c, "error", map[string]string{"message": "stream timeout"})
			return nil

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (h *ZipHandlerImpl) sendSSEEvent(c echo.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data)
	c.Response().Flush()
}

// HandleDownloadFolder streams a ZIP archive of the requested folder
// straight into the response body. This is the long-lived request; the
// progress endpoint races against it on a separate worker, sharing only
// the registry record.
func (h *ZipHandlerImpl) HandleDownloadFolder(c echo.Context) error {
	rel := c.QueryParam("path")
	abs, err := h.resolveDir(rel)
	if err != nil {
		return err
	}

	// An init call normally supplies the operation id. A direct download
	// without one still works; it just gets a fresh record.
	opID := c.QueryParam("operation_id")
	progress, known := models.ZipProgress{}, false
	if opID != "" {
		progress, known = h.registry.Get(opID)
	}
	if !known {
		op := h.registry.Create()
		opID = op.ID
	}
	if !known || progress.TotalFiles == 0 {
		if total, cerr := fsutil.CountFiles(abs); cerr == nil {
			h.registry.SetTotal(opID, total)
		}
	}

	folderName := filepath.Base(abs)
	if folderName == "." || folderName == string(filepath.Separator) {
		folderName = "folder"
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.zip"`, folderName))
	c.Response().Header().Set("X-Operation-Id", opID)
	c.Response().WriteHeader(http.StatusOK)

	if err := h.encoder.Encode(c.Request().Context(), abs, c.Response(), opID, h.registry); err != nil {
		// Headers are already on the wire; the truncated archive is the
		// observable failure. The registry record is already marked failed.
		fmt.Printf("[Zip %s] stream aborted: %v\n", shortID(opID), err)
		return nil
	}
	return nil
}

// resolveDir resolves a client path and requires it to be a directory.
func (h *ZipHandlerImpl) resolveDir(rel string) (string, error) {
	abs, err := fsutil.ResolveWithinRoot(h.root, rel)
	if err != nil {
		return "", pathError(rel, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", pathError(rel, err)
	}
	if !info.IsDir() {
		return "", NewNotFoundError("directory", rel)
	}
	return abs, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
