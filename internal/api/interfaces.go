// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/serve-folder/backend/internal/models"
)

// BrowseHandler handles directory listing operations
type BrowseHandler interface {
	HandleListDirectory(c echo.Context) error
	HandleListDirectoryMsgpack(c echo.Context) error
}

// ZipHandler handles folder-to-ZIP download operations
type ZipHandler interface {
	HandleZipInit(c echo.Context) error
	HandleZipProgress(c echo.Context) error
	HandleZipProgressStream(c echo.Context) error
	HandleDownloadFolder(c echo.Context) error
}

// ControlHandler handles server lifecycle operations
type ControlHandler interface {
	HandleStop(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// OperationRegistry defines the interface for ZIP operation tracking.
// This allows mocking in tests. Satisfied by *operation.Registry, and a
// superset of zipstream.ProgressSink so handlers can hand it straight to
// the encoder.
type OperationRegistry interface {
	Create() models.ZipOperation
	SetTotal(id string, total int)
	Update(id string, processed int, currentFile string)
	MarkSkipped(id string)
	Get(id string) (models.ZipProgress, bool)
	Complete(id string, success bool)
}
