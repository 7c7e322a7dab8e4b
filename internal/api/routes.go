// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/serve-folder/backend/internal/zipstream"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Root     string
	Registry OperationRegistry
	Encoder  *zipstream.Encoder
	Shutdown func()
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Browse  BrowseHandler
	Zip     ZipHandler
	Control ControlHandler
	Health  HealthHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Browse:  NewBrowseHandler(deps.Root),
		Zip:     NewZipHandler(deps.Root, deps.Registry, deps.Encoder),
		Control: NewControlHandler(deps.Shutdown),
		Health:  NewHealthHandler(deps.Version),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Directory listing
	e.GET("/api/list", handlers.Browse.HandleListDirectory)
	e.GET("/api/list/msgpack", handlers.Browse.HandleListDirectoryMsgpack)

	// Folder-to-ZIP downloads
	zipGroup := e.Group("/api/zip")
	zipGroup.GET("/init", handlers.Zip.HandleZipInit)
	zipGroup.GET("/progress", handlers.Zip.HandleZipProgress)
	zipGroup.GET("/progress/stream", handlers.Zip.HandleZipProgressStream)
	e.GET("/api/download/folder", handlers.Zip.HandleDownloadFolder)

	// Server control
	e.POST("/api/stop", handlers.Control.HandleStop)
}
