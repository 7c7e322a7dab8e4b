// handlers_control.go - Server lifecycle handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serve-folder/backend/internal/models"
)

// ControlHandlerImpl implements the ControlHandler interface
type ControlHandlerImpl struct {
	shutdown func()
}

// NewControlHandler creates a control handler. shutdown is invoked shortly
// after a confirmed stop request so the response can reach the client first.
func NewControlHandler(shutdown func()) ControlHandler {
	return &ControlHandlerImpl{shutdown: shutdown}
}

// HandleStop shuts the server down when the request carries confirm:true
func (h *ControlHandlerImpl) HandleStop(c echo.Context) error {
	var req models.StopRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError("confirm")
	}

	if !req.Confirm || h.shutdown == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Failed to stop server",
		})
	}

	go func() {
		time.Sleep(500 * time.Millisecond)
		h.shutdown()
	}()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Server is shutting down",
	})
}
