package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	syncsvc "github.com/inkhaus/studio/internal/sync"
)

type triggerSyncRequest struct {
	PageSize      int  `json:"page_size"`
	ForceFullSync bool `json:"force_full_sync"`
}

// TriggerSync runs one sync pass inline and returns its result. An aborted
// run still reports the partial counters alongside the error status.
func (s *Server) TriggerSync(c *gin.Context) {
	var req triggerSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	result, err := s.syncSvc.SyncAppointments(c.Request.Context(), syncsvc.Options{
		PageSize:      req.PageSize,
		ForceFullSync: req.ForceFullSync,
	})
	if err != nil && result == nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

func (s *Server) GetSyncStatus(c *gin.Context) {
	state, err := s.bookingSvc.SyncStatus(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}
