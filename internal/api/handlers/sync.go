package handlers

import (
	"errors"
	"net/http"

	"github.com/fluffyriot/ttsync/internal/helpers"
	"github.com/fluffyriot/ttsync/internal/worker"
	"github.com/gin-gonic/gin"
)

type syncRequest struct {
	Username string `json:"username" form:"username"`
}

// SyncProfileHandler runs the full resolve+reconcile+pull pipeline for one
// username and reports the outcome.
func (h *Handler) SyncProfileHandler(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" {
		req.Username = c.Query("username")
	}

	username := helpers.NormalizeUsername(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "username is required",
		})
		return
	}

	if err := h.Worker.SyncUser(c.Request.Context(), username); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, worker.ErrBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"status":   "error",
			"username": username,
			"error":    "sync failed",
			"detail":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"username": username,
		"message":  "Synced " + username,
	})
}
