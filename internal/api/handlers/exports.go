package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/fluffyriot/ttsync/internal/exports"
	"github.com/fluffyriot/ttsync/internal/helpers"
	"github.com/gin-gonic/gin"
)

// ExportProfilesHandler streams the whole profiles table as a CSV download.
func (h *Handler) ExportProfilesHandler(c *gin.Context) {
	profiles, err := h.DB.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to list profiles"})
		return
	}

	filename := "profiles_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := exports.WriteProfilesCSV(c.Writer, profiles); err != nil {
		log.Printf("Exports: writing profiles csv: %v", err)
		c.Abort()
	}
}

// ExportProfilePostsHandler streams one profile's stored posts as CSV.
func (h *Handler) ExportProfilePostsHandler(c *gin.Context) {
	username := helpers.NormalizeUsername(c.Param("username"))

	posts, err := h.DB.ListPostsByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to load posts"})
		return
	}

	filename := username + "_posts_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := exports.WritePostsCSV(c.Writer, posts); err != nil {
		log.Printf("Exports: writing posts csv for %s: %v", username, err)
		c.Abort()
	}
}
