// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// ImageProxyHandler streams an external avatar through our origin so the
// front-end avoids CORS trouble. Anything off the approved CDN list, and
// any fetch failure, degrades to the placeholder image.
func (h *Handler) ImageProxyHandler(c *gin.Context) {
	imageURL := c.Query("url")
	if imageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "url parameter is required"})
		return
	}

	parsed, err := url.Parse(imageURL)
	if err != nil || !h.allowedImageHost(parsed.Hostname()) {
		c.Redirect(http.StatusFound, h.Config.PlaceholderImage)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		c.Redirect(http.StatusFound, h.Config.PlaceholderImage)
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.Redirect(http.StatusFound, h.Config.PlaceholderImage)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Redirect(http.StatusFound, h.Config.PlaceholderImage)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Status(http.StatusOK)
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Headers already sent; nothing left to do but drop the connection.
		c.Abort()
	}
}

func (h *Handler) allowedImageHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range h.Config.AllowedImageHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
