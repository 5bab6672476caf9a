// Package imagecache downloads remote avatars once and hands out stable
// references. The target name is derived from the owner and source URL, so
// repeat calls for the same pair never refetch.
package imagecache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// minImageBytes is a crude "is this really an image" check; CDN error
	// bodies come in well under it.
	minImageBytes = 100

	// DefaultMaxAge is the cleanup sweep threshold.
	DefaultMaxAge = 7 * 24 * time.Hour
)

type Cache struct {
	store      Store
	httpClient *http.Client
}

func New(store Store, timeout time.Duration) *Cache {
	return &Cache{
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads imageURL for username and returns a stable reference, or
// "" when anything goes wrong. It never fails loudly: callers proceed
// without an avatar.
func (c *Cache) Fetch(ctx context.Context, imageURL, username string) string {
	if imageURL == "" || username == "" {
		log.Println("ImageCache: missing image URL or username, skipping download")
		return ""
	}

	name := Filename(username, imageURL)

	if c.store.Exists(name) {
		return c.store.PublicURL(name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		log.Printf("ImageCache: bad image URL for %s: %v", username, err)
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("ImageCache: download failed for %s: %v", username, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("ImageCache: download for %s returned status %d", username, resp.StatusCode)
		return ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("ImageCache: reading image for %s failed: %v", username, err)
		return ""
	}
	if len(data) < minImageBytes {
		log.Printf("ImageCache: payload for %s too small (%d bytes), likely not an image", username, len(data))
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := c.store.Put(name, data, contentType, false); err != nil {
		log.Printf("ImageCache: storing image for %s failed: %v", username, err)
		return ""
	}

	log.Printf("ImageCache: stored %s (%d KB)", name, len(data)/1024)
	return c.store.PublicURL(name)
}

// Cleanup removes entries last modified before now-maxAge and returns how
// many were deleted. Invoked on demand, never from the fetch path.
func (c *Cache) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := c.store.List("")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, e := range entries {
		if e.ModTime.Before(cutoff) {
			if err := c.store.Remove(e.Name); err != nil {
				log.Printf("ImageCache: failed to remove %s: %v", e.Name, err)
				continue
			}
			deleted++
		}
	}
	if deleted > 0 {
		log.Printf("ImageCache: cleaned up %d old images", deleted)
	}
	return deleted, nil
}

// Filename is the deterministic target name for an (owner, source URL)
// pair: lowercased owner plus a short hash of the URL.
func Filename(username, imageURL string) string {
	sum := md5.Sum([]byte(imageURL))
	return strings.ToLower(username) + "_" + hex.EncodeToString(sum[:])[:8] + ".jpg"
}
