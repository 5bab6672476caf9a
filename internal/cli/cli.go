// SPDX-License-Identifier: AGPL-3.0-only
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/fluffyriot/ttsync/internal/imagecache"
	"github.com/fluffyriot/ttsync/internal/worker"
)

// RunJob executes a one-shot maintenance job and returns once it finishes.
// Invoked from main via --job instead of starting the server.
func RunJob(ctx context.Context, name string, w *worker.Worker, images *imagecache.Cache) error {
	switch name {
	case "update-metrics":
		w.UpdateMissingMetrics(ctx)
	case "resolve-missing":
		w.ResolveMissingSecUIDs(ctx)
	case "pull-posts":
		w.PullAllPosts(ctx)
	case "fill-avatars":
		w.FillAvatars(ctx)
	case "cleanup-images":
		deleted, err := images.Cleanup(imagecache.DefaultMaxAge)
		if err != nil {
			return fmt.Errorf("image cleanup failed: %w", err)
		}
		log.Printf("Removed %d stale cached images", deleted)
	default:
		return fmt.Errorf("unknown job %q (want update-metrics, resolve-missing, pull-posts, fill-avatars or cleanup-images)", name)
	}
	return nil
}
