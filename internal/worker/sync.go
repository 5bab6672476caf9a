package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/helpers"
	"github.com/fluffyriot/ttsync/internal/puller"
	"github.com/fluffyriot/ttsync/internal/reconciler"
	"github.com/fluffyriot/ttsync/internal/stats"
)

var (
	ErrBusy     = errors.New("sync already in progress")
	ErrNotFound = errors.New("username could not be resolved")
)

// syncUsername is the full pipeline for one username: resolve, cache the
// avatar, reconcile the profile, pull posts, recompute rollups.
func (w *Worker) syncUsername(ctx context.Context, username string) error {
	username = helpers.NormalizeUsername(username)
	if username == "" {
		return fmt.Errorf("no username provided")
	}

	res := w.Fetcher.ResolveProfile(ctx, username)
	switch res.Outcome {
	case fetcher.OutcomeNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	case fetcher.OutcomeTransient:
		return fmt.Errorf("resolving %s failed, try again later", username)
	}

	if _, err := reconciler.Reconcile(ctx, w.DB, w.candidate(ctx, username, res)); err != nil {
		return fmt.Errorf("reconciling %s: %w", username, err)
	}

	if _, err := puller.Pull(ctx, w.DB, w.Fetcher, res.SecUID); err != nil {
		return fmt.Errorf("pulling posts for %s: %w", username, err)
	}

	if err := stats.CalcRollups(ctx, w.DB, res.SecUID); err != nil {
		return fmt.Errorf("rollups for %s: %w", username, err)
	}

	log.Printf("Worker: synced %s", username)
	return nil
}

// candidate converts a resolution into reconciler input, caching the
// avatar on the way. A cache failure just means no avatar this round.
func (w *Worker) candidate(ctx context.Context, username string, res fetcher.Resolved) reconciler.Candidate {
	avatar := ""
	if res.Metrics.AvatarURL != "" && w.Images != nil {
		avatar = w.Images.Fetch(ctx, res.Metrics.AvatarURL, username)
	}

	return reconciler.Candidate{
		Username:     username,
		SecUID:       res.SecUID,
		FullName:     res.Metrics.FullName,
		Followers:    res.Metrics.Followers,
		Following:    res.Metrics.Following,
		AccountLikes: res.Metrics.AccountLikes,
		Seller:       res.Metrics.Seller,
		ProfileURL:   res.Metrics.ProfileURL,
		Email:        res.Email,
		AvatarURL:    avatar,
		Bio:          res.Metrics.Bio,
	}
}
