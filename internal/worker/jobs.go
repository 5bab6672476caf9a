package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/puller"
	"github.com/fluffyriot/ttsync/internal/reconciler"
	"github.com/fluffyriot/ttsync/internal/stats"
)

// Batch jobs. Each processes one username at a time with a fixed delay
// between iterations, and logs-and-continues on per-item failure; one bad
// username never aborts the batch.

func (w *Worker) UpdateMissingMetrics(ctx context.Context) {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return
	}
	defer w.unlock()
	w.updateMissingMetrics(ctx)
}

func (w *Worker) updateMissingMetrics(ctx context.Context) {
	profiles, err := w.DB.ListProfilesMissingMetrics(ctx)
	if err != nil {
		log.Printf("Worker: listing profiles with missing metrics failed: %v", err)
		return
	}
	log.Printf("Worker: found %d profiles to update", len(profiles))

	count := 0
	for _, p := range profiles {
		res := w.Fetcher.ResolveProfile(ctx, p.Username)
		if res.Outcome != fetcher.OutcomeOK {
			log.Printf("Worker: skipping %s (%s)", p.Username, res.Outcome)
			time.Sleep(w.Config.ResolveDelay)
			continue
		}

		if _, err := reconciler.Reconcile(ctx, w.DB, w.candidate(ctx, p.Username, res)); err != nil {
			log.Printf("Worker: reconcile failed for %s: %v", p.Username, err)
		} else {
			count++
		}
		time.Sleep(w.Config.ResolveDelay)
	}
	log.Printf("Worker: finished updating %d/%d profiles", count, len(profiles))
}

// ResolveMissingSecUIDs fills in sec_uids for profiles that never resolved.
// Usernames the API positively does not know are removed and recorded in
// the failures log; transient errors leave the row for the next run.
func (w *Worker) ResolveMissingSecUIDs(ctx context.Context) {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return
	}
	defer w.unlock()

	profiles, err := w.DB.ListProfilesMissingSecUID(ctx)
	if err != nil {
		log.Printf("Worker: listing profiles with missing sec_uid failed: %v", err)
		return
	}
	log.Printf("Worker: found %d profiles with missing sec_uid", len(profiles))

	for _, p := range profiles {
		res := w.Fetcher.ResolveProfile(ctx, p.Username)
		switch res.Outcome {
		case fetcher.OutcomeOK:
			if _, err := reconciler.Reconcile(ctx, w.DB, w.candidate(ctx, p.Username, res)); err != nil {
				log.Printf("Worker: reconcile failed for %s: %v", p.Username, err)
			}
		case fetcher.OutcomeNotFound:
			log.Printf("Worker: %s is unresolvable, removing", p.Username)
			if err := w.DB.DeleteProfileByUsername(ctx, p.Username); err != nil {
				log.Printf("Worker: failed to delete %s: %v", p.Username, err)
			}
			w.logFailure(p.Username, "could not resolve sec_uid")
		default:
			log.Printf("Worker: transient failure for %s, keeping for next run", p.Username)
		}
		time.Sleep(w.Config.ResolveDelay)
	}
}

func (w *Worker) PullAllPosts(ctx context.Context) {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return
	}
	defer w.unlock()
	w.pullAllPosts(ctx)
}

func (w *Worker) pullAllPosts(ctx context.Context) {
	profiles, err := w.DB.ListProfilesWithSecUID(ctx)
	if err != nil {
		log.Printf("Worker: listing profiles failed: %v", err)
		return
	}

	for _, p := range profiles {
		secUID := p.SecUID.String
		if _, err := puller.Pull(ctx, w.DB, w.Fetcher, secUID); err != nil {
			log.Printf("Worker: pull failed for %s: %v", p.Username, err)
			time.Sleep(w.Config.PullDelay)
			continue
		}
		if err := stats.CalcRollups(ctx, w.DB, secUID); err != nil {
			log.Printf("Worker: rollups failed for %s: %v", p.Username, err)
		}
		time.Sleep(w.Config.PullDelay)
	}
}

// FillAvatars backfills cached avatar references for profiles without one.
func (w *Worker) FillAvatars(ctx context.Context) {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return
	}
	defer w.unlock()

	profiles, err := w.DB.ListProfilesMissingAvatar(ctx)
	if err != nil {
		log.Printf("Worker: listing profiles with missing avatars failed: %v", err)
		return
	}
	log.Printf("Worker: found %d profiles without avatars", len(profiles))

	for _, p := range profiles {
		res := w.Fetcher.ResolveProfile(ctx, p.Username)
		if res.Outcome != fetcher.OutcomeOK {
			log.Printf("Worker: skipping %s (%s)", p.Username, res.Outcome)
			time.Sleep(w.Config.ResolveDelay)
			continue
		}
		if _, err := reconciler.Reconcile(ctx, w.DB, w.candidate(ctx, p.Username, res)); err != nil {
			log.Printf("Worker: reconcile failed for %s: %v", p.Username, err)
		}
		time.Sleep(w.Config.ResolveDelay)
	}
}

func (w *Worker) logFailure(username, reason string) {
	f, err := os.OpenFile(w.Config.FailuresLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Worker: cannot open failures log: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s - %s\n", username, reason)
}
