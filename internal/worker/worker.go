package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fluffyriot/ttsync/internal/config"
	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/imagecache"
)

// Worker owns the periodic batch run and serializes all batch work: only
// one sync is in flight at a time, so the external API never sees
// concurrent requests from this process.
type Worker struct {
	DB       *database.Queries
	Fetcher  *fetcher.Client
	Images   *imagecache.Cache
	Config   *config.AppConfig
	Ticker   *time.Ticker
	StopChan chan bool
	mu       sync.Mutex
	running  bool
	active   bool
}

func NewWorker(db *database.Queries, f *fetcher.Client, images *imagecache.Cache, cfg *config.AppConfig) *Worker {
	return &Worker{
		DB:       db,
		Fetcher:  f,
		Images:   images,
		Config:   cfg,
		StopChan: make(chan bool),
	}
}

func (w *Worker) Start(interval time.Duration) {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler already active, use Restart to change interval")
		return
	}
	w.active = true
	w.mu.Unlock()

	w.Ticker = time.NewTicker(interval)
	go func() {
		defer func() {
			w.mu.Lock()
			w.active = false
			w.mu.Unlock()
		}()
		for {
			select {
			case <-w.Ticker.C:
				w.SyncAll()
			case <-w.StopChan:
				w.Ticker.Stop()
				return
			}
		}
	}()
	log.Printf("Background worker started with interval: %v", interval)
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler not active")
		return
	}
	w.mu.Unlock()

	w.StopChan <- true
	log.Println("Background worker stopped")
}

func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// tryLock marks a batch as running, refusing when one already is.
func (w *Worker) tryLock() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return false
	}
	w.running = true
	return true
}

func (w *Worker) unlock() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// SyncAll is the periodic batch: refresh profiles with missing data, then
// pull fresh posts and recompute rollups for everyone.
func (w *Worker) SyncAll() {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return
	}
	defer w.unlock()

	ctx := context.Background()
	log.Println("Worker: Starting sync...")
	w.updateMissingMetrics(ctx)
	w.pullAllPosts(ctx)
	log.Println("Worker: Sync finished")
}

// SyncUser runs the full pipeline for one username, serialized with the
// batch jobs.
func (w *Worker) SyncUser(ctx context.Context, username string) error {
	if !w.tryLock() {
		log.Println("Worker: Sync already in progress, skipping...")
		return ErrBusy
	}
	defer w.unlock()
	return w.syncUsername(ctx, username)
}
