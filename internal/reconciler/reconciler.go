// Package reconciler merges freshly resolved external data into persisted
// profiles. The policy is fill-missing-only: values a person or an earlier
// run already put on the row are kept.
package reconciler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/helpers"
	"github.com/google/uuid"
)

// Candidate carries resolved external data keyed by username. Zero numeric
// values and empty strings mean "not supplied"; Seller uses a pointer so a
// real false survives.
type Candidate struct {
	Username     string
	SecUID       string
	FullName     string
	Followers    int64
	Following    int64
	AccountLikes int64
	Seller       *bool
	ProfileURL   string
	Email        string
	AvatarURL    string
	Bio          string
}

type Store interface {
	GetProfileByUsername(ctx context.Context, username string) (database.Profile, error)
	UpsertProfile(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error)
}

type Result struct {
	Username string
	Created  bool
	Skipped  bool
	Staged   []string
}

// Reconcile applies the rule table against the stored row and performs a
// single upsert when anything was staged. Re-running with identical input
// is a no-op: nothing staged, no write, no timestamp bump.
func Reconcile(ctx context.Context, store Store, cand Candidate) (Result, error) {
	username := helpers.NormalizeUsername(cand.Username)
	if username == "" {
		log.Println("Reconciler: no username provided for upsert")
		return Result{Skipped: true}, nil
	}

	existing, err := store.GetProfileByUsername(ctx, username)
	isNew := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("Reconciler: lookup for %s failed: %v", username, err)
			return Result{}, err
		}
		isNew = true
	}

	params := paramsFromProfile(existing)
	params.Username = username
	if isNew {
		params.ID = uuid.New()
	}

	var staged []string
	for _, r := range rules {
		if !isNew && !r.missing(&existing) {
			continue
		}
		if !r.supplied(&cand) {
			continue
		}
		r.stage(&cand, &params)
		staged = append(staged, r.name)
	}

	if len(staged) == 0 && !isNew {
		log.Printf("Reconciler: nothing to update for %s", username)
		return Result{Username: username, Skipped: true}, nil
	}

	params.UpdatedAt = time.Now()
	if _, err := store.UpsertProfile(ctx, params); err != nil {
		log.Printf("Reconciler: upsert for %s failed: %v", username, err)
		return Result{}, err
	}

	if isNew {
		log.Printf("Reconciler: created profile %s", username)
	} else {
		log.Printf("Reconciler: updated %s (fields: %v)", username, staged)
	}
	return Result{Username: username, Created: isNew, Staged: staged}, nil
}

// paramsFromProfile seeds the upsert with the stored values so untouched
// columns are rewritten unchanged by the single statement.
func paramsFromProfile(p database.Profile) database.UpsertProfileParams {
	return database.UpsertProfileParams{
		ID:           p.ID,
		Username:     p.Username,
		SecUID:       p.SecUID,
		FullName:     p.FullName,
		Followers:    p.Followers,
		Following:    p.Following,
		AccountLikes: p.AccountLikes,
		Seller:       p.Seller,
		ProfileURL:   p.ProfileURL,
		Email:        p.Email,
		AvatarURL:    p.AvatarURL,
	}
}
