// Package puller fetches paginated posts for a resolved profile and
// appends them to the posts table, gated on the age of the newest stored
// post to bound call volume against the external API.
package puller

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/fetcher"
	"github.com/fluffyriot/ttsync/internal/helpers"
)

// FreshnessWindow is how recent the newest stored post may be before a
// pull is skipped entirely.
const FreshnessWindow = 24 * time.Hour

type Store interface {
	LatestPostTime(ctx context.Context, secUID string) (sql.NullTime, error)
	InsertPosts(ctx context.Context, posts []database.InsertPostParams) (int64, error)
}

type Fetcher interface {
	UserPosts(ctx context.Context, secUID string) ([]fetcher.PostItem, error)
}

// Pull fetches every available post for secUID and bulk-inserts the batch
// in one call. A single insert error aborts the whole batch; nothing is
// retried here. Returns the number of stored rows.
func Pull(ctx context.Context, db Store, f Fetcher, secUID string) (int64, error) {
	latest, err := db.LatestPostTime(ctx, secUID)
	if err != nil {
		log.Printf("Puller: failed to read latest post time for %s: %v", secUID, err)
		return 0, err
	}

	if latest.Valid {
		if age := time.Since(latest.Time); age < FreshnessWindow {
			log.Printf("Puller: last post for %s is %.0fh old, skipping pull", secUID, age.Hours())
			return 0, nil
		}
	} else {
		log.Printf("Puller: no posts stored for %s yet, pulling all", secUID)
	}

	items, err := f.UserPosts(ctx, secUID)
	if err != nil {
		log.Printf("Puller: fetching posts for %s failed: %v", secUID, err)
		return 0, err
	}
	if len(items) == 0 {
		log.Printf("Puller: no posts returned for %s", secUID)
		return 0, nil
	}

	rows := make([]database.InsertPostParams, 0, len(items))
	for _, item := range items {
		rows = append(rows, mapItem(secUID, item))
	}

	n, err := db.InsertPosts(ctx, rows)
	if err != nil {
		log.Printf("Puller: inserting posts for %s failed: %v", secUID, err)
		return 0, err
	}

	log.Printf("Puller: stored %d posts for %s", n, secUID)
	return n, nil
}

func mapItem(secUID string, item fetcher.PostItem) database.InsertPostParams {
	return database.InsertPostParams{
		PostID:       item.ID,
		SecUID:       secUID,
		Username:     nullString(item.Author.UniqueID),
		FullName:     nullString(item.Author.Nickname),
		ProfileURL:   nullString(helpers.ProfileURL(item.Author.UniqueID)),
		PostURL:      nullString(helpers.PostURL(item.Author.UniqueID, item.ID)),
		Caption:      nullString(item.Desc),
		Views:        sql.NullInt64{Int64: item.Stats.PlayCount, Valid: true},
		Likes:        sql.NullInt64{Int64: item.Stats.DiggCount, Valid: true},
		Comments:     sql.NullInt64{Int64: item.Stats.CommentCount, Valid: true},
		Shares:       sql.NullInt64{Int64: item.Stats.ShareCount, Valid: true},
		Saves:        sql.NullInt64{Int64: item.Stats.SaveCount, Valid: true},
		Duration:     sql.NullInt64{Int64: item.Video.Duration, Valid: item.Video.Duration > 0},
		QualityScore: nullString(item.VQScore),
		PostedAt:     time.Unix(item.CreateTime, 0),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
