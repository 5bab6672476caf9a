// Package stats aggregates recent post metrics into the average-engagement
// columns on the profile row.
package stats

import (
	"context"
	"database/sql"
	"log"
	"math"

	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/helpers"
)

// RollupWindow is how many of the most recent posts feed the averages.
const RollupWindow = 30

type Store interface {
	GetRecentPosts(ctx context.Context, arg database.GetRecentPostsParams) ([]database.Post, error)
	GetProfileByUsername(ctx context.Context, username string) (database.Profile, error)
	UpdateProfileRollupsBySecUID(ctx context.Context, secUID string, arg database.UpdateProfileRollupsParams) error
}

// CalcRollups recomputes the average engagement fields for a sec_uid from
// its most recent posts. No-op with a warning when no posts are stored.
func CalcRollups(ctx context.Context, db Store, secUID string) error {
	posts, err := db.GetRecentPosts(ctx, database.GetRecentPostsParams{SecUID: secUID, Limit: RollupWindow})
	if err != nil {
		log.Printf("Stats: fetching posts for %s failed: %v", secUID, err)
		return err
	}
	if len(posts) == 0 {
		log.Printf("Stats: no posts found for %s, skipping rollups", secUID)
		return nil
	}

	var views, likes, comments, saves, shares int64
	for _, p := range posts {
		views += p.Views.Int64
		likes += p.Likes.Int64
		comments += p.Comments.Int64
		saves += p.Saves.Int64
		shares += p.Shares.Int64
	}

	n := int64(len(posts))
	arg := database.UpdateProfileRollupsParams{
		AvgViews:    avg(views, n),
		AvgLikes:    avg(likes, n),
		AvgComments: avg(comments, n),
		AvgSaves:    avg(saves, n),
		AvgShares:   avg(shares, n),
	}
	if views > 0 {
		arg.EngagementRate = sql.NullFloat64{
			Float64: float64(likes+comments+saves+shares) / float64(views),
			Valid:   true,
		}
	}

	if err := db.UpdateProfileRollupsBySecUID(ctx, secUID, arg); err != nil {
		log.Printf("Stats: updating rollups for %s failed: %v", secUID, err)
		return err
	}

	log.Printf("Stats: updated rollups for %s from %d posts", secUID, len(posts))
	return nil
}

// CalcRollupsByUsername resolves the sec_uid through the profile row first,
// for callers that only hold the username.
func CalcRollupsByUsername(ctx context.Context, db Store, username string) error {
	profile, err := db.GetProfileByUsername(ctx, helpers.NormalizeUsername(username))
	if err != nil {
		log.Printf("Stats: profile lookup for %s failed: %v", username, err)
		return err
	}
	if !profile.SecUID.Valid || profile.SecUID.String == "" {
		log.Printf("Stats: profile %s has no sec_uid, skipping rollups", username)
		return nil
	}
	return CalcRollups(ctx, db, profile.SecUID.String)
}

func avg(sum, n int64) sql.NullInt64 {
	return sql.NullInt64{
		Int64: int64(math.Round(float64(sum) / float64(n))),
		Valid: true,
	}
}
