package exports

import (
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/fluffyriot/ttsync/internal/database"
)

// WriteProfilesCSV streams every profile as one CSV row. Unset nullable
// columns come out as empty cells so the file round-trips into a spreadsheet
// without fake zeroes.
func WriteProfilesCSV(w io.Writer, profiles []database.Profile) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"username",
		"sec_uid",
		"full_name",
		"followers",
		"following",
		"account_likes",
		"seller",
		"profile_url",
		"email",
		"avatar_url",
		"avg_views",
		"avg_likes",
		"avg_comments",
		"avg_saves",
		"avg_shares",
		"engagement_rate",
		"updated_at",
	}); err != nil {
		return err
	}

	for _, p := range profiles {
		seller := ""
		if p.Seller.Valid {
			seller = strconv.FormatBool(p.Seller.Bool)
		}

		rate := ""
		if p.EngagementRate.Valid {
			rate = strconv.FormatFloat(p.EngagementRate.Float64, 'f', -1, 64)
		}

		record := []string{
			p.Username,
			strCell(p.SecUID),
			strCell(p.FullName),
			intCell(p.Followers),
			intCell(p.Following),
			intCell(p.AccountLikes),
			seller,
			strCell(p.ProfileURL),
			strCell(p.Email),
			strCell(p.AvatarURL),
			intCell(p.AvgViews),
			intCell(p.AvgLikes),
			intCell(p.AvgComments),
			intCell(p.AvgSaves),
			intCell(p.AvgShares),
			rate,
			p.UpdatedAt.Format(time.RFC3339),
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// WritePostsCSV streams the given posts as CSV, newest ordering left to the
// caller's query.
func WritePostsCSV(w io.Writer, posts []database.Post) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"post_id",
		"sec_uid",
		"post_url",
		"caption",
		"views",
		"likes",
		"comments",
		"shares",
		"saves",
		"duration",
		"quality_score",
		"posted_at",
	}); err != nil {
		return err
	}

	for _, p := range posts {
		record := []string{
			p.PostID,
			p.SecUID,
			strCell(p.PostURL),
			strCell(p.Caption),
			intCell(p.Views),
			intCell(p.Likes),
			intCell(p.Comments),
			intCell(p.Shares),
			intCell(p.Saves),
			intCell(p.Duration),
			strCell(p.QualityScore),
			p.PostedAt.Format(time.RFC3339),
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func strCell(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func intCell(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
