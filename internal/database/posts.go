package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const postColumns = `id, post_id, sec_uid, username, full_name, profile_url, post_url,
	caption, views, likes, comments, shares, saves, duration, quality_score, posted_at`

func scanPost(row interface{ Scan(dest ...any) error }) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.PostID,
		&p.SecUID,
		&p.Username,
		&p.FullName,
		&p.ProfileURL,
		&p.PostURL,
		&p.Caption,
		&p.Views,
		&p.Likes,
		&p.Comments,
		&p.Shares,
		&p.Saves,
		&p.Duration,
		&p.QualityScore,
		&p.PostedAt,
	)
	return p, err
}

// LatestPostTime returns the newest stored posted_at for the given sec_uid.
// The result is invalid when no posts exist yet.
func (q *Queries) LatestPostTime(ctx context.Context, secUID string) (sql.NullTime, error) {
	var t sql.NullTime
	err := q.db.QueryRowContext(ctx,
		`SELECT MAX(posted_at) FROM posts WHERE sec_uid = $1`, secUID).Scan(&t)
	return t, err
}

type InsertPostParams struct {
	PostID       string
	SecUID       string
	Username     sql.NullString
	FullName     sql.NullString
	ProfileURL   sql.NullString
	PostURL      sql.NullString
	Caption      sql.NullString
	Views        sql.NullInt64
	Likes        sql.NullInt64
	Comments     sql.NullInt64
	Shares       sql.NullInt64
	Saves        sql.NullInt64
	Duration     sql.NullInt64
	QualityScore sql.NullString
	PostedAt     time.Time
}

// InsertPosts bulk-inserts a pulled batch in one statement. Rows already
// present (same sec_uid + post_id) are left untouched; posts are append-only.
func (q *Queries) InsertPosts(ctx context.Context, posts []InsertPostParams) (int64, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`INSERT INTO posts (
		id, post_id, sec_uid, username, full_name, profile_url, post_url,
		caption, views, likes, comments, shares, saves, duration, quality_score, posted_at
	) VALUES `)

	const cols = 16
	for i, p := range posts {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * cols
		sb.WriteByte('(')
		for j := 1; j <= cols; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteByte(')')
		args = append(args,
			uuid.New(), p.PostID, p.SecUID, p.Username, p.FullName, p.ProfileURL,
			p.PostURL, p.Caption, p.Views, p.Likes, p.Comments, p.Shares, p.Saves,
			p.Duration, p.QualityScore, p.PostedAt)
	}
	sb.WriteString(` ON CONFLICT (sec_uid, post_id) DO NOTHING`)

	res, err := q.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

type GetRecentPostsParams struct {
	SecUID string
	Limit  int32
}

func (q *Queries) GetRecentPosts(ctx context.Context, arg GetRecentPostsParams) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE sec_uid = $1 ORDER BY posted_at DESC LIMIT $2`,
		arg.SecUID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (q *Queries) ListPostsByUsername(ctx context.Context, username string) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE sec_uid IN (SELECT sec_uid FROM profiles WHERE username = $1)
		ORDER BY posted_at DESC`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
