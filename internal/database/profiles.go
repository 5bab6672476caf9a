package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const profileColumns = `id, username, sec_uid, full_name, followers, following, account_likes,
	seller, profile_url, email, avatar_url, avg_views, avg_likes, avg_comments,
	avg_saves, avg_shares, engagement_rate, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.SecUID,
		&p.FullName,
		&p.Followers,
		&p.Following,
		&p.AccountLikes,
		&p.Seller,
		&p.ProfileURL,
		&p.Email,
		&p.AvatarURL,
		&p.AvgViews,
		&p.AvgLikes,
		&p.AvgComments,
		&p.AvgSaves,
		&p.AvgShares,
		&p.EngagementRate,
		&p.UpdatedAt,
	)
	return p, err
}

func (q *Queries) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = $1`, username)
	return scanProfile(row)
}

func (q *Queries) GetProfileBySecUID(ctx context.Context, secUID string) (Profile, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE sec_uid = $1`, secUID)
	return scanProfile(row)
}

type UpsertProfileParams struct {
	ID           uuid.UUID
	Username     string
	SecUID       sql.NullString
	FullName     sql.NullString
	Followers    sql.NullInt64
	Following    sql.NullInt64
	AccountLikes sql.NullInt64
	Seller       sql.NullBool
	ProfileURL   sql.NullString
	Email        sql.NullString
	AvatarURL    sql.NullString
	UpdatedAt    time.Time
}

// UpsertProfile inserts or updates a profile in a single statement keyed on
// the normalized username. Rollup columns are untouched; they are written
// only by UpdateProfileRollups.
func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO profiles (
			id, username, sec_uid, full_name, followers, following, account_likes,
			seller, profile_url, email, avatar_url, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (username) DO UPDATE SET
			sec_uid = EXCLUDED.sec_uid,
			full_name = EXCLUDED.full_name,
			followers = EXCLUDED.followers,
			following = EXCLUDED.following,
			account_likes = EXCLUDED.account_likes,
			seller = EXCLUDED.seller,
			profile_url = EXCLUDED.profile_url,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		arg.ID,
		arg.Username,
		arg.SecUID,
		arg.FullName,
		arg.Followers,
		arg.Following,
		arg.AccountLikes,
		arg.Seller,
		arg.ProfileURL,
		arg.Email,
		arg.AvatarURL,
		arg.UpdatedAt,
	)
	return scanProfile(row)
}

func (q *Queries) listProfiles(ctx context.Context, query string, args ...any) ([]Profile, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (q *Queries) ListProfiles(ctx context.Context) ([]Profile, error) {
	return q.listProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY username`)
}

func (q *Queries) ListProfilesMissingSecUID(ctx context.Context) ([]Profile, error) {
	return q.listProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE sec_uid IS NULL OR sec_uid = '' ORDER BY username`)
}

func (q *Queries) ListProfilesWithSecUID(ctx context.Context) ([]Profile, error) {
	return q.listProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE sec_uid IS NOT NULL AND sec_uid <> '' ORDER BY username`)
}

// ListProfilesMissingMetrics returns profiles where any of the always-wanted
// fields is still unset. Zero counts as unset, matching the reconciler.
func (q *Queries) ListProfilesMissingMetrics(ctx context.Context) ([]Profile, error) {
	return q.listProfiles(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE followers IS NULL OR followers = 0
			OR following IS NULL OR following = 0
			OR account_likes IS NULL OR account_likes = 0
			OR profile_url IS NULL OR profile_url = ''
			OR email IS NULL OR email = ''
		ORDER BY username`)
}

func (q *Queries) ListProfilesMissingAvatar(ctx context.Context) ([]Profile, error) {
	return q.listProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE avatar_url IS NULL OR avatar_url = '' ORDER BY username`)
}

func (q *Queries) DeleteProfileByUsername(ctx context.Context, username string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM profiles WHERE username = $1`, username)
	return err
}

type UpdateProfileRollupsParams struct {
	AvgViews       sql.NullInt64
	AvgLikes       sql.NullInt64
	AvgComments    sql.NullInt64
	AvgSaves       sql.NullInt64
	AvgShares      sql.NullInt64
	EngagementRate sql.NullFloat64
}

func (q *Queries) UpdateProfileRollupsBySecUID(ctx context.Context, secUID string, arg UpdateProfileRollupsParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE profiles SET
			avg_views = $2, avg_likes = $3, avg_comments = $4,
			avg_saves = $5, avg_shares = $6, engagement_rate = $7
		WHERE sec_uid = $1`,
		secUID, arg.AvgViews, arg.AvgLikes, arg.AvgComments, arg.AvgSaves, arg.AvgShares, arg.EngagementRate)
	return err
}
