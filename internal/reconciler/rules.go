package reconciler

import (
	"database/sql"
	"strings"

	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/helpers"
)

// isSentinel treats NULL, empty and the literal placeholder strings written
// by earlier upstream bugs as "no value".
func isSentinel(v sql.NullString) bool {
	if !v.Valid {
		return true
	}
	s := strings.TrimSpace(v.String)
	return s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined")
}

func nullOrEmpty(v sql.NullString) bool {
	return !v.Valid || v.String == ""
}

// zeroIsMissing: a stored zero count is indistinguishable from unset and is
// refetched on every run. Accepted tradeoff, not a bug.
func zeroIsMissing(v sql.NullInt64) bool {
	return !v.Valid || v.Int64 == 0
}

type fieldRule struct {
	name     string
	missing  func(p *database.Profile) bool
	supplied func(c *Candidate) bool
	stage    func(c *Candidate, u *database.UpsertProfileParams)
}

// rules is the ordered reconciliation table. A candidate value is staged
// only when the stored value is missing by that field's own definition:
//   - sec_uid, profile_url: missing includes placeholder sentinels; a valid
//     stored value is never refreshed
//   - numeric metrics: zero counts as missing
//   - seller: only NULL is missing; a stored false is respected
//   - email: an existing non-empty email is never overwritten, and the bio
//     is tried as a fallback source
var rules = []fieldRule{
	{
		name:     "sec_uid",
		missing:  func(p *database.Profile) bool { return isSentinel(p.SecUID) },
		supplied: func(c *Candidate) bool { return c.SecUID != "" },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.SecUID = sql.NullString{String: c.SecUID, Valid: true}
		},
	},
	{
		name:     "profile_url",
		missing:  func(p *database.Profile) bool { return isSentinel(p.ProfileURL) },
		supplied: func(c *Candidate) bool { return c.ProfileURL != "" },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.ProfileURL = sql.NullString{String: c.ProfileURL, Valid: true}
		},
	},
	{
		name:     "full_name",
		missing:  func(p *database.Profile) bool { return nullOrEmpty(p.FullName) },
		supplied: func(c *Candidate) bool { return c.FullName != "" },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.FullName = sql.NullString{String: c.FullName, Valid: true}
		},
	},
	{
		name:     "followers",
		missing:  func(p *database.Profile) bool { return zeroIsMissing(p.Followers) },
		supplied: func(c *Candidate) bool { return c.Followers > 0 },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.Followers = sql.NullInt64{Int64: c.Followers, Valid: true}
		},
	},
	{
		name:     "following",
		missing:  func(p *database.Profile) bool { return zeroIsMissing(p.Following) },
		supplied: func(c *Candidate) bool { return c.Following > 0 },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.Following = sql.NullInt64{Int64: c.Following, Valid: true}
		},
	},
	{
		name:     "account_likes",
		missing:  func(p *database.Profile) bool { return zeroIsMissing(p.AccountLikes) },
		supplied: func(c *Candidate) bool { return c.AccountLikes > 0 },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.AccountLikes = sql.NullInt64{Int64: c.AccountLikes, Valid: true}
		},
	},
	{
		name:     "seller",
		missing:  func(p *database.Profile) bool { return !p.Seller.Valid },
		supplied: func(c *Candidate) bool { return c.Seller != nil },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.Seller = sql.NullBool{Bool: *c.Seller, Valid: true}
		},
	},
	{
		name:     "email",
		missing:  func(p *database.Profile) bool { return nullOrEmpty(p.Email) },
		supplied: func(c *Candidate) bool { return c.email() != "" },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.Email = sql.NullString{String: c.email(), Valid: true}
		},
	},
	{
		name:     "avatar_url",
		missing:  func(p *database.Profile) bool { return nullOrEmpty(p.AvatarURL) },
		supplied: func(c *Candidate) bool { return c.AvatarURL != "" },
		stage: func(c *Candidate, u *database.UpsertProfileParams) {
			u.AvatarURL = sql.NullString{String: c.AvatarURL, Valid: true}
		},
	},
}

// email returns the candidate's direct email, falling back to whatever can
// be pulled out of the bio text.
func (c *Candidate) email() string {
	if c.Email != "" {
		return c.Email
	}
	return helpers.ExtractEmail(c.Bio)
}
