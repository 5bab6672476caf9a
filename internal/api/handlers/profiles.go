package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/fluffyriot/ttsync/internal/database"
	"github.com/fluffyriot/ttsync/internal/helpers"
	"github.com/gin-gonic/gin"
)

type profileResponse struct {
	Username       string   `json:"username"`
	SecUID         *string  `json:"sec_uid"`
	FullName       *string  `json:"full_name"`
	Followers      *int64   `json:"followers"`
	Following      *int64   `json:"following"`
	AccountLikes   *int64   `json:"account_likes"`
	Seller         *bool    `json:"seller"`
	ProfileURL     *string  `json:"profile_url"`
	Email          *string  `json:"email"`
	AvatarURL      *string  `json:"avatar_url"`
	AvgViews       *int64   `json:"avg_views"`
	AvgLikes       *int64   `json:"avg_likes"`
	AvgComments    *int64   `json:"avg_comments"`
	AvgSaves       *int64   `json:"avg_saves"`
	AvgShares      *int64   `json:"avg_shares"`
	EngagementRate *float64 `json:"engagement_rate"`
	UpdatedAt      string   `json:"updated_at"`
}

type postResponse struct {
	PostID       string  `json:"post_id"`
	PostURL      *string `json:"post_url"`
	Caption      *string `json:"caption"`
	Views        *int64  `json:"views"`
	Likes        *int64  `json:"likes"`
	Comments     *int64  `json:"comments"`
	Shares       *int64  `json:"shares"`
	Saves        *int64  `json:"saves"`
	Duration     *int64  `json:"duration"`
	QualityScore *string `json:"quality_score"`
	PostedAt     string  `json:"posted_at"`
}

func (h *Handler) ListProfilesHandler(c *gin.Context) {
	profiles, err := h.DB.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to list profiles"})
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

// GetProfileHandler looks up by normalized username first and falls back to
// treating the key as a sec_uid, so a profile resolves under either address.
func (h *Handler) GetProfileHandler(c *gin.Context) {
	key := c.Param("username")

	p, err := h.DB.GetProfileByUsername(c.Request.Context(), helpers.NormalizeUsername(key))
	if errors.Is(err, sql.ErrNoRows) {
		p, err = h.DB.GetProfileBySecUID(c.Request.Context(), key)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p))
}

func (h *Handler) GetProfilePostsHandler(c *gin.Context) {
	username := helpers.NormalizeUsername(c.Param("username"))

	posts, err := h.DB.ListPostsByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to load posts"})
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse{
			PostID:       p.PostID,
			PostURL:      nullStr(p.PostURL),
			Caption:      nullStr(p.Caption),
			Views:        nullInt(p.Views),
			Likes:        nullInt(p.Likes),
			Comments:     nullInt(p.Comments),
			Shares:       nullInt(p.Shares),
			Saves:        nullInt(p.Saves),
			Duration:     nullInt(p.Duration),
			QualityScore: nullStr(p.QualityScore),
			PostedAt:     p.PostedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "posts": out})
}

func toProfileResponse(p database.Profile) profileResponse {
	return profileResponse{
		Username:       p.Username,
		SecUID:         nullStr(p.SecUID),
		FullName:       nullStr(p.FullName),
		Followers:      nullInt(p.Followers),
		Following:      nullInt(p.Following),
		AccountLikes:   nullInt(p.AccountLikes),
		Seller:         nullBool(p.Seller),
		ProfileURL:     nullStr(p.ProfileURL),
		Email:          nullStr(p.Email),
		AvatarURL:      nullStr(p.AvatarURL),
		AvgViews:       nullInt(p.AvgViews),
		AvgLikes:       nullInt(p.AvgLikes),
		AvgComments:    nullInt(p.AvgComments),
		AvgSaves:       nullInt(p.AvgSaves),
		AvgShares:      nullInt(p.AvgShares),
		EngagementRate: nullFloat(p.EngagementRate),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
