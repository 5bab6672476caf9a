package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/fluffyriot/ttsync/internal/helpers"
)

// Outcome classifies a resolution so batch callers can decide between
// dropping an item, keeping it for a later run, or proceeding.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not-found"
	default:
		return "transient"
	}
}

type Metrics struct {
	FullName     string
	Followers    int64
	Following    int64
	AccountLikes int64
	Seller       *bool
	ProfileURL   string
	AvatarURL    string
	Bio          string
}

// Resolved is the result of a username lookup. SecUID is empty unless
// Outcome is OutcomeOK; callers must check before trusting any field.
type Resolved struct {
	Outcome Outcome
	SecUID  string
	Email   string
	Metrics Metrics
}

// ResolveProfile looks up a username on the external API. It never returns
// an error: failures are logged and folded into the outcome.
func (c *Client) ResolveProfile(ctx context.Context, username string) Resolved {
	query := url.Values{}
	query.Set("username", username)

	body, err := c.get(ctx, "/public/check", query)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusNotFound || se.code == http.StatusBadRequest) {
			log.Printf("Fetcher: no profile found for %q (status %d)", username, se.code)
			return Resolved{Outcome: OutcomeNotFound}
		}
		log.Printf("Fetcher: lookup for %q failed: %v", username, err)
		return Resolved{Outcome: OutcomeTransient}
	}

	var resp userCheckResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Printf("Fetcher: malformed lookup payload for %q: %v", username, err)
		return Resolved{Outcome: OutcomeTransient}
	}

	user := resp.UserInfo.User
	if user.SecUID == "" {
		log.Printf("Fetcher: lookup for %q returned no secUid", username)
		return Resolved{Outcome: OutcomeNotFound}
	}

	seller := user.TTSeller
	return Resolved{
		Outcome: OutcomeOK,
		SecUID:  user.SecUID,
		Email:   helpers.ExtractEmail(user.Signature),
		Metrics: Metrics{
			FullName:     user.Nickname,
			Followers:    resp.UserInfo.Stats.FollowerCount,
			Following:    resp.UserInfo.Stats.FollowingCount,
			AccountLikes: resp.UserInfo.Stats.HeartCount,
			Seller:       &seller,
			ProfileURL:   helpers.ProfileURL(user.UniqueID),
			AvatarURL:    user.AvatarLarger,
			Bio:          user.Signature,
		},
	}
}
