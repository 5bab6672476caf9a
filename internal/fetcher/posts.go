package fetcher

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

const (
	postsPageSize = 30
	maxPostPages  = 50
)

// UserPosts pages through the posts feed for a sec_uid, following the
// cursor until the source reports no more pages. Duplicate items across
// pages are dropped.
func (c *Client) UserPosts(ctx context.Context, secUID string) ([]PostItem, error) {
	var (
		items  []PostItem
		seen   = make(map[string]struct{})
		cursor = "0"
	)

	for page := 0; page < maxPostPages; page++ {
		query := url.Values{}
		query.Set("secUid", secUID)
		query.Set("count", strconv.Itoa(postsPageSize))
		query.Set("cursor", cursor)

		body, err := c.get(ctx, "/public/posts", query)
		if err != nil {
			return nil, err
		}

		var feed postFeed
		if err := json.Unmarshal(body, &feed); err != nil {
			return nil, err
		}

		for _, item := range feed.ItemList {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}

		if !feed.HasMore || len(feed.ItemList) == 0 {
			break
		}
		cursor = feed.Cursor
	}

	return items, nil
}
