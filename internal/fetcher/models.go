package fetcher

type userCheckResponse struct {
	UserInfo struct {
		User struct {
			ID           string `json:"id"`
			SecUID       string `json:"secUid"`
			UniqueID     string `json:"uniqueId"`
			Nickname     string `json:"nickname"`
			Signature    string `json:"signature"`
			TTSeller     bool   `json:"ttSeller"`
			AvatarLarger string `json:"avatarLarger"`
		} `json:"user"`

		Stats struct {
			FollowerCount  int64 `json:"followerCount"`
			FollowingCount int64 `json:"followingCount"`
			HeartCount     int64 `json:"heartCount"`
		} `json:"stats"`
	} `json:"userInfo"`
}

type postFeed struct {
	ItemList []PostItem `json:"itemList"`
	Cursor   string     `json:"cursor"`
	HasMore  bool       `json:"hasMore"`
}

// PostItem is one entry of the paginated posts feed, trimmed to the fields
// the puller stores.
type PostItem struct {
	ID         string `json:"id"`
	Desc       string `json:"desc"`
	CreateTime int64  `json:"createTime"`
	VQScore    string `json:"vq_score"`

	Author struct {
		UniqueID string `json:"uniqueId"`
		Nickname string `json:"nickname"`
	} `json:"author"`

	Stats struct {
		PlayCount    int64 `json:"playCount"`
		DiggCount    int64 `json:"diggCount"`
		CommentCount int64 `json:"commentCount"`
		ShareCount   int64 `json:"shareCount"`
		SaveCount    int64 `json:"saveCount"`
	} `json:"stats"`

	Video struct {
		Duration int64 `json:"duration"`
	} `json:"video"`
}
