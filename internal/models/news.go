package models

type NewsPost struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	AuthorName     string `json:"authorName"`
	AuthorAvatar   string `json:"authorAvatar,omitempty"` // empty when anonymous
	IsAnonymous    bool   `json:"isAnonymous"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	ImageURL       string `json:"imageUrl,omitempty"`
	SourceName     string `json:"sourceName,omitempty"`
	SourceURL      string `json:"sourceUrl,omitempty"`
	RelatedAnimeID int    `json:"relatedAnimeId,omitempty"`
	LikesCount     int    `json:"likesCount"`
	CommentsCount  int    `json:"commentsCount"`
	ViewCount      int    `json:"viewCount"`
	CreatedAt      int64  `json:"createdAt"`
}

// NewsComment snapshots the author's username and avatar at posting time so
// later profile edits do not rewrite comment history.
type NewsComment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

// NewsDraft prefills the news composer, e.g. from a nudge action.
type NewsDraft struct {
	Title          string
	Body           string
	RelatedAnimeID int
}
