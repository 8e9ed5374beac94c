package models

// MediaTitle carries both romaji and english titles; english may be empty.
type MediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

func (t MediaTitle) Preferred() string {
	if t.English != "" {
		return t.English
	}
	return t.Romaji
}

type CoverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

type AiringEpisode struct {
	Episode  int   `json:"episode"`
	AiringAt int64 `json:"airingAt"`
}

type StreamingEpisode struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

type ExternalLink struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

// AnimeMetadata is the denormalized catalog record. It is cached inline on
// every tracked entry so the UI never refetches the catalog for titles the
// user already tracks.
type AnimeMetadata struct {
	ID                int                `json:"id"`
	Title             MediaTitle         `json:"title"`
	CoverImage        CoverImage         `json:"coverImage"`
	BannerImage       string             `json:"bannerImage,omitempty"`
	Episodes          int                `json:"episodes"` // 0 when unknown (e.g. still releasing)
	Duration          int                `json:"duration"`
	Status            string             `json:"status"`
	Format            string             `json:"format"`
	Genres            []string           `json:"genres"`
	AverageScore      int                `json:"averageScore"`
	SeasonYear        int                `json:"seasonYear"`
	Studio            string             `json:"studio"`
	Description       string             `json:"description"`
	NextAiringEpisode *AiringEpisode     `json:"nextAiringEpisode,omitempty"`
	StreamingEpisodes []StreamingEpisode `json:"streamingEpisodes,omitempty"`
	ExternalLinks     []ExternalLink     `json:"externalLinks,omitempty"`
}

type FavoriteItem struct {
	AnimeID    int    `json:"animeId"`
	Title      string `json:"title"`
	CoverImage string `json:"coverImage"`
	Format     string `json:"format"`
}
