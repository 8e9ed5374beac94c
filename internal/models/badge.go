package models

type BadgeTier string

const (
	TierBronze BadgeTier = "BRONZE"
	TierSilver BadgeTier = "SILVER"
	TierGold   BadgeTier = "GOLD"
)

type CriteriaType string

const (
	CriteriaEpisodesTotal  CriteriaType = "EPISODES_TOTAL"
	CriteriaCompletedShows CriteriaType = "COMPLETED_SHOWS"
	CriteriaNewsPosts      CriteriaType = "NEWS_POSTS"
)

type BadgeCriteria struct {
	Type      CriteriaType `json:"type"`
	Threshold int          `json:"threshold"`
}

// Badge is a static achievement definition from the built-in catalog.
type Badge struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Emoji       string        `json:"emoji"`
	Tier        BadgeTier     `json:"tier"`
	Criteria    BadgeCriteria `json:"criteria"`
}
