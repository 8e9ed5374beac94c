package badges

import "anitrackr/internal/models"

// Catalog is the static achievement catalog. Order matters: Evaluate returns
// newly earned badges in catalog order.
var Catalog = []models.Badge{
	{
		ID:          "b1",
		Slug:        "ep-collector-bronze",
		Name:        "Episode Collector",
		Description: "Watched 10 total episodes.",
		Emoji:       "🥉",
		Tier:        models.TierBronze,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaEpisodesTotal, Threshold: 10},
	},
	{
		ID:          "b2",
		Slug:        "ep-collector-silver",
		Name:        "Episode Hoarder",
		Description: "Watched 50 total episodes.",
		Emoji:       "🥈",
		Tier:        models.TierSilver,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaEpisodesTotal, Threshold: 50},
	},
	{
		ID:          "b3",
		Slug:        "ep-collector-gold",
		Name:        "Episode Master",
		Description: "Watched 100 total episodes.",
		Emoji:       "🥇",
		Tier:        models.TierGold,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaEpisodesTotal, Threshold: 100},
	},
	{
		ID:          "b4",
		Slug:        "binge-beginner",
		Name:        "Binge Beginner",
		Description: "Completed your first anime.",
		Emoji:       "🍿",
		Tier:        models.TierBronze,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaCompletedShows, Threshold: 1},
	},
	{
		ID:          "b5",
		Slug:        "series-finisher",
		Name:        "Series Finisher",
		Description: "Completed 5 anime series.",
		Emoji:       "📚",
		Tier:        models.TierSilver,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaCompletedShows, Threshold: 5},
	},
	{
		ID:          "b6",
		Slug:        "otaku-legend",
		Name:        "Otaku Legend",
		Description: "Completed 10 anime series.",
		Emoji:       "👑",
		Tier:        models.TierGold,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaCompletedShows, Threshold: 10},
	},
	{
		ID:          "b7",
		Slug:        "news-contributor",
		Name:        "News Contributor",
		Description: "Posted your first news update.",
		Emoji:       "📰",
		Tier:        models.TierBronze,
		Criteria:    models.BadgeCriteria{Type: models.CriteriaNewsPosts, Threshold: 1},
	},
}

func ByID(id string) (models.Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return models.Badge{}, false
}
