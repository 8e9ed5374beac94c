package badges

import "anitrackr/internal/models"

// Evaluate returns catalog badges newly earned by the given library, in
// catalog order. Badges already owned are never returned; the caller persists
// the result and guards against concurrent award attempts.
//
// Only the episode-total and completed-shows aggregates are computed. The
// NEWS_POSTS criterion exists in the catalog but has no evaluator wiring, so
// badges carrying it are never awarded here.
func Evaluate(library []models.UserAnimeEntry, owned []models.UserBadge) []models.Badge {
	ownedIDs := make(map[string]struct{}, len(owned))
	for _, b := range owned {
		ownedIDs[b.BadgeID] = struct{}{}
	}

	totalEpisodes := 0
	totalCompleted := 0
	for _, e := range library {
		totalEpisodes += e.Progress
		if e.Status == models.StatusCompleted {
			totalCompleted++
		}
	}

	var earned []models.Badge
	for _, badge := range Catalog {
		if _, ok := ownedIDs[badge.ID]; ok {
			continue
		}
		switch badge.Criteria.Type {
		case models.CriteriaEpisodesTotal:
			if totalEpisodes >= badge.Criteria.Threshold {
				earned = append(earned, badge)
			}
		case models.CriteriaCompletedShows:
			if totalCompleted >= badge.Criteria.Threshold {
				earned = append(earned, badge)
			}
		}
	}
	return earned
}
