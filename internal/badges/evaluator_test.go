package badges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/models"
)

func libraryOf(entries ...models.UserAnimeEntry) []models.UserAnimeEntry {
	return entries
}

func watching(progress int) models.UserAnimeEntry {
	return models.UserAnimeEntry{Status: models.StatusWatching, Progress: progress}
}

func completed(progress int) models.UserAnimeEntry {
	return models.UserAnimeEntry{Status: models.StatusCompleted, Progress: progress}
}

func badgeIDs(earned []models.Badge) []string {
	ids := make([]string, 0, len(earned))
	for _, b := range earned {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestEvaluate_EmptyLibraryEarnsNothing(t *testing.T) {
	assert.Empty(t, Evaluate(nil, nil))
}

func TestEvaluate_BelowThresholdEarnsNothing(t *testing.T) {
	earned := Evaluate(libraryOf(watching(9)), nil)
	assert.Empty(t, earned)
}

func TestEvaluate_ExactThresholdEarnsBadge(t *testing.T) {
	earned := Evaluate(libraryOf(watching(10)), nil)
	assert.Equal(t, []string{"b1"}, badgeIDs(earned))
}

func TestEvaluate_EpisodesSumAcrossEntries(t *testing.T) {
	earned := Evaluate(libraryOf(watching(4), watching(3), watching(3)), nil)
	assert.Equal(t, []string{"b1"}, badgeIDs(earned))
}

func TestEvaluate_CompletedShowCountsBothCriteria(t *testing.T) {
	earned := Evaluate(libraryOf(completed(12)), nil)
	assert.Equal(t, []string{"b1", "b4"}, badgeIDs(earned))
}

func TestEvaluate_MultipleTiersAtOnceInCatalogOrder(t *testing.T) {
	lib := libraryOf(completed(40), completed(40), completed(30), completed(20), completed(20))
	earned := Evaluate(lib, nil)
	assert.Equal(t, []string{"b1", "b2", "b3", "b4", "b5"}, badgeIDs(earned))
}

func TestEvaluate_OwnedBadgesNeverReearned(t *testing.T) {
	owned := []models.UserBadge{{BadgeID: "b1"}, {BadgeID: "b4"}}
	earned := Evaluate(libraryOf(completed(60)), owned)
	assert.Equal(t, []string{"b2"}, badgeIDs(earned))
}

func TestEvaluate_NewsPostsCriterionNeverAwarded(t *testing.T) {
	lib := libraryOf(completed(100), completed(100), completed(100), completed(100), completed(100),
		completed(100), completed(100), completed(100), completed(100), completed(100))
	earned := Evaluate(lib, nil)
	for _, b := range earned {
		assert.NotEqual(t, models.CriteriaNewsPosts, b.Criteria.Type)
	}
}

func TestCatalog_StableIDsAndThresholds(t *testing.T) {
	require.Len(t, Catalog, 7)
	b, ok := ByID("b3")
	require.True(t, ok)
	assert.Equal(t, 100, b.Criteria.Threshold)
	assert.Equal(t, models.CriteriaEpisodesTotal, b.Criteria.Type)
}
