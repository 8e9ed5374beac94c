package models

type AnimeStatus string

const (
	StatusWatching    AnimeStatus = "WATCHING"
	StatusCompleted   AnimeStatus = "COMPLETED"
	StatusPlanToWatch AnimeStatus = "PLAN_TO_WATCH"
	StatusDropped     AnimeStatus = "DROPPED"
)

// UserAnimeEntry is one tracked title for one user. The id is a local uuid
// until the remote insert confirms, then it is swapped for the server id.
type UserAnimeEntry struct {
	ID        string        `json:"id"`
	AnimeID   int           `json:"animeId"`
	Metadata  AnimeMetadata `json:"metadata"`
	Status    AnimeStatus   `json:"status"`
	Progress  int           `json:"progress"`
	Score     float64       `json:"score"`
	Notes     string        `json:"notes"`
	UpdatedAt int64         `json:"updatedAt"`
}

// Normalize reconciles status, progress and score after a mutation.
// The rule order is fixed: a stale COMPLETED can be demoted by rule 3 and
// immediately re-promoted by rule 5 when progress really reached the episode
// count, so repeated application converges. DROPPED is never auto-changed.
func Normalize(e UserAnimeEntry) UserAnimeEntry {
	eps := e.Metadata.Episodes
	if eps > 0 && e.Progress > eps {
		e.Progress = eps
	}
	if e.Progress < 0 {
		e.Progress = 0
	}
	if e.Score > 10 {
		e.Score = 10
	}
	if e.Score < 0 {
		e.Score = 0
	}
	if e.Status == StatusCompleted && eps > 0 && e.Progress < eps {
		e.Status = StatusWatching
	}
	if e.Status == StatusPlanToWatch && e.Progress > 0 {
		e.Status = StatusWatching
	}
	if e.Status == StatusWatching && eps > 0 && e.Progress >= eps {
		e.Status = StatusCompleted
	}
	return e
}

// EntryChanges is a partial update; nil fields are left untouched.
type EntryChanges struct {
	Status   *AnimeStatus
	Progress *int
	Score    *float64
	Notes    *string
}

// Apply merges the changes into a copy of the entry without normalizing.
func (c EntryChanges) Apply(e UserAnimeEntry) UserAnimeEntry {
	if c.Status != nil {
		e.Status = *c.Status
	}
	if c.Progress != nil {
		e.Progress = *c.Progress
	}
	if c.Score != nil {
		e.Score = *c.Score
	}
	if c.Notes != nil {
		e.Notes = *c.Notes
	}
	return e
}
