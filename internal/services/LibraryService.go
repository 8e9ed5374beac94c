package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"anitrackr/internal/backend"
	"anitrackr/internal/badges"
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const libraryStore = "library"

type LibraryServiceInterface interface {
	Load(ctx context.Context, userID string)
	Entries() []models.UserAnimeEntry
	Get(entryID string) (models.UserAnimeEntry, bool)
	GetByAnime(animeID int) (models.UserAnimeEntry, bool)
	Add(ctx context.Context, entry models.UserAnimeEntry)
	Update(ctx context.Context, entryID string, changes models.EntryChanges)
	Delete(ctx context.Context, entryID string)
	Clear()
	OnChange(fn func())
}

// LibraryService owns the signed-in user's tracked entries. Every mutation is
// optimistic: local state changes first, the remote write follows, and a
// failed write restores the exact pre-mutation snapshot.
type LibraryService struct {
	optimisticDeps

	conf    *structures.Config
	backend *backend.Client
	profile ProfileServiceInterface

	mu       sync.RWMutex
	entries  []models.UserAnimeEntry
	onChange func()
}

func NewLibraryService(conf *structures.Config, logger providers.Logger, client *backend.Client, notifications NotificationServiceInterface, profile ProfileServiceInterface, metrics providers.MetricsProviderInterface) LibraryServiceInterface {
	return &LibraryService{
		optimisticDeps: optimisticDeps{logger: logger, metrics: metrics, notifications: notifications},
		conf:           conf,
		backend:        client,
		profile:        profile,
	}
}

func (s *LibraryService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load replaces the store with the remote library. A failed fetch degrades to
// an empty library rather than blocking the session.
func (s *LibraryService) Load(ctx context.Context, userID string) {
	entries, err := s.backend.Library.List(ctx, userID)
	if err != nil {
		s.logger.Errorf(providers.TypeRemote, "library fetch failed for %s: %s", userID, err)
		entries = []models.UserAnimeEntry{}
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *LibraryService) Entries() []models.UserAnimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserAnimeEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *LibraryService) Get(entryID string) (models.UserAnimeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == entryID {
			return e, true
		}
	}
	return models.UserAnimeEntry{}, false
}

func (s *LibraryService) GetByAnime(animeID int) (models.UserAnimeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.AnimeID == animeID {
			return e, true
		}
	}
	return models.UserAnimeEntry{}, false
}

// Add inserts a new entry under a temporary id, then swaps in the server id
// once the insert confirms. Duplicates by anime id produce a single
// notification and no mutation. Badge evaluation and the ADD nudge run only
// after the remote insert succeeds.
func (s *LibraryService) Add(ctx context.Context, entry models.UserAnimeEntry) {
	user := s.profile.CurrentUser()
	if user == nil {
		return
	}

	if _, exists := s.GetByAnime(entry.AnimeID); exists {
		s.notifications.Notify(models.AppNotification{
			Kind:    models.NotificationInfo,
			Title:   "Duplicate Entry",
			Message: "Already in your library.",
			Icon:    "⚠️",
		})
		return
	}

	entry = models.Normalize(entry)
	tempID := uuid.NewString()
	entry.ID = tempID
	entry.UpdatedAt = time.Now().UnixMilli()

	ok := s.run(mutation{
		store:       libraryStore,
		failTitle:   "Add Failed",
		failMessage: "Could not save the entry. Please try again.",
		apply: func() {
			s.mu.Lock()
			s.entries = append([]models.UserAnimeEntry{entry}, s.entries...)
			s.mu.Unlock()
			s.notifyChanged()
		},
		attempt: func() error {
			serverID, err := s.backend.Library.Insert(ctx, user.ID, entry)
			if err != nil {
				return err
			}
			s.mu.Lock()
			for i := range s.entries {
				if s.entries[i].ID == tempID {
					s.entries[i].ID = serverID
					break
				}
			}
			s.mu.Unlock()
			s.notifyChanged()
			return nil
		},
		revert: func() {
			s.removeByID(tempID)
		},
	})
	if !ok {
		return
	}

	s.checkBadges(ctx)
	s.notifications.Nudge(models.NudgeAdded, models.NudgeContext{
		Title:   entry.Metadata.Title.Preferred(),
		AnimeID: entry.AnimeID,
	})
}

// Update merges a partial edit, normalizes status against progress, and
// detects the derived nudge events. When both an episode increment and a
// completion happen in one edit, the completion nudge wins. The nudge fires
// only after the remote write succeeds, slightly delayed so the updated
// state is visible first.
func (s *LibraryService) Update(ctx context.Context, entryID string, changes models.EntryChanges) {
	s.mu.Lock()
	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	snapshot := s.entries[idx]
	updated := models.Normalize(changes.Apply(snapshot))
	updated.UpdatedAt = time.Now().UnixMilli()
	s.mu.Unlock()

	var nudgeKind models.NudgeKind
	if updated.Progress > snapshot.Progress {
		nudgeKind = models.NudgeEpisode
	}
	if updated.Status == models.StatusCompleted && snapshot.Status != models.StatusCompleted {
		nudgeKind = models.NudgeComplete
	}

	ok := s.run(mutation{
		store:       libraryStore,
		failTitle:   "Update Failed",
		failMessage: "Could not save your changes. Reverted.",
		apply: func() {
			s.replaceByID(entryID, updated)
		},
		attempt: func() error {
			return s.backend.Library.Update(ctx, entryID, map[string]interface{}{
				"status":     string(updated.Status),
				"progress":   updated.Progress,
				"score":      updated.Score,
				"notes":      updated.Notes,
				"updated_at": updated.UpdatedAt,
			})
		},
		revert: func() {
			s.replaceByID(entryID, snapshot)
		},
	})
	if !ok {
		return
	}

	s.checkBadges(ctx)
	if nudgeKind != "" {
		nctx := models.NudgeContext{
			Title:   updated.Metadata.Title.Preferred(),
			AnimeID: updated.AnimeID,
		}
		if nudgeKind == models.NudgeEpisode {
			nctx.Episode = updated.Progress
		}
		time.AfterFunc(s.conf.Nudge.UpdateDelay, func() {
			s.notifications.Nudge(nudgeKind, nctx)
		})
	}
}

// Delete removes the entry and, once the remote delete confirms, offers an
// undo that re-inserts the exact removed object.
func (s *LibraryService) Delete(ctx context.Context, entryID string) {
	s.mu.Lock()
	idx := -1
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.entries[idx]
	s.mu.Unlock()

	ok := s.run(mutation{
		store:       libraryStore,
		failTitle:   "Delete Failed",
		failMessage: "Could not remove the entry. Restored.",
		apply: func() {
			s.removeByID(entryID)
		},
		attempt: func() error {
			return s.backend.Library.Delete(ctx, entryID)
		},
		revert: func() {
			s.insertAt(idx, removed)
		},
	})
	if !ok {
		return
	}

	s.notifications.Notify(models.AppNotification{
		Kind:        models.NotificationInfo,
		Title:       "Entry Removed",
		Message:     removed.Metadata.Title.Preferred() + " was removed from your library.",
		Icon:        "🗑️",
		ActionLabel: "Undo",
		Action: func() {
			s.undoDelete(context.Background(), idx, removed)
		},
	})
}

// undoDelete restores the removed entry in place and re-inserts it remotely.
// The server assigns a fresh row id which replaces the restored one on
// success.
func (s *LibraryService) undoDelete(ctx context.Context, idx int, removed models.UserAnimeEntry) {
	user := s.profile.CurrentUser()
	if user == nil {
		return
	}
	oldID := removed.ID
	s.run(mutation{
		store:       libraryStore,
		failTitle:   "Undo Failed",
		failMessage: "Could not restore the entry.",
		apply: func() {
			s.insertAt(idx, removed)
		},
		attempt: func() error {
			serverID, err := s.backend.Library.Insert(ctx, user.ID, removed)
			if err != nil {
				return err
			}
			s.mu.Lock()
			for i := range s.entries {
				if s.entries[i].ID == oldID {
					s.entries[i].ID = serverID
					break
				}
			}
			s.mu.Unlock()
			s.notifyChanged()
			return nil
		},
		revert: func() {
			s.removeByID(oldID)
		},
	})
}

func (s *LibraryService) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	s.notifyChanged()
}

// checkBadges evaluates the catalog against the current library and routes
// any newly earned badges through the profile store.
func (s *LibraryService) checkBadges(ctx context.Context) {
	user := s.profile.CurrentUser()
	if user == nil {
		return
	}
	earned := badges.Evaluate(s.Entries(), user.Badges)
	if len(earned) > 0 {
		s.profile.AwardBadges(ctx, earned)
	}
}

func (s *LibraryService) removeByID(entryID string) {
	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *LibraryService) replaceByID(entryID string, entry models.UserAnimeEntry) {
	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries[i] = entry
			break
		}
	}
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *LibraryService) insertAt(idx int, entry models.UserAnimeEntry) {
	s.mu.Lock()
	if idx < 0 || idx > len(s.entries) {
		idx = len(s.entries)
	}
	s.entries = append(s.entries, models.UserAnimeEntry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = entry
	s.mu.Unlock()
	s.notifyChanged()
}

func (s *LibraryService) notifyChanged() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
