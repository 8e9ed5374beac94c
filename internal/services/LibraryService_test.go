package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/backend"
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/testutil"
)

type libraryFixture struct {
	lib           LibraryServiceInterface
	backend       *testutil.MockBackend
	notifications NotificationServiceInterface
	profile       ProfileServiceInterface
}

func setupLibrary(t *testing.T) *libraryFixture {
	t.Helper()
	conf := testutil.NewTestConfig()
	logger := &testutil.MockLogger{}
	kv := testutil.NewMemKV()
	metrics := providers.NewMetricsProvider(conf)
	mb, client := testutil.NewMockBackend()

	mb.Profiles.GetFn = func(_ context.Context, userID string) (*models.UserProfile, error) {
		return &models.UserProfile{ID: userID, Username: "kai"}, nil
	}

	notifications := NewNotificationService(conf, logger, kv, metrics)
	profile := NewProfileService(conf, logger, client, notifications, metrics)
	profile.Resolve(context.Background(), &backend.Session{UserID: "user-1", Email: "kai@example.com"})

	lib := NewLibraryService(conf, logger, client, notifications, profile, metrics)
	return &libraryFixture{lib: lib, backend: mb, notifications: notifications, profile: profile}
}

func findNotification(items []models.AppNotification, title string) (models.AppNotification, bool) {
	for _, n := range items {
		if n.Title == title {
			return n, true
		}
	}
	return models.AppNotification{}, false
}

func frierenEntry() models.UserAnimeEntry {
	return models.UserAnimeEntry{
		AnimeID:  154587,
		Status:   models.StatusWatching,
		Progress: 0,
		Metadata: models.AnimeMetadata{
			ID:       154587,
			Title:    models.MediaTitle{Romaji: "Sousou no Frieren", English: "Frieren"},
			Episodes: 28,
		},
	}
}

func TestLibraryService_AddSwapsTempIDForServerID(t *testing.T) {
	f := setupLibrary(t)
	f.backend.Library.InsertFn = func(_ context.Context, _ string, _ models.UserAnimeEntry) (string, error) {
		return "srv-1", nil
	}

	f.lib.Add(context.Background(), frierenEntry())

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "srv-1", entries[0].ID)
	assert.Equal(t, 154587, entries[0].AnimeID)
}

func TestLibraryService_AddEmitsAddNudge(t *testing.T) {
	f := setupLibrary(t)
	f.lib.Add(context.Background(), frierenEntry())

	n, ok := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
	require.True(t, ok)
	assert.Contains(t, n.Message, "Added Frieren to your shelf")
}

func TestLibraryService_AddDuplicateSingleNotificationNoMutation(t *testing.T) {
	f := setupLibrary(t)
	f.lib.Add(context.Background(), frierenEntry())
	before := f.lib.Entries()

	f.lib.Add(context.Background(), frierenEntry())

	assert.Equal(t, before, f.lib.Entries())
	dupes := 0
	for _, n := range f.notifications.Notifications() {
		if n.Title == "Duplicate Entry" {
			dupes++
		}
	}
	assert.Equal(t, 1, dupes)
	assert.Len(t, f.backend.Library.InsertCalls, 1)
}

func TestLibraryService_AddFailureLeavesExactPreCallState(t *testing.T) {
	f := setupLibrary(t)
	f.backend.Library.InsertFn = func(_ context.Context, _ string, _ models.UserAnimeEntry) (string, error) {
		return "", errors.New("insert denied")
	}

	f.lib.Add(context.Background(), frierenEntry())

	assert.Empty(t, f.lib.Entries())
	_, ok := findNotification(f.notifications.Notifications(), "Add Failed")
	assert.True(t, ok)
	// The badge and nudge pipeline must not have run.
	_, nudged := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
	assert.False(t, nudged)
	assert.Empty(t, f.profile.CurrentUser().Badges)
}

func TestLibraryService_AddCompletedShowAwardsBadges(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.Status = models.StatusCompleted
	e.Progress = 28

	f.lib.Add(context.Background(), e)

	user := f.profile.CurrentUser()
	require.NotNil(t, user)
	ids := make([]string, 0, len(user.Badges))
	for _, b := range user.Badges {
		ids = append(ids, b.BadgeID)
	}
	assert.Contains(t, ids, "b1")
	assert.Contains(t, ids, "b4")
	require.Len(t, f.backend.Badges.InsertCalls, 1)
}

func seedLibrary(t *testing.T, f *libraryFixture, entries ...models.UserAnimeEntry) {
	t.Helper()
	f.backend.Library.ListFn = func(_ context.Context, _ string) ([]models.UserAnimeEntry, error) {
		return entries, nil
	}
	f.lib.Load(context.Background(), "user-1")
	require.Len(t, f.lib.Entries(), len(entries))
}

func TestLibraryService_UpdateFailureRollsBackDeepEqual(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Progress = 5
	e.Notes = "mid-season"
	seedLibrary(t, f, e)

	f.backend.Library.UpdateFn = func(_ context.Context, _ string, _ map[string]interface{}) error {
		return errors.New("update denied")
	}
	progress := 6
	f.lib.Update(context.Background(), "srv-1", models.EntryChanges{Progress: &progress})

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
	_, ok := findNotification(f.notifications.Notifications(), "Update Failed")
	assert.True(t, ok)
}

func TestLibraryService_UpdateToFinalEpisodePromotesAndNudgesComplete(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Progress = 27
	seedLibrary(t, f, e)

	progress := 28
	f.lib.Update(context.Background(), "srv-1", models.EntryChanges{Progress: &progress})

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusCompleted, entries[0].Status)

	require.Eventually(t, func() bool {
		n, ok := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
		return ok && n.ActionLabel == "Write Review"
	}, time.Second, 5*time.Millisecond)
	n, _ := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
	assert.Contains(t, n.Message, "Finished Frieren")
	assert.NotContains(t, n.Message, "Ep ")
}

func TestLibraryService_UpdateProgressNudgesEpisode(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Progress = 5
	seedLibrary(t, f, e)

	progress := 6
	f.lib.Update(context.Background(), "srv-1", models.EntryChanges{Progress: &progress})

	require.Eventually(t, func() bool {
		_, ok := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
		return ok
	}, time.Second, 5*time.Millisecond)
	n, _ := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
	assert.Contains(t, n.Message, "Ep 6")
}

func TestLibraryService_UpdateStaleCompletedDemotes(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Status = models.StatusCompleted
	e.Progress = 28
	seedLibrary(t, f, e)

	progress := 10
	f.lib.Update(context.Background(), "srv-1", models.EntryChanges{Progress: &progress})

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusWatching, entries[0].Status)
	// Progress went down, so no nudge of any kind.
	time.Sleep(20 * time.Millisecond)
	_, nudged := findNotification(f.notifications.Notifications(), "Community needs your voice 📰")
	assert.False(t, nudged)
}

func TestLibraryService_UpdatePersistsNormalizedFields(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Progress = 27
	seedLibrary(t, f, e)

	progress := 28
	f.lib.Update(context.Background(), "srv-1", models.EntryChanges{Progress: &progress})

	require.Len(t, f.backend.Library.UpdateCalls, 1)
	changes := f.backend.Library.UpdateCalls[0]
	assert.Equal(t, "COMPLETED", changes["status"])
	assert.Equal(t, 28, changes["progress"])
}

func TestLibraryService_DeleteOffersUndoRestoringExactEntry(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	e.Progress = 5
	e.Notes = "keep these notes"
	seedLibrary(t, f, e)

	f.lib.Delete(context.Background(), "srv-1")
	assert.Empty(t, f.lib.Entries())
	assert.Equal(t, []string{"srv-1"}, f.backend.Library.DeleteCalls)

	n, ok := findNotification(f.notifications.Notifications(), "Entry Removed")
	require.True(t, ok)
	require.Equal(t, "Undo", n.ActionLabel)

	f.notifications.Act(n.ID)

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
}

func TestLibraryService_DeleteFailureRestoresEntry(t *testing.T) {
	f := setupLibrary(t)
	e := frierenEntry()
	e.ID = "srv-1"
	seedLibrary(t, f, e)

	f.backend.Library.DeleteFn = func(_ context.Context, _ string) error {
		return errors.New("delete denied")
	}
	f.lib.Delete(context.Background(), "srv-1")

	entries := f.lib.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
	_, ok := findNotification(f.notifications.Notifications(), "Delete Failed")
	assert.True(t, ok)
}

func TestLibraryService_LoadFailureDegradesToEmpty(t *testing.T) {
	f := setupLibrary(t)
	f.backend.Library.ListFn = func(_ context.Context, _ string) ([]models.UserAnimeEntry, error) {
		return nil, errors.New("network down")
	}
	f.lib.Load(context.Background(), "user-1")
	assert.Empty(t, f.lib.Entries())
}

func TestLibraryService_ClearDropsEntries(t *testing.T) {
	f := setupLibrary(t)
	seedLibrary(t, f, frierenEntry())
	f.lib.Clear()
	assert.Empty(t, f.lib.Entries())
}
