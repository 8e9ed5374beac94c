package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/testutil"
)

func newNotifications(t *testing.T) (*NotificationService, *testutil.MemKV) {
	t.Helper()
	kv := testutil.NewMemKV()
	svc := NewNotificationService(testutil.NewTestConfig(), &testutil.MockLogger{}, kv, providers.NewMetricsProvider(testutil.NewTestConfig()))
	return svc.(*NotificationService), kv
}

func TestNotificationService_NotifyAndDismiss(t *testing.T) {
	svc, _ := newNotifications(t)

	id := svc.Notify(models.AppNotification{Kind: models.NotificationInfo, Title: "Hello"})
	require.NotEmpty(t, id)
	require.Len(t, svc.Notifications(), 1)

	svc.Dismiss(id)
	assert.Empty(t, svc.Notifications())
}

func TestNotificationService_ActRunsCallbackAndRemoves(t *testing.T) {
	svc, _ := newNotifications(t)

	ran := false
	id := svc.Notify(models.AppNotification{
		Kind:        models.NotificationInfo,
		Title:       "With action",
		ActionLabel: "Do it",
		Action:      func() { ran = true },
	})

	svc.Act(id)
	assert.True(t, ran)
	assert.Empty(t, svc.Notifications())
}

func TestNotificationService_ActUnknownIDIsNoop(t *testing.T) {
	svc, _ := newNotifications(t)
	svc.Act("nope")
	assert.Empty(t, svc.Notifications())
}

func TestNotificationService_NudgeEmitsOnceWithinThrottle(t *testing.T) {
	svc, _ := newNotifications(t)

	svc.Nudge(models.NudgeEpisode, models.NudgeContext{Title: "Frieren", Episode: 3})
	svc.Nudge(models.NudgeAdded, models.NudgeContext{Title: "Mushishi"})

	items := svc.Notifications()
	require.Len(t, items, 1)
	assert.Equal(t, models.NotificationNudge, items[0].Kind)
	assert.Contains(t, items[0].Message, "Ep 3")
}

func TestNotificationService_NudgeFiresAgainAfterWindow(t *testing.T) {
	svc, kv := newNotifications(t)

	past := time.Now().Add(-time.Minute).UnixMilli()
	kv.Set("last_nudge", strconv.FormatInt(past, 10))

	svc.Nudge(models.NudgeAdded, models.NudgeContext{Title: "Mushishi"})
	assert.Len(t, svc.Notifications(), 1)
}

func TestNotificationService_UnknownNudgeKindKeepsWindowOpen(t *testing.T) {
	svc, kv := newNotifications(t)

	svc.Nudge(models.NudgeKind("FANART"), models.NudgeContext{Title: "Mushishi"})
	assert.Empty(t, svc.Notifications())
	_, stamped := kv.Get("last_nudge")
	assert.False(t, stamped)

	// A valid nudge right after still fires.
	svc.Nudge(models.NudgeAdded, models.NudgeContext{Title: "Mushishi"})
	assert.Len(t, svc.Notifications(), 1)
}

func TestNotificationService_ThrottleSurvivesRestart(t *testing.T) {
	svc, kv := newNotifications(t)
	svc.Nudge(models.NudgeAdded, models.NudgeContext{Title: "Mushishi"})

	// A fresh service over the same durable state is still throttled.
	fresh := NewNotificationService(testutil.NewTestConfig(), &testutil.MockLogger{}, kv, providers.NewMetricsProvider(testutil.NewTestConfig()))
	fresh.Nudge(models.NudgeComplete, models.NudgeContext{Title: "Akira"})
	assert.Empty(t, fresh.Notifications())
}

func TestNotificationService_NudgeCopyPerKind(t *testing.T) {
	svc, kv := newNotifications(t)

	svc.Nudge(models.NudgeComplete, models.NudgeContext{Title: "Akira"})
	items := svc.Notifications()
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "Finished Akira")
	assert.Equal(t, "Write Review", items[0].ActionLabel)

	svc.Dismiss(items[0].ID)
	kv.Remove("last_nudge")

	svc.Nudge(models.NudgeAdded, models.NudgeContext{Title: "Mushishi"})
	items = svc.Notifications()
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "Added Mushishi to your shelf")
	assert.Equal(t, "Add News", items[0].ActionLabel)
}

func TestNotificationService_NudgeActionOpensComposerWithDraft(t *testing.T) {
	svc, _ := newNotifications(t)

	var draft models.NewsDraft
	svc.SetComposerHook(func(d models.NewsDraft) { draft = d })

	svc.Nudge(models.NudgeEpisode, models.NudgeContext{Title: "Frieren", Episode: 7, AnimeID: 154587})
	items := svc.Notifications()
	require.Len(t, items, 1)

	svc.Act(items[0].ID)
	assert.Equal(t, "My thoughts on Frieren Ep 7", draft.Title)
	assert.Equal(t, 154587, draft.RelatedAnimeID)
}

func TestNotificationService_ExpiryRemovesNotification(t *testing.T) {
	svc, _ := newNotifications(t)
	svc.Notify(models.AppNotification{Kind: models.NotificationInfo, Title: "transient"})

	// Force-expire through Dismiss rather than waiting out the timer.
	items := svc.Notifications()
	require.Len(t, items, 1)
	svc.Dismiss(items[0].ID)
	assert.Empty(t, svc.Notifications())
}
