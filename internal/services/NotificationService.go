package services

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const (
	lastNudgeStateKey = "last_nudge"

	infoExpiry  = 5 * time.Second
	nudgeExpiry = 10 * time.Second
)

// KVStateInterface is the durable key-value state the services need; the
// state package's file store satisfies it.
type KVStateInterface interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

type NotificationServiceInterface interface {
	Notify(n models.AppNotification) string
	Dismiss(id string)
	Act(id string)
	Notifications() []models.AppNotification
	Nudge(kind models.NudgeKind, nctx models.NudgeContext)
	SetComposerHook(fn func(models.NewsDraft))
	OnChange(fn func())
}

// NotificationService owns the transient toast queue and the community-nudge
// throttle. Nudges of any kind share one durable throttle window so a page
// reload cannot reset it.
type NotificationService struct {
	conf    *structures.Config
	logger  providers.Logger
	state   KVStateInterface
	metrics providers.MetricsProviderInterface

	mu       sync.Mutex
	items    []models.AppNotification
	timers   map[string]*time.Timer
	composer func(models.NewsDraft)
	onChange func()
}

func NewNotificationService(conf *structures.Config, logger providers.Logger, state KVStateInterface, metrics providers.MetricsProviderInterface) NotificationServiceInterface {
	return &NotificationService{
		conf:    conf,
		logger:  logger,
		state:   state,
		metrics: metrics,
		timers:  make(map[string]*time.Timer),
	}
}

func (s *NotificationService) SetComposerHook(fn func(models.NewsDraft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = fn
}

func (s *NotificationService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *NotificationService) Notify(n models.AppNotification) string {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	expiry := infoExpiry
	if n.Kind == models.NotificationNudge {
		expiry = nudgeExpiry
	}

	s.mu.Lock()
	s.items = append(s.items, n)
	s.timers[n.ID] = time.AfterFunc(expiry, func() { s.Dismiss(n.ID) })
	s.mu.Unlock()

	s.notifyChanged()
	return n.ID
}

func (s *NotificationService) Dismiss(id string) {
	s.mu.Lock()
	removed := s.removeLocked(id)
	s.mu.Unlock()
	if removed {
		s.notifyChanged()
	}
}

// Act runs the notification's attached callback, then removes it.
func (s *NotificationService) Act(id string) {
	s.mu.Lock()
	var action func()
	for _, n := range s.items {
		if n.ID == id {
			action = n.Action
			break
		}
	}
	removed := s.removeLocked(id)
	s.mu.Unlock()

	if action != nil {
		action()
	}
	if removed {
		s.notifyChanged()
	}
}

func (s *NotificationService) removeLocked(id string) bool {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *NotificationService) Notifications() []models.AppNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AppNotification, len(s.items))
	copy(out, s.items)
	return out
}

// Nudge emits a community prompt unless any nudge fired within the throttle
// window. The timestamp lives in durable state so the window survives
// reloads.
func (s *NotificationService) Nudge(kind models.NudgeKind, nctx models.NudgeContext) {
	now := time.Now().UnixMilli()
	if raw, ok := s.state.Get(lastNudgeStateKey); ok {
		if last, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if time.Duration(now-last)*time.Millisecond < s.conf.Nudge.Throttle {
				s.metrics.IncNudgesSuppressed()
				return
			}
		}
	}
	var message, initialTitle, initialBody string
	actionLabel := "Add News"

	switch kind {
	case models.NudgeEpisode:
		message = fmt.Sprintf("Just finished Ep %d? Share a quick thought with the community!", nctx.Episode)
		initialTitle = fmt.Sprintf("My thoughts on %s Ep %d", nctx.Title, nctx.Episode)
		initialBody = fmt.Sprintf("I just watched Episode %d of %s and...", nctx.Episode, nctx.Title)
	case models.NudgeAdded:
		message = fmt.Sprintf("Added %s to your shelf! Know something interesting about it?", nctx.Title)
		initialTitle = fmt.Sprintf("Starting %s", nctx.Title)
		initialBody = fmt.Sprintf("I'm starting %s! Has anyone else seen it?", nctx.Title)
	case models.NudgeComplete:
		message = fmt.Sprintf("Finished %s! Write a short review.", nctx.Title)
		initialTitle = fmt.Sprintf("Review: %s", nctx.Title)
		initialBody = fmt.Sprintf("I just completed %s. My rating: ...", nctx.Title)
		actionLabel = "Write Review"
	default:
		return
	}

	// Only a recognized kind consumes the throttle window.
	s.state.Set(lastNudgeStateKey, strconv.FormatInt(now, 10))

	s.mu.Lock()
	composer := s.composer
	s.mu.Unlock()

	draft := models.NewsDraft{Title: initialTitle, Body: initialBody, RelatedAnimeID: nctx.AnimeID}
	s.metrics.IncNudgesEmitted(string(kind))
	s.Notify(models.AppNotification{
		Kind:        models.NotificationNudge,
		Title:       "Community needs your voice 📰",
		Message:     message,
		Icon:        "✍️",
		ActionLabel: actionLabel,
		Action: func() {
			if composer != nil {
				composer(draft)
			}
		},
	})
}

func (s *NotificationService) notifyChanged() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
