package models

type NotificationKind string

const (
	NotificationInfo  NotificationKind = "INFO"
	NotificationBadge NotificationKind = "BADGE"
	NotificationNudge NotificationKind = "NUDGE"
)

// AppNotification is transient and client-only. Action and ActionLabel are
// set together or not at all; acting on a notification runs the callback and
// removes it.
type AppNotification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Icon        string           `json:"icon,omitempty"`
	ActionLabel string           `json:"actionLabel,omitempty"`
	Action      func()           `json:"-"`
}

type NudgeKind string

const (
	NudgeEpisode  NudgeKind = "EPISODE"
	NudgeAdded    NudgeKind = "ADD"
	NudgeComplete NudgeKind = "COMPLETE"
)

// NudgeContext carries the title and, for episode nudges, the episode number.
type NudgeContext struct {
	Title   string
	Episode int
	AnimeID int
}
