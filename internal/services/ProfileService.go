package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"anitrackr/internal/backend"
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const placeholderAvatar = "https://api.dicebear.com/7.x/adventurer/svg?seed=%s"

type ProfileServiceInterface interface {
	Resolve(ctx context.Context, session *backend.Session) *models.UserProfile
	CurrentUser() *models.UserProfile
	ClearUser()
	UpdateProfile(ctx context.Context, changes models.ProfileChanges)
	ToggleFavorite(ctx context.Context, meta models.AnimeMetadata)
	IsFavorite(animeID int) bool
	AwardBadges(ctx context.Context, earned []models.Badge)
	MarkBadgesSeen()
	LoadPublicProfile(ctx context.Context, userID string) error
	ViewedProfile() (*models.UserProfile, []models.UserAnimeEntry)
	SearchUsers(ctx context.Context, query string) ([]models.UserProfile, error)
	OnChange(fn func())
}

// ProfileService owns the signed-in user's profile plus the profile being
// viewed on the public-profile screen. Profile writes are write-through
// without rollback; the local copy stays authoritative for the session.
type ProfileService struct {
	conf          *structures.Config
	logger        providers.Logger
	backend       *backend.Client
	notifications NotificationServiceInterface
	metrics       providers.MetricsProviderInterface

	mu            sync.RWMutex
	user          *models.UserProfile
	viewedProfile *models.UserProfile
	viewedLibrary []models.UserAnimeEntry
	onChange      func()
}

func NewProfileService(conf *structures.Config, logger providers.Logger, client *backend.Client, notifications NotificationServiceInterface, metrics providers.MetricsProviderInterface) ProfileServiceInterface {
	return &ProfileService{
		conf:          conf,
		logger:        logger,
		backend:       client,
		notifications: notifications,
		metrics:       metrics,
	}
}

func (s *ProfileService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Resolve turns a session into a full profile. A missing row is created with
// defaults; when creation loses a race with a database trigger the row is
// re-fetched; when even that fails a synthesized profile keeps the session
// usable, so resolution always yields a profile. Favorites and badges
// enrichment degrades to empty on error.
func (s *ProfileService) Resolve(ctx context.Context, session *backend.Session) *models.UserProfile {
	profile, err := s.backend.Profiles.Get(ctx, session.UserID)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		s.logger.Errorf(providers.TypeRemote, "profile fetch failed for %s: %s", session.UserID, err)
	}

	if profile == nil {
		fresh := defaultProfile(session)
		profile, err = s.backend.Profiles.Create(ctx, fresh)
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "profile create failed for %s, retrying fetch: %s", session.UserID, err)
			time.Sleep(300 * time.Millisecond)
			profile, err = s.backend.Profiles.Get(ctx, session.UserID)
			if err != nil || profile == nil {
				s.logger.Warnf(providers.TypeRemote, "profile still missing for %s, synthesizing", session.UserID)
				synthesized := fresh
				profile = &synthesized
			}
		}
	}

	if favs, err := s.backend.Favorites.List(ctx, session.UserID); err == nil {
		profile.Favorites = favs
	} else {
		s.logger.Warnf(providers.TypeRemote, "favorites fetch failed for %s: %s", session.UserID, err)
		profile.Favorites = []models.FavoriteItem{}
	}
	if owned, err := s.backend.Badges.List(ctx, session.UserID); err == nil {
		profile.Badges = owned
	} else {
		s.logger.Warnf(providers.TypeRemote, "badges fetch failed for %s: %s", session.UserID, err)
		profile.Badges = []models.UserBadge{}
	}

	s.mu.Lock()
	s.user = profile
	s.mu.Unlock()
	s.notifyChanged()

	out := *profile
	return &out
}

func defaultProfile(session *backend.Session) models.UserProfile {
	username := session.Username
	if username == "" {
		if at := strings.Index(session.Email, "@"); at > 0 {
			username = session.Email[:at]
		} else {
			username = "Otaku"
		}
	}
	avatar := session.AvatarURL
	if avatar == "" {
		avatar = fmt.Sprintf(placeholderAvatar, session.UserID)
	}
	return models.UserProfile{
		ID:               session.UserID,
		Username:         username,
		AvatarURL:        avatar,
		Bio:              "Just joined AniTrackr!",
		FavoriteGenres:   []string{},
		PostLoginDefault: models.PostLoginAsk,
		Badges:           []models.UserBadge{},
		Favorites:        []models.FavoriteItem{},
		JoinedAt:         time.Now().UnixMilli(),
	}
}

func (s *ProfileService) CurrentUser() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	out := *s.user
	return &out
}

func (s *ProfileService) ClearUser() {
	s.mu.Lock()
	s.user = nil
	s.viewedProfile = nil
	s.viewedLibrary = nil
	s.mu.Unlock()
	s.notifyChanged()
}

// UpdateProfile applies the edit locally and writes it through. A failed
// write is logged but not rolled back; the next session resolve reconciles.
func (s *ProfileService) UpdateProfile(ctx context.Context, changes models.ProfileChanges) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	updated := changes.Apply(*s.user)
	s.user = &updated
	userID := updated.ID
	s.mu.Unlock()
	s.notifyChanged()

	if err := s.backend.Profiles.Update(ctx, userID, profileChangeMap(changes)); err != nil {
		s.logger.Errorf(providers.TypeRemote, "profile update failed for %s: %s", userID, err)
	}
}

func profileChangeMap(c models.ProfileChanges) map[string]interface{} {
	out := map[string]interface{}{}
	if c.Username != nil {
		out["username"] = *c.Username
	}
	if c.AvatarURL != nil {
		out["avatar_url"] = *c.AvatarURL
	}
	if c.BannerURL != nil {
		out["banner_url"] = *c.BannerURL
	}
	if c.Bio != nil {
		out["bio"] = *c.Bio
	}
	if c.IsPrivate != nil {
		out["is_private"] = *c.IsPrivate
	}
	if c.ShowAdultContent != nil {
		out["show_adult_content"] = *c.ShowAdultContent
	}
	if c.PostLoginDefault != nil {
		out["post_login_default"] = string(*c.PostLoginDefault)
	}
	return out
}

func (s *ProfileService) IsFavorite(animeID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	for _, f := range s.user.Favorites {
		if f.AnimeID == animeID {
			return true
		}
	}
	return false
}

// ToggleFavorite flips the favorite locally and writes it through without
// rollback.
func (s *ProfileService) ToggleFavorite(ctx context.Context, meta models.AnimeMetadata) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	userID := s.user.ID
	removing := false
	for i, f := range s.user.Favorites {
		if f.AnimeID == meta.ID {
			s.user.Favorites = append(s.user.Favorites[:i], s.user.Favorites[i+1:]...)
			removing = true
			break
		}
	}
	fav := models.FavoriteItem{
		AnimeID:    meta.ID,
		Title:      meta.Title.Preferred(),
		CoverImage: meta.CoverImage.Large,
		Format:     meta.Format,
	}
	if !removing {
		s.user.Favorites = append(s.user.Favorites, fav)
	}
	s.mu.Unlock()
	s.notifyChanged()

	var err error
	if removing {
		err = s.backend.Favorites.Delete(ctx, userID, meta.ID)
	} else {
		err = s.backend.Favorites.Insert(ctx, userID, fav)
	}
	if err != nil {
		s.logger.Errorf(providers.TypeRemote, "favorite toggle failed for anime %d: %s", meta.ID, err)
	}
}

// AwardBadges persists newly earned badges and surfaces one notification per
// badge. Already owned badges are skipped even if the evaluator re-reports
// them.
func (s *ProfileService) AwardBadges(ctx context.Context, earned []models.Badge) {
	if len(earned) == 0 {
		return
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	userID := s.user.ID
	owned := make(map[string]struct{}, len(s.user.Badges))
	for _, b := range s.user.Badges {
		owned[b.BadgeID] = struct{}{}
	}
	now := time.Now().UnixMilli()
	var fresh []models.UserBadge
	var granted []models.Badge
	for _, b := range earned {
		if _, ok := owned[b.ID]; ok {
			continue
		}
		fresh = append(fresh, models.UserBadge{BadgeID: b.ID, AwardedAt: now, IsNew: true})
		granted = append(granted, b)
	}
	s.user.Badges = append(s.user.Badges, fresh...)
	s.mu.Unlock()

	if len(fresh) == 0 {
		return
	}
	s.notifyChanged()

	if err := s.backend.Badges.Insert(ctx, userID, fresh); err != nil {
		s.logger.Errorf(providers.TypeRemote, "badge persist failed for %s: %s", userID, err)
	}
	for _, b := range granted {
		s.metrics.IncBadgesAwarded()
		s.notifications.Notify(models.AppNotification{
			Kind:    models.NotificationBadge,
			Title:   "Badge Unlocked!",
			Message: fmt.Sprintf("%s %s", b.Emoji, b.Name),
			Icon:    b.Emoji,
		})
	}
}

// MarkBadgesSeen clears the transient new-badge highlight.
func (s *ProfileService) MarkBadgesSeen() {
	s.mu.Lock()
	if s.user != nil {
		for i := range s.user.Badges {
			s.user.Badges[i].IsNew = false
		}
	}
	s.mu.Unlock()
	s.notifyChanged()
}

// LoadPublicProfile fetches another user's profile and public library for the
// public-profile screen. A missing user surfaces a notification and an error;
// a library the viewer may not read degrades to empty.
func (s *ProfileService) LoadPublicProfile(ctx context.Context, userID string) error {
	profile, err := s.backend.Profiles.Get(ctx, userID)
	if err != nil || profile == nil {
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "public profile fetch failed for %s: %s", userID, err)
		}
		s.notifications.Notify(models.AppNotification{
			Kind:    models.NotificationInfo,
			Title:   "Profile Unavailable",
			Message: "User not found.",
			Icon:    "❌",
		})
		if err == nil {
			err = backend.ErrNotFound
		}
		return err
	}

	if favs, ferr := s.backend.Favorites.List(ctx, userID); ferr == nil {
		profile.Favorites = favs
	} else {
		profile.Favorites = []models.FavoriteItem{}
	}
	if owned, berr := s.backend.Badges.List(ctx, userID); berr == nil {
		profile.Badges = owned
	} else {
		profile.Badges = []models.UserBadge{}
	}

	library, lerr := s.backend.Library.List(ctx, userID)
	if lerr != nil {
		s.logger.Warnf(providers.TypeRemote, "public library fetch failed for %s: %s", userID, lerr)
		library = []models.UserAnimeEntry{}
	}

	s.mu.Lock()
	s.viewedProfile = profile
	s.viewedLibrary = library
	s.mu.Unlock()
	s.notifyChanged()
	return nil
}

func (s *ProfileService) ViewedProfile() (*models.UserProfile, []models.UserAnimeEntry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.viewedProfile == nil {
		return nil, nil
	}
	profile := *s.viewedProfile
	library := make([]models.UserAnimeEntry, len(s.viewedLibrary))
	copy(library, s.viewedLibrary)
	return &profile, library
}

// SearchUsers returns public profiles matching the query. Private profiles
// are filtered out even when the backend returns them.
func (s *ProfileService) SearchUsers(ctx context.Context, query string) ([]models.UserProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	found, err := s.backend.Profiles.Search(ctx, query, 20)
	if err != nil {
		s.logger.Warnf(providers.TypeRemote, "user search failed: %s", err)
		return nil, err
	}
	public := found[:0]
	for _, p := range found {
		if !p.IsPrivate {
			public = append(public, p)
		}
	}
	return public, nil
}

func (s *ProfileService) notifyChanged() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
