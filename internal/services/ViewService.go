package services

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

const viewStateKey = "view_state"

type ViewServiceInterface interface {
	View() (models.ViewState, models.ViewContext)
	SetView(view models.ViewState, vctx models.ViewContext)
	ViewAnimeDetails(animeID int)
	ViewNewsDetails(ctx context.Context, postID string)
	ViewUserProfile(ctx context.Context, userID string)
	Restore(ctx context.Context, user *models.UserProfile)
	PostLoginPrompt() bool
	ChoosePostLogin(ctx context.Context, choice models.PostLoginPreference, remember bool)
	DismissPostLoginPrompt()
	Reset()
	OnChange(fn func())
}

type persistedView struct {
	View    models.ViewState   `json:"view"`
	Context models.ViewContext `json:"context"`
}

// ViewService owns the active screen and its context, persists both to the
// durable state store, and restores them after a restart. The auth screen is
// never persisted as a restore target.
type ViewService struct {
	conf    *structures.Config
	logger  providers.Logger
	state   KVStateInterface
	news    NewsServiceInterface
	profile ProfileServiceInterface

	mu       sync.RWMutex
	view     models.ViewState
	vctx     models.ViewContext
	askLogin bool
	onChange func()
}

func NewViewService(conf *structures.Config, logger providers.Logger, state KVStateInterface, news NewsServiceInterface, profile ProfileServiceInterface) ViewServiceInterface {
	return &ViewService{
		conf:    conf,
		logger:  logger,
		state:   state,
		news:    news,
		profile: profile,
		view:    models.ViewAuth,
	}
}

func (s *ViewService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *ViewService) View() (models.ViewState, models.ViewContext) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.vctx
}

func (s *ViewService) SetView(view models.ViewState, vctx models.ViewContext) {
	s.mu.Lock()
	s.view = view
	s.vctx = vctx
	s.mu.Unlock()
	s.persist(view, vctx)
	s.notifyChanged()
}

func (s *ViewService) persist(view models.ViewState, vctx models.ViewContext) {
	if view == models.ViewAuth {
		s.state.Remove(viewStateKey)
		return
	}
	raw, err := json.Marshal(persistedView{View: view, Context: vctx})
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "view state marshal failed: %s", err)
		return
	}
	s.state.Set(viewStateKey, string(raw))
}

func (s *ViewService) ViewAnimeDetails(animeID int) {
	s.SetView(models.ViewDetails, models.ViewContext{SelectedAnimeID: animeID})
}

// ViewNewsDetails opens a post: counts the view, pulls comments and switches
// the screen.
func (s *ViewService) ViewNewsDetails(ctx context.Context, postID string) {
	s.news.OpenPost(ctx, postID)
	s.SetView(models.ViewNewsDetail, models.ViewContext{SelectedNewsID: postID})
}

// ViewUserProfile short-circuits to the own-profile screen when the target is
// the signed-in user; otherwise it loads the public profile first and only
// switches on success.
func (s *ViewService) ViewUserProfile(ctx context.Context, userID string) {
	if me := s.profile.CurrentUser(); me != nil && me.ID == userID {
		s.SetView(models.ViewProfile, models.ViewContext{})
		return
	}
	if err := s.profile.LoadPublicProfile(ctx, userID); err != nil {
		return
	}
	s.SetView(models.ViewPublicProfile, models.ViewContext{ViewedUserID: userID})
}

// Restore re-enters the persisted screen after a session bootstrap,
// rehydrating whatever that screen needs. Without a usable persisted view the
// user's post-login preference decides the landing screen.
func (s *ViewService) Restore(ctx context.Context, user *models.UserProfile) {
	if raw, ok := s.state.Get(viewStateKey); ok {
		var saved persistedView
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			s.logger.Warnf(providers.TypeStore, "persisted view unreadable, discarding: %s", err)
			s.state.Remove(viewStateKey)
		} else if saved.View != "" && saved.View != models.ViewAuth {
			switch saved.View {
			case models.ViewNewsDetail:
				if saved.Context.SelectedNewsID != "" {
					s.news.FetchComments(ctx, saved.Context.SelectedNewsID)
				}
			case models.ViewPublicProfile:
				if saved.Context.ViewedUserID != "" {
					if err := s.profile.LoadPublicProfile(ctx, saved.Context.ViewedUserID); err != nil {
						s.SetView(models.ViewHome, models.ViewContext{})
						return
					}
				}
			}
			s.SetView(saved.View, saved.Context)
			return
		}
	}

	pref := models.PostLoginAsk
	if user != nil && user.PostLoginDefault != "" {
		pref = user.PostLoginDefault
	}
	switch pref {
	case models.PostLoginDashboard:
		s.SetView(models.ViewDashboard, models.ViewContext{})
	case models.PostLoginLanding:
		s.SetView(models.ViewHome, models.ViewContext{})
	default:
		s.mu.Lock()
		s.askLogin = true
		s.mu.Unlock()
		s.SetView(models.ViewHome, models.ViewContext{})
	}
}

func (s *ViewService) PostLoginPrompt() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.askLogin
}

// ChoosePostLogin applies the user's landing choice and optionally saves it
// as the default for future logins.
func (s *ViewService) ChoosePostLogin(ctx context.Context, choice models.PostLoginPreference, remember bool) {
	s.mu.Lock()
	s.askLogin = false
	s.mu.Unlock()

	if remember {
		s.profile.UpdateProfile(ctx, models.ProfileChanges{PostLoginDefault: &choice})
	}
	if choice == models.PostLoginDashboard {
		s.SetView(models.ViewDashboard, models.ViewContext{})
	} else {
		s.SetView(models.ViewHome, models.ViewContext{})
	}
}

func (s *ViewService) DismissPostLoginPrompt() {
	s.mu.Lock()
	s.askLogin = false
	s.mu.Unlock()
	s.notifyChanged()
}

// Reset returns to the auth screen and forgets the persisted navigation
// context. Runs on logout.
func (s *ViewService) Reset() {
	s.mu.Lock()
	s.view = models.ViewAuth
	s.vctx = models.ViewContext{}
	s.askLogin = false
	s.mu.Unlock()
	s.state.Remove(viewStateKey)
	s.notifyChanged()
}

func (s *ViewService) notifyChanged() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
