package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"

	"anitrackr/internal/backend"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

// ErrAuthTimeout is returned when the auth backend does not answer within
// the configured window. The text is shown to the user as-is.
var ErrAuthTimeout = errors.New("Request timed out. Please check your connection.")

type SessionServiceInterface interface {
	Login(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, username string) (bool, error)
	Logout(ctx context.Context) error
	HandleSessionChange(session *backend.Session)
	Bootstrap(ctx context.Context)
	IsAuthenticated() bool
	IsLoading() bool
}

// SessionService drives the auth lifecycle and fans a confirmed session out
// to the per-user stores. All population happens in HandleSessionChange so
// interactive logins and restored sessions share one code path.
type SessionService struct {
	conf          *structures.Config
	logger        providers.Logger
	backend       *backend.Client
	profile       ProfileServiceInterface
	library       LibraryServiceInterface
	news          NewsServiceInterface
	view          ViewServiceInterface
	notifications NotificationServiceInterface

	loading atomic.Bool

	mu        sync.Mutex
	currentID string
}

func NewSessionService(conf *structures.Config, logger providers.Logger, client *backend.Client, profile ProfileServiceInterface, library LibraryServiceInterface, news NewsServiceInterface, view ViewServiceInterface, notifications NotificationServiceInterface) SessionServiceInterface {
	return &SessionService{
		conf:          conf,
		logger:        logger,
		backend:       client,
		profile:       profile,
		library:       library,
		news:          news,
		view:          view,
		notifications: notifications,
	}
}

// Login authenticates against the backend under the configured timeout. The
// stores are not populated here; the session-change event takes care of that.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.conf.Backend.AuthTimeout)
	defer cancel()

	_, err := s.backend.Auth.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warnf(providers.TypeAuth, "login timed out for %s", email)
			return ErrAuthTimeout
		}
		s.logger.Warnf(providers.TypeAuth, "login failed for %s: %s", email, err)
		return err
	}
	s.logger.Infof(providers.TypeAuth, "login succeeded for %s", email)
	return nil
}

// SignUp registers a new account. It reports true when the backend wants the
// email verified before a session exists; in that case no stores are
// populated and the caller should show the verification hint.
func (s *SessionService) SignUp(ctx context.Context, email, password, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.Backend.AuthTimeout)
	defer cancel()

	session, err := s.backend.Auth.SignUp(ctx, email, password, username)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, ErrAuthTimeout
		}
		s.logger.Warnf(providers.TypeAuth, "signup failed for %s: %s", email, err)
		return false, err
	}
	if session == nil {
		s.logger.Infof(providers.TypeAuth, "signup for %s pending email verification", email)
		return true, nil
	}
	return false, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.backend.Auth.SignOut(ctx); err != nil {
		s.logger.Warnf(providers.TypeAuth, "logout failed: %s", err)
		return err
	}
	return nil
}

// HandleSessionChange is the single entry point for session transitions.
// A nil session tears every per-user store down. A session already handled
// for the same identity is ignored, so repeated events from the backend
// cannot double-populate or flicker the stores.
func (s *SessionService) HandleSessionChange(session *backend.Session) {
	if session == nil {
		s.mu.Lock()
		s.currentID = ""
		s.mu.Unlock()
		s.library.Clear()
		s.news.ClearUserState()
		s.profile.ClearUser()
		s.view.Reset()
		s.logger.Infof(providers.TypeAuth, "session cleared")
		return
	}

	s.mu.Lock()
	if s.currentID == session.UserID {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if !s.loading.CompareAndSwap(false, true) {
		return
	}
	defer s.loading.Store(false)

	s.mu.Lock()
	s.currentID = session.UserID
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Infof(providers.TypeAuth, "initializing session for %s", session.UserID)

	user := s.profile.Resolve(ctx, session)
	s.library.Load(ctx, session.UserID)
	s.news.LoadLikes(ctx, session.UserID)
	s.view.Restore(ctx, user)
}

// Bootstrap restores a persisted session on startup, when one exists and
// still validates.
func (s *SessionService) Bootstrap(ctx context.Context) {
	session, err := s.backend.Auth.CurrentSession(ctx)
	if err != nil {
		if !errors.Is(err, backend.ErrNoSession) {
			s.logger.Warnf(providers.TypeAuth, "session restore failed: %s", err)
		}
		return
	}
	s.HandleSessionChange(session)
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID != ""
}

func (s *SessionService) IsLoading() bool {
	return s.loading.Load()
}
