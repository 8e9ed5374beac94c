package testutil

import (
	"context"
	"sync"
	"time"

	"anitrackr/internal/backend"
	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

// NewTestConfig returns a config with defaults the service tests rely on.
// Tests tweak individual fields as needed.
func NewTestConfig() *structures.Config {
	return &structures.Config{
		AppName: "AniTrackr",
		Backend: structures.BackendConfig{
			URL:         "http://backend.test",
			AnonKey:     "anon",
			AuthTimeout: 15 * time.Second,
		},
		Catalog: structures.CatalogConfig{URL: "http://catalog.test", PageSize: 10},
		Media: structures.MediaConfig{
			MaxAvatarBytes:    5 << 20,
			MaxNewsImageBytes: 8 << 20,
		},
		State: structures.StateConfig{FilePath: "/tmp/anitrackr-test.state", SaveInterval: time.Minute},
		News:  structures.NewsConfig{RefreshInterval: 5 * time.Minute},
		Nudge: structures.NudgeConfig{Throttle: 30 * time.Second, UpdateDelay: time.Millisecond},
	}
}

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MemKV is an in-memory stand-in for the durable key-value state store.
type MemKV struct {
	mu   sync.Mutex
	Data map[string]string
}

func NewMemKV() *MemKV {
	return &MemKV{Data: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MemKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MemKV) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

func (m *MemKV) Flush() error { return nil }
func (m *MemKV) Close() error { return nil }

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements state.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockAuth implements backend.Auth with injectable behavior. Emit fans a
// session event out to registered listeners like the real client does.
type MockAuth struct {
	SignInFn  func(ctx context.Context, email, password string) (*backend.Session, error)
	SignUpFn  func(ctx context.Context, email, password, username string) (*backend.Session, error)
	SignOutFn func(ctx context.Context) error
	CurrentFn func(ctx context.Context) (*backend.Session, error)

	mu        sync.Mutex
	listeners []func(*backend.Session)
}

func (m *MockAuth) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	if m.SignInFn != nil {
		return m.SignInFn(ctx, email, password)
	}
	return &backend.Session{UserID: "user-1", Email: email}, nil
}

func (m *MockAuth) SignUp(ctx context.Context, email, password, username string) (*backend.Session, error) {
	if m.SignUpFn != nil {
		return m.SignUpFn(ctx, email, password, username)
	}
	return &backend.Session{UserID: "user-1", Email: email, Username: username}, nil
}

func (m *MockAuth) SignOut(ctx context.Context) error {
	if m.SignOutFn != nil {
		return m.SignOutFn(ctx)
	}
	m.Emit(nil)
	return nil
}

func (m *MockAuth) CurrentSession(ctx context.Context) (*backend.Session, error) {
	if m.CurrentFn != nil {
		return m.CurrentFn(ctx)
	}
	return nil, backend.ErrNoSession
}

func (m *MockAuth) OnSessionChange(fn func(*backend.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *MockAuth) Emit(session *backend.Session) {
	m.mu.Lock()
	listeners := append([]func(*backend.Session){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(session)
	}
}

// MockProfiles implements backend.Profiles.
type MockProfiles struct {
	GetFn    func(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateFn func(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error)
	UpdateFn func(ctx context.Context, userID string, changes map[string]interface{}) error
	SearchFn func(ctx context.Context, query string, limit int) ([]models.UserProfile, error)

	mu          sync.Mutex
	UpdateCalls []map[string]interface{}
}

func (m *MockProfiles) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}
	return nil, backend.ErrNotFound
}

func (m *MockProfiles) Create(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, profile)
	}
	out := profile
	return &out, nil
}

func (m *MockProfiles) Update(ctx context.Context, userID string, changes map[string]interface{}) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, changes)
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, changes)
	}
	return nil
}

func (m *MockProfiles) Search(ctx context.Context, query string, limit int) ([]models.UserProfile, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return nil, nil
}

// MockLibrary implements backend.Library. The default Insert echoes the
// entry's own id back as the server id.
type MockLibrary struct {
	ListFn   func(ctx context.Context, userID string) ([]models.UserAnimeEntry, error)
	InsertFn func(ctx context.Context, userID string, entry models.UserAnimeEntry) (string, error)
	UpdateFn func(ctx context.Context, entryID string, changes map[string]interface{}) error
	DeleteFn func(ctx context.Context, entryID string) error

	mu          sync.Mutex
	InsertCalls []models.UserAnimeEntry
	UpdateCalls []map[string]interface{}
	DeleteCalls []string
}

func (m *MockLibrary) List(ctx context.Context, userID string) ([]models.UserAnimeEntry, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockLibrary) Insert(ctx context.Context, userID string, entry models.UserAnimeEntry) (string, error) {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, entry)
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, userID, entry)
	}
	return entry.ID, nil
}

func (m *MockLibrary) Update(ctx context.Context, entryID string, changes map[string]interface{}) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, changes)
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, entryID, changes)
	}
	return nil
}

func (m *MockLibrary) Delete(ctx context.Context, entryID string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, entryID)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, entryID)
	}
	return nil
}

// MockBadges implements backend.Badges.
type MockBadges struct {
	ListFn   func(ctx context.Context, userID string) ([]models.UserBadge, error)
	InsertFn func(ctx context.Context, userID string, awarded []models.UserBadge) error

	mu          sync.Mutex
	InsertCalls [][]models.UserBadge
}

func (m *MockBadges) List(ctx context.Context, userID string) ([]models.UserBadge, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockBadges) Insert(ctx context.Context, userID string, awarded []models.UserBadge) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, awarded)
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, userID, awarded)
	}
	return nil
}

// MockFavorites implements backend.Favorites.
type MockFavorites struct {
	ListFn   func(ctx context.Context, userID string) ([]models.FavoriteItem, error)
	InsertFn func(ctx context.Context, userID string, fav models.FavoriteItem) error
	DeleteFn func(ctx context.Context, userID string, animeID int) error

	mu          sync.Mutex
	InsertCalls []models.FavoriteItem
	DeleteCalls []int
}

func (m *MockFavorites) List(ctx context.Context, userID string) ([]models.FavoriteItem, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockFavorites) Insert(ctx context.Context, userID string, fav models.FavoriteItem) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, fav)
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, userID, fav)
	}
	return nil
}

func (m *MockFavorites) Delete(ctx context.Context, userID string, animeID int) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, animeID)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, animeID)
	}
	return nil
}

// MockNews implements backend.News. The default Insert echoes the post back.
type MockNews struct {
	ListFn          func(ctx context.Context) ([]models.NewsPost, error)
	InsertFn        func(ctx context.Context, post models.NewsPost) (*models.NewsPost, error)
	IncrementViewFn func(ctx context.Context, postID string) error

	mu             sync.Mutex
	IncrementCalls []string
}

func (m *MockNews) List(ctx context.Context) ([]models.NewsPost, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *MockNews) Insert(ctx context.Context, post models.NewsPost) (*models.NewsPost, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, post)
	}
	out := post
	return &out, nil
}

func (m *MockNews) IncrementView(ctx context.Context, postID string) error {
	m.mu.Lock()
	m.IncrementCalls = append(m.IncrementCalls, postID)
	m.mu.Unlock()
	if m.IncrementViewFn != nil {
		return m.IncrementViewFn(ctx, postID)
	}
	return nil
}

// MockComments implements backend.Comments.
type MockComments struct {
	ListFn   func(ctx context.Context, postID string) ([]models.NewsComment, error)
	InsertFn func(ctx context.Context, comment models.NewsComment) (*models.NewsComment, error)

	mu        sync.Mutex
	ListCalls []string
}

func (m *MockComments) ListByPost(ctx context.Context, postID string) ([]models.NewsComment, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, postID)
	m.mu.Unlock()
	if m.ListFn != nil {
		return m.ListFn(ctx, postID)
	}
	return nil, nil
}

func (m *MockComments) Insert(ctx context.Context, comment models.NewsComment) (*models.NewsComment, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, comment)
	}
	out := comment
	if out.ID == "" {
		out.ID = "comment-1"
	}
	return &out, nil
}

// MockLikes implements backend.Likes.
type MockLikes struct {
	ListFn   func(ctx context.Context, userID string) ([]string, error)
	InsertFn func(ctx context.Context, postID, userID string) error
	DeleteFn func(ctx context.Context, postID, userID string) error

	mu          sync.Mutex
	InsertCalls []string
	DeleteCalls []string
}

func (m *MockLikes) ListPostIDs(ctx context.Context, userID string) ([]string, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockLikes) Insert(ctx context.Context, postID, userID string) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, postID)
	m.mu.Unlock()
	if m.InsertFn != nil {
		return m.InsertFn(ctx, postID, userID)
	}
	return nil
}

func (m *MockLikes) Delete(ctx context.Context, postID, userID string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, postID)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, postID, userID)
	}
	return nil
}

// MockBackend bundles per-table mocks behind a backend.Client.
type MockBackend struct {
	Auth      *MockAuth
	Profiles  *MockProfiles
	Library   *MockLibrary
	Badges    *MockBadges
	Favorites *MockFavorites
	News      *MockNews
	Comments  *MockComments
	Likes     *MockLikes
}

func NewMockBackend() (*MockBackend, *backend.Client) {
	m := &MockBackend{
		Auth:      &MockAuth{},
		Profiles:  &MockProfiles{},
		Library:   &MockLibrary{},
		Badges:    &MockBadges{},
		Favorites: &MockFavorites{},
		News:      &MockNews{},
		Comments:  &MockComments{},
		Likes:     &MockLikes{},
	}
	client := &backend.Client{
		Auth:      m.Auth,
		Profiles:  m.Profiles,
		Library:   m.Library,
		Badges:    m.Badges,
		Favorites: m.Favorites,
		News:      m.News,
		Comments:  m.Comments,
		Likes:     m.Likes,
	}
	return m, client
}
