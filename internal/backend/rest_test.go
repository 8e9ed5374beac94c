package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anitrackr/internal/models"
	"anitrackr/internal/providers"
	"anitrackr/internal/structures"
)

// noopLogger avoids importing testutil, which depends on this package.
type noopLogger struct{}

func (noopLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (noopLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (noopLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (noopLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (noopLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (noopLogger) Close()                                                  {}

func entryFixture() models.UserAnimeEntry {
	return models.UserAnimeEntry{AnimeID: 1, Status: models.StatusWatching}
}

type memTokens struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemTokens() *memTokens { return &memTokens{data: make(map[string]string)} }

func (m *memTokens) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memTokens) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *memTokens) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func restClient(t *testing.T, handler http.Handler) (*Client, *memTokens, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	conf := &structures.Config{
		Backend: structures.BackendConfig{URL: srv.URL, AnonKey: "anon-key"},
	}
	tokens := newMemTokens()
	client := NewRestClient(conf, noopLogger{}, tokens)
	return client, tokens, srv
}

func TestRestClient_SignInStoresAndEmitsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "jwt-1",
			"user": map[string]interface{}{
				"id":    "user-1",
				"email": "kai@example.com",
				"user_metadata": map[string]string{
					"username": "kai",
				},
			},
		})
	})

	client, tokens, _ := restClient(t, mux)

	var emitted *Session
	client.Auth.OnSessionChange(func(s *Session) { emitted = s })

	session, err := client.Auth.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "kai", session.Username)
	assert.Equal(t, "jwt-1", session.AccessToken)

	require.NotNil(t, emitted)
	assert.Equal(t, "user-1", emitted.UserID)

	raw, ok := tokens.Get("backend_session")
	require.True(t, ok)
	assert.Contains(t, raw, "jwt-1")
}

func TestRestClient_SignInSurfacesProviderMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
	})

	client, _, _ := restClient(t, mux)
	_, err := client.Auth.SignIn(context.Background(), "kai@example.com", "wrong")
	assert.EqualError(t, err, "Invalid login credentials")
}

func TestRestClient_SignUpPendingVerificationReturnsNilSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		meta, _ := body["data"].(map[string]interface{})
		assert.Equal(t, "newbie", meta["username"])
		// No access_token: verification required.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "user-9"},
		})
	})

	client, tokens, _ := restClient(t, mux)
	session, err := client.Auth.SignUp(context.Background(), "new@example.com", "hunter2", "newbie")
	require.NoError(t, err)
	assert.Nil(t, session)
	_, ok := tokens.Get("backend_session")
	assert.False(t, ok)
}

func TestRestClient_SignOutClearsPersistedSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client, tokens, _ := restClient(t, mux)
	tokens.Set("backend_session", `{"UserID":"user-1"}`)

	var emitted, called = (*Session)(nil), false
	client.Auth.OnSessionChange(func(s *Session) { emitted, called = s, true })

	require.NoError(t, client.Auth.SignOut(context.Background()))
	assert.True(t, called)
	assert.Nil(t, emitted)
	_, ok := tokens.Get("backend_session")
	assert.False(t, ok)
}

func TestRestClient_CurrentSessionValidatesPersistedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale-jwt", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	client, tokens, _ := restClient(t, mux)
	raw, _ := json.Marshal(Session{UserID: "user-1", AccessToken: "stale-jwt"})
	tokens.Set("backend_session", string(raw))

	session, err := client.Auth.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "user-1", session.UserID)
}

func TestRestClient_CurrentSessionDropsRejectedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, tokens, _ := restClient(t, mux)
	raw, _ := json.Marshal(Session{UserID: "user-1", AccessToken: "revoked"})
	tokens.Set("backend_session", string(raw))

	session, err := client.Auth.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
	_, ok := tokens.Get("backend_session")
	assert.False(t, ok)
}

func TestRestClient_GetProfileMapsRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode([]map[string]interface{}{{
			"id":         "user-1",
			"username":   "kai",
			"avatar_url": "http://a/kai.png",
			"created_at": "2024-03-01T12:00:00Z",
		}})
	})

	client, _, _ := restClient(t, mux)
	profile, err := client.Profiles.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "kai", profile.Username)
	assert.NotZero(t, profile.JoinedAt)
	assert.NotNil(t, profile.FavoriteGenres)
}

func TestRestClient_GetProfileEmptyResultIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("[]"))
	})

	client, _, _ := restClient(t, mux)
	_, err := client.Profiles.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestClient_InsertEntryReturnsServerID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/library", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		json.NewEncoder(w).Encode([]map[string]interface{}{{"id": "srv-42", "anime_id": 1}})
	})

	client, _, _ := restClient(t, mux)
	id, err := client.Library.Insert(context.Background(), "user-1", entryFixture())
	require.NoError(t, err)
	assert.Equal(t, "srv-42", id)
}

func TestRestClient_ListLibraryBrokenMetadataFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/library", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"e1","anime_id":1,"metadata":null}]`))
	})

	client, _, _ := restClient(t, mux)
	entries, err := client.Library.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown Title", entries[0].Metadata.Title.Romaji)
}

func TestRestClient_ForbiddenWriteIsErrDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/library", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client, _, _ := restClient(t, mux)
	err := client.Library.Delete(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrDenied)
}

func TestRestClient_IncrementViewFallsBackToReadModifyWrite(t *testing.T) {
	var patched map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/increment_news_view", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/rest/v1/news_posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]map[string]interface{}{{"id": "p1", "view_count": 7}})
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	client, _, _ := restClient(t, mux)
	require.NoError(t, client.News.IncrementView(context.Background(), "p1"))
	assert.EqualValues(t, 8, patched["view_count"])
}

func TestRestClient_IncrementViewPrefersRPC(t *testing.T) {
	rpcCalled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/increment_news_view", func(w http.ResponseWriter, _ *http.Request) {
		rpcCalled = true
		w.WriteHeader(http.StatusNoContent)
	})

	client, _, _ := restClient(t, mux)
	require.NoError(t, client.News.IncrementView(context.Background(), "p1"))
	assert.True(t, rpcCalled)
}

func TestRestClient_ListNewsDefaultsAuthorAndTitle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/news_posts", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"p1","author_name":"","title":""}]`))
	})

	client, _, _ := restClient(t, mux)
	posts, err := client.News.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Anonymous", posts[0].AuthorName)
	assert.Equal(t, "Untitled", posts[0].Title)
}

func TestRestClient_AuthedRequestUsesSessionToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "jwt-1",
			"user":         map[string]string{"id": "user-1"},
		})
	})
	mux.HandleFunc("/rest/v1/news_likes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	})

	client, _, _ := restClient(t, mux)
	_, err := client.Auth.SignIn(context.Background(), "kai@example.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, client.Likes.Insert(context.Background(), "p1", "user-1"))
}

func TestParseTimestamp_Formats(t *testing.T) {
	assert.NotZero(t, parseTimestamp("2024-03-01T12:00:00Z"))
	assert.NotZero(t, parseTimestamp("2024-03-01T12:00:00.123456Z"))
	assert.EqualValues(t, 1700000000000, parseTimestamp(float64(1700000000000)))
	assert.Zero(t, parseTimestamp("not a time"))
}
